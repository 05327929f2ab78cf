package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/docviz/docviz/pkg/graphson"
	"github.com/docviz/docviz/pkg/pipeline"
)

// Bucket names for pages outside any configured cluster.
const (
	bucketUnclustered = "(unclustered)"
	bucketExternal    = "(external)"
)

// clustersCommand creates the clusters command showing cluster assignments.
func (c *CLI) clustersCommand() *cobra.Command {
	var (
		configPath  string
		interactive bool
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Show how pages are assigned to clusters",
		Long: `Show the cluster each page was assigned to, either as a summary table or
as an interactive browser (--interactive) that drills into each cluster's
member pages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, baseDir, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			res, err := pipeline.Run(ctx, pipeline.Options{
				Config:     cfg,
				BaseDir:    baseDir,
				Logger:     c.Logger,
				Fetcher:    c.newFetcher(ctx, cfg.Cache, noCache),
				SkipAssets: true,
			})
			if err != nil {
				return err
			}

			groups := groupByCluster(res.Document)
			if interactive {
				model := NewClusterBrowserModel(groups)
				_, err := tea.NewProgram(model).Run()
				return err
			}

			printClusterTable(groups)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default docviz.toml)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse clusters interactively")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable external fetch caching")

	return cmd
}

// groupByCluster buckets the document's vertices by cluster name, with
// synthetic buckets for unclustered and external pages. Clusters are sorted
// by size, pages by title.
func groupByCluster(doc graphson.Document) []clusterGroup {
	byName := make(map[string][]pageEntry)
	for _, v := range doc.Vertices {
		title, _ := v.Properties[graphson.PropName].(string)
		path, _ := v.Properties[graphson.PropPath].(string)
		name, _ := v.Properties[graphson.PropCluster].(string)
		if external, _ := v.Properties[graphson.PropIsExternal].(bool); external && name == "" {
			name = bucketExternal
		}
		if name == "" {
			name = bucketUnclustered
		}
		byName[name] = append(byName[name], pageEntry{Title: title, Path: path})
	}

	groups := make([]clusterGroup, 0, len(byName))
	for name, pages := range byName {
		sort.Slice(pages, func(i, j int) bool { return pages[i].Title < pages[j].Title })
		groups = append(groups, clusterGroup{Name: name, Pages: pages})
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Pages) != len(groups[j].Pages) {
			return len(groups[i].Pages) > len(groups[j].Pages)
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

func printClusterTable(groups []clusterGroup) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(groups))
	total := 0
	for _, g := range groups {
		sample := ""
		if len(g.Pages) > 0 {
			titles := make([]string, 0, 3)
			for _, p := range g.Pages[:min(3, len(g.Pages))] {
				titles = append(titles, p.Title)
			}
			sample = strings.Join(titles, ", ")
			if len(g.Pages) > 3 {
				sample += ", …"
			}
		}
		rows = append(rows, []string{g.Name, fmt.Sprintf("%d", len(g.Pages)), sample})
		total += len(g.Pages)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Cluster", "Pages", "Examples").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		})

	fmt.Println(t.Render())
	printDetail("%d pages in %d clusters", total, len(groups))
}
