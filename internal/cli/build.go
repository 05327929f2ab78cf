package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/docviz/docviz/pkg/config"
	"github.com/docviz/docviz/pkg/pipeline"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		configPath string
		siteRoot   string
		outputDir  string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Scan the built site and write the graph export and viewer",
		Long: `Scan a built documentation site and write the link-graph export plus the
interactive viewer into its static directory.

The site to scan, cluster definitions, and external projects come from
docviz.toml. Pass --site to build a site ad hoc without a config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, baseDir, err := resolveBuildConfig(configPath, siteRoot)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}

			ctx := cmd.Context()
			fetcher := c.newFetcher(ctx, cfg.Cache, noCache)

			spinner := newSpinner(ctx, "Building link graph...")
			spinner.Start()

			res, err := pipeline.Run(ctx, pipeline.Options{
				Config:  cfg,
				BaseDir: baseDir,
				Logger:  c.Logger,
				Fetcher: fetcher,
			})
			if err != nil {
				spinner.StopWithError("Build failed")
				return err
			}
			spinner.Stop()

			printSuccess("Built link graph in %s", res.Duration.Round(time.Millisecond))
			printStats(res.Pages, len(res.Document.Vertices), len(res.Document.Edges))
			for _, project := range res.Merged {
				printDetail("merged external project %s", project)
			}
			printFile(filepath.Join(res.OutDir, "graphson.json"))
			printFile(filepath.Join(res.OutDir, "html", "linkgraph.html"))
			printFile(filepath.Join(res.OutDir, "html", "toctree.html"))
			printNextStep("Preview locally", "docviz serve")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default docviz.toml)")
	cmd.Flags().StringVar(&siteRoot, "site", "", "built site directory (overrides config)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default <site>/_static/docviz)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable external fetch caching")

	return cmd
}

// resolveBuildConfig loads docviz.toml, or synthesizes a default config when
// only --site is given and no config file exists.
func resolveBuildConfig(configPath, siteRoot string) (cfg config.Config, baseDir string, err error) {
	cfg, baseDir, err = loadConfig(configPath)
	if err != nil {
		if siteRoot != "" && configPath == "" {
			return config.Default(siteRoot), "", nil
		}
		return cfg, "", fmt.Errorf("load config: %w", err)
	}
	if siteRoot != "" {
		cfg.SiteRoot = siteRoot
	}
	return cfg, baseDir, nil
}
