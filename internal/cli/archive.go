package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/docviz/docviz/pkg/archive"
	"github.com/docviz/docviz/pkg/graphson"
)

// archiveCommand creates the archive command group for snapshot storage.
func (c *CLI) archiveCommand() *cobra.Command {
	var (
		dir      string
		mongoURI string
		mongoDB  string
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Store and compare build snapshots",
		Long: `Archive exported graphs per build and compare them across builds.

Snapshots go to a local directory by default; pass --mongo-uri to archive
into MongoDB instead.`,
	}

	cmd.PersistentFlags().StringVar(&dir, "dir", "", "snapshot directory (default ~/.local/share/docviz/archive)")
	cmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI (overrides --dir)")
	cmd.PersistentFlags().StringVar(&mongoDB, "mongo-db", "docviz", "MongoDB database name")

	open := func(ctx context.Context) (archive.Store, error) {
		return c.openArchive(ctx, dir, mongoURI, mongoDB)
	}

	cmd.AddCommand(c.archivePushCommand(open))
	cmd.AddCommand(c.archiveListCommand(open))
	cmd.AddCommand(c.archiveDiffCommand(open))

	return cmd
}

type storeOpener func(ctx context.Context) (archive.Store, error)

// archivePushCommand creates "archive push" storing an export as a snapshot.
func (c *CLI) archivePushCommand(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "push [graphson.json]",
		Short: "Archive an exported graph as a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := graphson.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load export %s: %w", args[0], err)
			}
			buildID, _ := doc.Meta["build_id"].(string)
			if buildID == "" {
				return fmt.Errorf("export %s carries no build id; re-run docviz build", args[0])
			}

			ctx := cmd.Context()
			store, err := open(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			if err := store.Put(ctx, archive.NewSnapshot(buildID, doc)); err != nil {
				return err
			}
			printSuccess("Archived build %s", buildID)
			printStats(0, len(doc.Vertices), len(doc.Edges))
			return nil
		},
	}
}

// archiveListCommand creates "archive list".
func (c *CLI) archiveListCommand(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := open(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			infos, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No snapshots archived yet")
				return nil
			}
			for _, info := range infos {
				fmt.Printf("%s  %s  %s\n",
					info.CreatedAt.Format("2006-01-02 15:04"),
					info.BuildID,
					StyleDim.Render(fmt.Sprintf("%d vertices · %d edges", info.Vertices, info.Edges)))
			}
			return nil
		},
	}
}

// archiveDiffCommand creates "archive diff" comparing two snapshots.
func (c *CLI) archiveDiffCommand(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "diff [old-build-id] [new-build-id]",
		Short: "Show pages and references added or removed between two builds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := open(ctx)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			older, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			newer, err := store.Get(ctx, args[1])
			if err != nil {
				return err
			}

			d := archive.Diff(older.Document, newer.Document)
			if d.Empty() {
				printInfo("No structural changes between %s and %s", args[0], args[1])
				return nil
			}

			printDiffSection("Added pages", d.AddedPages, StyleSuccess)
			printDiffSection("Removed pages", d.RemovedPages, StyleWarning)
			printDiffSection("Added references", d.AddedRefs, StyleSuccess)
			printDiffSection("Removed references", d.RemovedRefs, StyleWarning)
			return nil
		},
	}
}

func printDiffSection(title string, items []string, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	fmt.Println(StyleTitle.Render(title))
	for _, item := range items {
		fmt.Println("  " + style.Render(item))
	}
}

// openArchive picks the snapshot backend from the flags.
func (c *CLI) openArchive(ctx context.Context, dir, mongoURI, mongoDB string) (archive.Store, error) {
	if mongoURI != "" {
		return archive.NewMongoStore(ctx, mongoURI, mongoDB)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".local", "share", appName, "archive")
	}
	return archive.NewFileStore(dir)
}
