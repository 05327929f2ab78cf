package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docviz/docviz/pkg/graphson"
	"github.com/docviz/docviz/pkg/graphstore"
)

// pushCommand creates the push command loading the export into Neo4j.
func (c *CLI) pushCommand() *cobra.Command {
	var (
		uri      string
		user     string
		password string
		clean    bool
	)

	cmd := &cobra.Command{
		Use:   "push [graphson.json]",
		Short: "Load an exported graph into Neo4j",
		Long: `Load an exported graph document into Neo4j for ad-hoc Cypher queries.

Pages become (:Page) nodes, external targets become (:External) nodes, and
aggregated references become [:REFERENCES] relationships. Pass the path of a
graphson.json written by 'docviz build'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}

			doc, err := graphson.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load export %s: %w", args[0], err)
			}

			ctx := cmd.Context()
			loader, err := graphstore.NewLoader(uri, user, password, c.Logger)
			if err != nil {
				return err
			}
			defer loader.Close(ctx)

			spinner := newSpinner(ctx, "Loading graph into Neo4j...")
			spinner.Start()
			track := newProgress(c.Logger)

			if clean {
				err = loader.Load(ctx, doc)
			} else {
				if err = loader.CreateIndexes(ctx); err == nil {
					if err = loader.LoadVertices(ctx, doc); err == nil {
						err = loader.LoadEdges(ctx, doc)
					}
				}
			}
			if err != nil {
				spinner.StopWithError("Load failed")
				return err
			}
			spinner.Stop()

			track.done(fmt.Sprintf("Loaded %d vertices and %d edges", len(doc.Vertices), len(doc.Edges)))
			printSuccess("Graph available in Neo4j")
			printNextStep("Try a query", `MATCH (p:Page) WHERE NOT ()-[:REFERENCES]->(p) RETURN p.path`)
			return nil
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "bolt://localhost:7687", "Neo4j bolt URI")
	cmd.Flags().StringVar(&user, "user", "neo4j", "Neo4j username")
	cmd.Flags().StringVar(&password, "password", "", "Neo4j password (required)")
	cmd.Flags().BoolVar(&clean, "clean", false, "remove previously loaded documentation nodes first")

	return cmd
}
