// Package graphstore pushes an exported link graph into Neo4j so the
// documentation structure can be explored with ad-hoc Cypher queries
// (orphan pages, hub pages, cross-cluster references).
//
// Pages become (:Page) nodes, intersphinx targets become (:External) nodes,
// and aggregated references become [:REFERENCES] relationships. Loading uses
// batch UNWIND queries so a full site loads in a handful of round trips.
package graphstore

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/docviz/docviz/pkg/graphson"
)

// Loader loads an exported graph document into a Neo4j database.
type Loader struct {
	driver neo4j.DriverWithContext
	logger *log.Logger
}

// NewLoader connects to Neo4j and returns a ready-to-use loader.
func NewLoader(uri, user, password string, logger *log.Logger) (*Loader, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Loader{driver: driver, logger: logger}, nil
}

// Close releases the underlying Neo4j driver resources.
func (l *Loader) Close(ctx context.Context) {
	l.driver.Close(ctx)
}

// runCypher runs a single Cypher statement with optional parameters.
func (l *Loader) runCypher(ctx context.Context, cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(ctx, l.driver, cypher, params, neo4j.EagerResultTransformer)
	return err
}

// CleanGraph removes all previously loaded documentation nodes and
// relationships.
func (l *Loader) CleanGraph(ctx context.Context) error {
	l.logger.Info("cleaning existing documentation graph")
	queries := []string{
		"MATCH ()-[r:REFERENCES]->() DELETE r",
		"MATCH (n:Page) DETACH DELETE n",
		"MATCH (n:External) DETACH DELETE n",
	}
	for _, q := range queries {
		if err := l.runCypher(ctx, q, nil); err != nil {
			return err
		}
	}
	return nil
}

// CreateIndexes ensures the required Neo4j indexes exist.
func (l *Loader) CreateIndexes(ctx context.Context) error {
	l.logger.Info("creating indexes")
	indexes := []string{
		"CREATE INDEX page_path IF NOT EXISTS FOR (n:Page) ON (n.path)",
		"CREATE INDEX page_cluster IF NOT EXISTS FOR (n:Page) ON (n.cluster)",
		"CREATE INDEX external_url IF NOT EXISTS FOR (n:External) ON (n.url)",
	}
	for _, q := range indexes {
		if err := l.runCypher(ctx, q, nil); err != nil {
			return err
		}
	}
	return nil
}

// LoadVertices upserts Page and External nodes from the document.
func (l *Loader) LoadVertices(ctx context.Context, doc graphson.Document) error {
	pages := make([]map[string]any, 0, len(doc.Vertices))
	externals := make([]map[string]any, 0)

	for _, v := range doc.Vertices {
		name, _ := v.Properties[graphson.PropName].(string)
		path, _ := v.Properties[graphson.PropPath].(string)
		external, _ := v.Properties[graphson.PropIsExternal].(bool)
		if external || v.Label != "page" {
			externals = append(externals, map[string]any{
				"id": v.ID, "name": name, "url": path,
			})
			continue
		}
		clusterName, _ := v.Properties[graphson.PropCluster].(string)
		pages = append(pages, map[string]any{
			"id": v.ID, "name": name, "path": path, "cluster": clusterName,
		})
	}

	l.logger.Info("loading vertices", "pages", len(pages), "externals", len(externals))

	if err := l.runCypher(ctx,
		`UNWIND $batch AS row
		 MERGE (n:Page {id: row.id})
		 SET n.name = row.name, n.path = row.path, n.cluster = row.cluster`,
		map[string]any{"batch": pages},
	); err != nil {
		return err
	}

	if len(externals) == 0 {
		return nil
	}
	return l.runCypher(ctx,
		`UNWIND $batch AS row
		 MERGE (n:External {id: row.id})
		 SET n.name = row.name, n.url = row.url`,
		map[string]any{"batch": externals},
	)
}

// LoadEdges upserts REFERENCES relationships between loaded nodes.
func (l *Loader) LoadEdges(ctx context.Context, doc graphson.Document) error {
	l.logger.Info("loading edges", "count", len(doc.Edges))

	batch := make([]map[string]any, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		count := 1
		switch n := e.Properties[graphson.PropReferenceCount].(type) {
		case int:
			count = n
		case float64:
			count = int(n)
		}
		batch = append(batch, map[string]any{
			"from": e.OutV, "to": e.InV, "type": e.Label, "count": count,
		})
	}

	return l.runCypher(ctx,
		`UNWIND $batch AS row
		 MATCH (from {id: row.from}), (to {id: row.to})
		 MERGE (from)-[r:REFERENCES]->(to)
		 SET r.type = row.type, r.reference_count = row.count`,
		map[string]any{"batch": batch},
	)
}

// Load runs the full sequence: clean, index, vertices, edges.
func (l *Loader) Load(ctx context.Context, doc graphson.Document) error {
	if err := l.CleanGraph(ctx); err != nil {
		return err
	}
	if err := l.CreateIndexes(ctx); err != nil {
		return err
	}
	if err := l.LoadVertices(ctx, doc); err != nil {
		return err
	}
	return l.LoadEdges(ctx, doc)
}
