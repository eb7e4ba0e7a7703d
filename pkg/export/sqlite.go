// Package export writes graph snapshots into other stores.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/haivivi/colgraph/pkg/graph"
)

// Counts reports how many elements an export wrote.
type Counts struct {
	Vertices int64 `json:"vertices" yaml:"vertices"`
	Edges    int64 `json:"edges" yaml:"edges"`
}

const schema = `
DROP TABLE IF EXISTS edges;
DROP TABLE IF EXISTS vertices;
CREATE TABLE vertices (
	id      TEXT PRIMARY KEY,
	concept TEXT NOT NULL,
	props   TEXT NOT NULL
);
CREATE INDEX vertices_concept ON vertices (concept);
CREATE TABLE edges (
	source TEXT NOT NULL,
	label  TEXT NOT NULL,
	target TEXT NOT NULL,
	PRIMARY KEY (source, label, target)
);
CREATE INDEX edges_target ON edges (target, label);
`

// SQLite writes every vertex and edge of g into the SQLite database at
// path, replacing the vertices and edges tables. Vertex properties are
// stored as a JSON object. The export runs in one transaction.
func SQLite(ctx context.Context, g graph.Graph, path string) (Counts, error) {
	var n Counts
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return n, fmt.Errorf("export: create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return n, fmt.Errorf("export: open database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return n, fmt.Errorf("export: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return n, fmt.Errorf("export: create schema: %w", err)
	}

	insV, err := tx.PrepareContext(ctx, `INSERT INTO vertices (id, concept, props) VALUES (?, ?, ?)`)
	if err != nil {
		return n, fmt.Errorf("export: prepare: %w", err)
	}
	defer insV.Close()
	for v, err := range g.ListVertices(ctx, "") {
		if err != nil {
			return n, fmt.Errorf("export: list vertices: %w", err)
		}
		props := v.Props
		if props == nil {
			props = map[string]string{}
		}
		data, err := json.Marshal(props)
		if err != nil {
			return n, fmt.Errorf("export: vertex %s: %w", v.ID, err)
		}
		if _, err := insV.ExecContext(ctx, v.ID, v.Concept, string(data)); err != nil {
			return n, fmt.Errorf("export: insert vertex %s: %w", v.ID, err)
		}
		n.Vertices++
	}

	insE, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO edges (source, label, target) VALUES (?, ?, ?)`)
	if err != nil {
		return n, fmt.Errorf("export: prepare: %w", err)
	}
	defer insE.Close()
	for e, err := range g.ListEdges(ctx) {
		if err != nil {
			return n, fmt.Errorf("export: list edges: %w", err)
		}
		if _, err := insE.ExecContext(ctx, e.Source, e.Label, e.Target); err != nil {
			return n, fmt.Errorf("export: insert edge %s -%s-> %s: %w", e.Source, e.Label, e.Target, err)
		}
		n.Edges++
	}

	if err := tx.Commit(); err != nil {
		return Counts{}, fmt.Errorf("export: commit: %w", err)
	}
	return n, nil
}
