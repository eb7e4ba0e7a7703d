// Package ingest drives CSV rows through a compiled column mapping into a
// graph. Rows are processed concurrently; the mapping is shared by every
// worker without locking.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/haivivi/colgraph/pkg/colmap"
	"github.com/haivivi/colgraph/pkg/graph"
)

// ErrNoGraph is returned by Run when no graph was given and the importer
// is not in dry-run mode.
var ErrNoGraph = errors.New("ingest: no graph")

// Stats summarizes one import run.
type Stats struct {
	Rows     int64 `json:"rows" yaml:"rows"`
	Vertices int64 `json:"vertices" yaml:"vertices"`
	Edges    int64 `json:"edges" yaml:"edges"`
	Skipped  int64 `json:"skipped" yaml:"skipped"`
	DryRun   bool  `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
}

type counters struct {
	rows, vertices, edges, skipped atomic.Int64
}

func (c *counters) stats(dryRun bool) *Stats {
	return &Stats{
		Rows:     c.rows.Load(),
		Vertices: c.vertices.Load(),
		Edges:    c.edges.Load(),
		Skipped:  c.skipped.Load(),
		DryRun:   dryRun,
	}
}

// Option configures an Importer.
type Option func(*Importer)

// WithWorkers sets how many rows are processed at once. Values below 1
// select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(im *Importer) { im.workers = n }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}

// WithDryRun evaluates every mapping without writing to the graph.
func WithDryRun() Option {
	return func(im *Importer) { im.dryRun = true }
}

// Importer imports CSV data with a compiled mapping.
type Importer struct {
	mapping *colmap.Mapping
	graph   graph.Graph
	workers int
	logger  *slog.Logger
	dryRun  bool
}

// New creates an importer writing into g.
func New(m *colmap.Mapping, g graph.Graph, opts ...Option) *Importer {
	im := &Importer{
		mapping: m,
		graph:   g,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.workers < 1 {
		im.workers = runtime.GOMAXPROCS(0)
	}
	return im
}

// Run reads CSV from r and imports every data row. Rows that yield no
// relationship are counted, never fatal. A read error, a graph error or a
// label deriver error stops the run; the stats gathered so far are
// returned with it.
func (im *Importer) Run(ctx context.Context, r io.Reader) (*Stats, error) {
	if im.graph == nil && !im.dryRun {
		return nil, ErrNoGraph
	}
	var c counters

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	num := 0
	next := func() ([]string, error) {
		rec, err := cr.Read()
		if err == nil {
			num++
		}
		return rec, err
	}

	for range im.mapping.SkipRows() {
		if _, err := next(); err != nil {
			if errors.Is(err, io.EOF) {
				return c.stats(im.dryRun), nil
			}
			return c.stats(im.dryRun), fmt.Errorf("ingest: read: %w", err)
		}
	}

	header, err := im.header(next)
	if errors.Is(err, io.EOF) {
		return c.stats(im.dryRun), nil
	}
	if err != nil {
		return c.stats(im.dryRun), err
	}
	if err := im.mapping.CheckColumns(header); err != nil {
		return c.stats(im.dryRun), err
	}

	log := im.logger.With("mapping", im.mapping.Name())
	log.Debug("import started", "workers", im.workers, "dryRun", im.dryRun, "columns", header.Names())

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(im.workers)

	var readErr error
	for gctx.Err() == nil {
		rec, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("ingest: read: %w", err)
			break
		}
		row := colmap.Row{Num: num, Values: rec, Header: header}
		eg.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
				return im.row(gctx, log, row, &c)
			}
		})
	}

	err = eg.Wait()
	if err == nil {
		err = readErr
	}
	if err == nil {
		err = ctx.Err()
	}
	stats := c.stats(im.dryRun)
	if err != nil {
		log.Warn("import aborted", "rows", stats.Rows, "error", err)
		return stats, err
	}
	log.Info("import finished", "rows", stats.Rows, "vertices", stats.Vertices,
		"edges", stats.Edges, "skipped", stats.Skipped)
	return stats, nil
}

func (im *Importer) header(next func() ([]string, error)) (*colmap.Header, error) {
	switch {
	case im.mapping.HasHeader():
		rec, err := next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, err
			}
			return nil, fmt.Errorf("ingest: read header: %w", err)
		}
		return colmap.NewHeader(rec), nil
	case len(im.mapping.Columns()) > 0:
		return colmap.NewHeader(im.mapping.Columns()), nil
	}
	return colmap.NewHeader(nil), nil
}

func (im *Importer) row(ctx context.Context, log *slog.Logger, row colmap.Row, c *counters) error {
	c.rows.Add(1)

	lookup := im.mapping.Entities(row)
	if lookup == nil {
		log.Debug("row has no entities", "record", row.Num)
		c.skipped.Add(int64(len(im.mapping.RelationshipMappings())))
		return nil
	}
	for _, v := range lookup {
		if !im.dryRun {
			if err := im.graph.MergeVertex(ctx, *v); err != nil {
				return fmt.Errorf("ingest: record %d: merge vertex %s: %w", row.Num, v.ID, err)
			}
		}
		c.vertices.Add(1)
	}

	defs, skipped, err := im.mapping.Relationships(lookup, row)
	c.skipped.Add(int64(skipped))
	if err != nil {
		return fmt.Errorf("ingest: record %d: %w", row.Num, err)
	}
	for _, def := range defs {
		if !im.dryRun {
			if err := im.graph.AddEdge(ctx, def.Edge()); err != nil {
				return fmt.Errorf("ingest: record %d: add edge %s: %w", row.Num, def.Label, err)
			}
		}
		c.edges.Add(1)
	}
	return nil
}
