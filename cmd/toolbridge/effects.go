package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/skosovsky/toolbridge"
)

// canvas is the shared state the built-in effects update; a renderer would read it.
type canvas struct {
	logger *slog.Logger

	mu      sync.Mutex
	graph   json.RawMessage
	results []toolbridge.ValidationResult
}

func (c *canvas) renderGraph(ctx context.Context, graph json.RawMessage) error {
	c.mu.Lock()
	c.graph = graph
	c.mu.Unlock()
	c.logger.InfoContext(ctx, "graph updated", "bytes", len(graph))
	return nil
}

func (c *canvas) markWork(ctx context.Context, results []toolbridge.ValidationResult) error {
	correct := 0
	for _, r := range results {
		if r.Correct {
			correct++
		}
	}
	c.mu.Lock()
	c.results = results
	c.mu.Unlock()
	c.logger.InfoContext(ctx, "work checked", "regions", len(results), "correct", correct)
	return nil
}

func (c *canvas) snapshot() (json.RawMessage, []toolbridge.ValidationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph, c.results
}

func newRegistry(c *canvas) (*toolbridge.Registry, error) {
	render, err := toolbridge.RenderAltair(c.renderGraph)
	if err != nil {
		return nil, err
	}
	check, err := toolbridge.CheckWork(c.markWork)
	if err != nil {
		return nil, err
	}
	return toolbridge.NewRegistry(render, check)
}
