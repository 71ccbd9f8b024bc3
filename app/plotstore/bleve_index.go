package plotstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// PlotIndex is a full-text index over the descriptive parts of stored plots.
type PlotIndex struct {
	idx bleve.Index
}

type plotDoc struct {
	Title      string   `json:"title"`
	XLabel     string   `json:"xlabel"`
	YLabel     string   `json:"ylabel"`
	Series     []string `json:"series"`
	Categories []string `json:"categories"`
	Notes      []string `json:"notes"`
}

func plotIndexMapping() mapping.IndexMapping {
	indexMapping := mapping.NewIndexMapping()

	plotMapping := mapping.NewDocumentMapping()
	for _, field := range []string{"title", "xlabel", "ylabel", "series", "categories", "notes"} {
		plotMapping.AddFieldMappingsAt(field, mapping.NewTextFieldMapping())
	}

	indexMapping.DefaultMapping = plotMapping
	return indexMapping
}

// NewPlotIndex opens the index at path, creating it if needed. An empty path
// keeps the index in memory.
func NewPlotIndex(path string) (*PlotIndex, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(plotIndexMapping())
		if err != nil {
			return nil, err
		}
		return &PlotIndex{idx: idx}, nil
	}

	if _, err := os.Stat(path); err == nil {
		slog.Info("opening existing plot index", "path", path)
		idx, err := bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open plot index: %w", err)
		}
		return &PlotIndex{idx: idx}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	slog.Info("creating plot index", "path", path)
	idx, err := bleve.New(path, plotIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create plot index: %w", err)
	}
	return &PlotIndex{idx: idx}, nil
}

func (pi *PlotIndex) Index(p StoredPlot) error {
	doc := plotDoc{Title: p.Title}
	if cfg := p.Config; cfg != nil {
		doc.XLabel = cfg.Directives.XLabel
		doc.YLabel = cfg.Directives.YLabel
		doc.Series = cfg.Directives.Labels
		doc.Categories = cfg.Categories
		doc.Notes = cfg.Arguments
	}
	return pi.idx.Index(p.ID, doc)
}

// Search returns ids of plots matching a query string, best match first.
func (pi *PlotIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	req := bleve.NewSearchRequest(bleve.NewQueryStringQuery(q))
	req.Size = size
	res, err := pi.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func (pi *PlotIndex) Close() error {
	return pi.idx.Close()
}
