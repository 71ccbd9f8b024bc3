package plotstore

import (
	"context"
	"errors"
	"time"

	"github.com/mahesh-hegde/barplot/app/plotfile"
)

var ErrNotFound = errors.New("plot not found")

// StoredPlot is a submitted plot file together with its parsed form. The
// Config's Table is not persisted; its Series and Categories are.
type StoredPlot struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	CreatedAt time.Time        `json:"created_at"`
	Source    string           `json:"source"`
	Config    *plotfile.Config `json:"config"`
}

type PlotStore interface {
	Init() error
	Add(ctx context.Context, source string, cfg *plotfile.Config) (StoredPlot, error)
	Get(ctx context.Context, id string) (StoredPlot, error)
	// List returns up to limit plots, newest first
	List(ctx context.Context, limit int) ([]StoredPlot, error)
}
