package plotstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mahesh-hegde/barplot/app/plotfile"
)

type SQLitePlotStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLitePlotStore(db *sql.DB) *SQLitePlotStore {
	return &SQLitePlotStore{db: db, now: time.Now}
}

var _ PlotStore = &SQLitePlotStore{}

func (s *SQLitePlotStore) Init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS barplot_plots (
			id TEXT PRIMARY KEY,
			title TEXT,
			created_at INTEGER,
			source TEXT,
			cfg TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_plots_created_at ON barplot_plots(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create barplot_plots table: %w", err)
	}
	return nil
}

func (s *SQLitePlotStore) Add(ctx context.Context, source string, cfg *plotfile.Config) (StoredPlot, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return StoredPlot{}, fmt.Errorf("failed to encode plot config: %w", err)
	}
	p := StoredPlot{
		ID:        uuid.NewString(),
		Title:     cfg.Directives.Title,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		Source:    source,
		Config:    cfg,
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO barplot_plots (id, title, created_at, source, cfg) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Title, p.CreatedAt.UnixMilli(), p.Source, cfgJSON)
	if err != nil {
		return StoredPlot{}, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlot(row rowScanner) (StoredPlot, error) {
	var (
		p       StoredPlot
		created int64
		cfgJSON []byte
	)
	if err := row.Scan(&p.ID, &p.Title, &created, &p.Source, &cfgJSON); err != nil {
		return StoredPlot{}, err
	}
	p.CreatedAt = time.UnixMilli(created).UTC()
	p.Config = &plotfile.Config{}
	if err := json.Unmarshal(cfgJSON, p.Config); err != nil {
		return StoredPlot{}, fmt.Errorf("corrupt config for plot %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *SQLitePlotStore) Get(ctx context.Context, id string) (StoredPlot, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, created_at, source, cfg FROM barplot_plots WHERE id = ?", id)
	p, err := scanPlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredPlot{}, ErrNotFound
	}
	return p, err
}

func (s *SQLitePlotStore) List(ctx context.Context, limit int) ([]StoredPlot, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, created_at, source, cfg FROM barplot_plots ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plots []StoredPlot
	for rows.Next() {
		p, err := scanPlot(rows)
		if err != nil {
			return nil, err
		}
		plots = append(plots, p)
	}
	return plots, rows.Err()
}
