package plotfile

import (
	"fmt"
	"io"
	"os"
)

// Options are the caller-supplied settings that do not come from the file.
type Options struct {
	// DefaultBarWidth applies when the file has no barwidth directive.
	DefaultBarWidth float64
	// DefaultColor pads the color list up to the series count.
	DefaultColor string
}

func (o Options) withDefaults() Options {
	if o.DefaultBarWidth == 0 {
		o.DefaultBarWidth = DefaultBarWidth
	}
	if o.DefaultColor == "" {
		o.DefaultColor = DefaultColor
	}
	return o
}

// Config is the validated, column-major data set handed to a renderer.
// Arguments and Colors always have at least SeriesCount entries and BarWidth
// never exceeds 1/(SeriesCount+1).
type Config struct {
	Directives  Directives  `json:"directives"`
	Arguments   []string    `json:"arguments"`
	Colors      []string    `json:"colors"`
	BarWidth    float64     `json:"bar_width"`
	SeriesCount int         `json:"series_count"`
	Categories  []string    `json:"categories"`
	Indices     []int       `json:"indices"`
	Series      [][]float64 `json:"series"`

	Table *DataTable `json:"-"`
}

// Parse reads a complete plot file from r.
func Parse(r io.Reader, opts Options) (*Config, error) {
	opts = opts.withDefaults()
	lr := newLineReader(r)

	directives, err := parseDirectives(lr, opts.DefaultBarWidth)
	if err != nil {
		return nil, err
	}
	args, err := collectArguments(lr)
	if err != nil {
		return nil, err
	}
	table, err := parseDataTable(lr)
	if err != nil {
		return nil, err
	}
	pd, err := validateAndPad(table, directives, args, opts.DefaultColor)
	if err != nil {
		return nil, err
	}
	parts := partition(table)

	return &Config{
		Directives:  directives,
		Arguments:   pd.arguments,
		Colors:      pd.colors,
		BarWidth:    pd.barWidth,
		SeriesCount: table.Columns(),
		Categories:  parts.categories,
		Indices:     parts.indices,
		Series:      parts.series,
		Table:       table,
	}, nil
}

// ParseFile opens path, parses it and closes it again on every path out.
func ParseFile(path string, opts Options) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plot file: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
