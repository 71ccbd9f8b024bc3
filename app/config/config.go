package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mahesh-hegde/barplot/app/plotfile"
)

type RenderDefn struct {
	// Output size of rendered charts, in inches.
	WidthInches  float64 `json:"width_inches"`
	HeightInches float64 `json:"height_inches"`
	// Default output format of the render endpoint: svg, png or pdf
	Format string `json:"format"`
}

type BarplotConfig struct {
	InstanceName string `json:"instance_name"`
	DataDir      string `json:"-"`

	// Used when a plot file has no barwidth directive
	DefaultBarWidth float64 `json:"default_bar_width"`
	// Pads the color list of a plot file up to its series count
	DefaultColor string `json:"default_color"`

	Render RenderDefn `json:"render"`

	TimeoutSeconds int  `json:"timeout_seconds"`
	LogLatency     bool `json:"log_latency"`
	// Rendered charts are kept this long in memory
	CacheMinutes int `json:"cache_minutes"`
	// Upper bound on request bodies, in echo's BodyLimit syntax. Eg: "1M"
	MaxBodySize string `json:"max_body_size"`
	// Keep the search index in memory instead of under DataDir
	InMemoryIndex bool `json:"in_memory_index"`
}

type ServerRuntimeConfig struct {
	Addr               string
	Port               int
	RateLimit          int
	GzipLevel          int
	BehindLoadBalancer bool
}

// WithDefaults fills every unset field with the value the tool uses when no
// config file is present.
func (c BarplotConfig) WithDefaults() BarplotConfig {
	if c.InstanceName == "" {
		c.InstanceName = "barplot"
	}
	if c.DefaultBarWidth == 0 {
		c.DefaultBarWidth = plotfile.DefaultBarWidth
	}
	if c.DefaultColor == "" {
		c.DefaultColor = plotfile.DefaultColor
	}
	if c.Render.WidthInches == 0 {
		c.Render.WidthInches = 9
	}
	if c.Render.HeightInches == 0 {
		c.Render.HeightInches = 6
	}
	if c.Render.Format == "" {
		c.Render.Format = "svg"
	}
	if c.CacheMinutes == 0 {
		c.CacheMinutes = 10
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1M"
	}
	return c
}

func (c *BarplotConfig) Validate() error {
	var errs []error
	if c.DefaultBarWidth <= 0 {
		errs = append(errs, fmt.Errorf("default_bar_width must be positive, got %v", c.DefaultBarWidth))
	}
	if c.Render.WidthInches <= 0 || c.Render.HeightInches <= 0 {
		errs = append(errs, fmt.Errorf("render size must be positive, got %vx%v", c.Render.WidthInches, c.Render.HeightInches))
	}
	switch c.Render.Format {
	case "svg", "png", "pdf":
	default:
		errs = append(errs, fmt.Errorf("unsupported render format %q", c.Render.Format))
	}
	if c.TimeoutSeconds < 0 || c.CacheMinutes < 0 {
		errs = append(errs, errors.New("timeout_seconds and cache_minutes cannot be negative"))
	}
	return errors.Join(errs...)
}

func (c *BarplotConfig) PlotOptions() plotfile.Options {
	return plotfile.Options{
		DefaultBarWidth: c.DefaultBarWidth,
		DefaultColor:    c.DefaultColor,
	}
}

// LoadConfig reads a JSON config file. An empty path yields the defaults.
func LoadConfig(path string) (*BarplotConfig, error) {
	var conf BarplotConfig
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error while opening config: %w", err)
		}
		defer f.Close()

		dec := json.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&conf); err != nil {
			return nil, fmt.Errorf("error while reading %s: %w", path, err)
		}
	}
	conf = conf.WithDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
