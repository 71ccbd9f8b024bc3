package chart

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/mahesh-hegde/barplot/app/plotfile"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Size is the output size of a chart, in inches.
type Size struct {
	WidthInches  float64
	HeightInches float64
}

var DefaultSize = Size{WidthInches: 9, HeightInches: 6}

func (s Size) lengths() (vg.Length, vg.Length) {
	if s.WidthInches <= 0 || s.HeightInches <= 0 {
		s = DefaultSize
	}
	return vg.Length(s.WidthInches) * vg.Inch, vg.Length(s.HeightInches) * vg.Inch
}

// Formats lists the output formats Render accepts.
var Formats = []string{"svg", "png", "pdf"}

// bars returns one rectangle per drawable value of series c. In log mode
// rectangles start at bottom and non-positive values are dropped.
func bars(cfg *plotfile.Config, c int, logScale bool, bottom float64) []plotter.XYs {
	var rects []plotter.XYs
	for r, v := range cfg.Series[c] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		base := 0.0
		if logScale {
			if v <= 0 {
				continue
			}
			base = bottom
		}
		x0 := float64(cfg.Indices[r]) + float64(c)*cfg.BarWidth
		x1 := x0 + cfg.BarWidth
		rects = append(rects, plotter.XYs{{X: x0, Y: base}, {X: x1, Y: base}, {X: x1, Y: v}, {X: x0, Y: v}})
	}
	return rects
}

// logBottom is the power of ten just below the smallest positive value.
func logBottom(cfg *plotfile.Config) float64 {
	minPos := math.Inf(1)
	for _, series := range cfg.Series {
		for _, v := range series {
			if v > 0 && !math.IsInf(v, 0) && v < minPos {
				minPos = v
			}
		}
	}
	if math.IsInf(minPos, 1) {
		return 1
	}
	return math.Pow(10, math.Floor(math.Log10(minPos)))
}

func placeLegend(p *plot.Plot, position string) {
	pos := strings.ToLower(strings.TrimSpace(position))
	p.Legend.Top = strings.HasPrefix(pos, "upper") || pos == "best" || pos == "right" || pos == "center right" || pos == ""
	p.Legend.Left = strings.HasSuffix(pos, "left")
}

// NewPlot draws cfg as a grouped bar chart: one group per category, one bar
// per series inside each group.
func NewPlot(cfg *plotfile.Config) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = cfg.Directives.Title
	p.X.Label.Text = cfg.Directives.XLabel
	p.Y.Label.Text = cfg.Directives.YLabel

	logScale := cfg.Directives.LogScale
	bottom := 0.0
	if logScale {
		bottom = logBottom(cfg)
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	n := cfg.SeriesCount
	for c := 0; c < n; c++ {
		col, err := ParseColor(cfg.Colors[c])
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", c, err)
		}
		rects := bars(cfg, c, logScale, bottom)
		poly, err := plotter.NewPolygon()
		if err != nil {
			return nil, err
		}
		poly.XYs = rects
		poly.Color = col
		poly.LineStyle.Width = 0
		if len(rects) > 0 {
			p.Add(poly)
		}
		if c < len(cfg.Directives.Labels) {
			p.Legend.Add(cfg.Directives.Labels[c], poly)
		}
	}
	placeLegend(p, cfg.Directives.Position)

	// nothing was drawable
	if p.Y.Min > p.Y.Max {
		if logScale {
			p.Y.Min, p.Y.Max = 1, 10
		} else {
			p.Y.Min, p.Y.Max = 0, 1
		}
	}

	ticks := make([]plot.Tick, len(cfg.Categories))
	for r, label := range cfg.Categories {
		ticks[r] = plot.Tick{
			Value: float64(cfg.Indices[r]) + cfg.BarWidth*float64(n)/2,
			Label: label,
		}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.X.Min = -cfg.BarWidth
	p.X.Max = float64(len(cfg.Categories)-1) + cfg.BarWidth*float64(n+1)

	return p, nil
}

// Render writes cfg as a chart in the given format to w.
func Render(cfg *plotfile.Config, w io.Writer, format string, size Size) error {
	p, err := NewPlot(cfg)
	if err != nil {
		return err
	}
	width, height := size.lengths()
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("unsupported chart format %q: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// RenderFile writes cfg to path; the extension selects the format.
func RenderFile(cfg *plotfile.Config, path string, size Size) error {
	p, err := NewPlot(cfg)
	if err != nil {
		return err
	}
	width, height := size.lengths()
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("saving %s: %w", filepath.Base(path), err)
	}
	return nil
}
