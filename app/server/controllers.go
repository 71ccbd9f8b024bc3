package server

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mahesh-hegde/barplot/app/chart"
	"github.com/mahesh-hegde/barplot/app/common"
	"github.com/mahesh-hegde/barplot/app/config"
	"github.com/mahesh-hegde/barplot/app/plotfile"
	"github.com/mahesh-hegde/barplot/app/plotstore"
	"github.com/patrickmn/go-cache"
	"github.com/yuin/goldmark"
)

const (
	recentPlotsLimit = 20
	searchLimit      = 50
)

var contentTypes = map[string]string{
	"svg": "image/svg+xml",
	"png": "image/png",
	"pdf": "application/pdf",
}

type BarplotController struct {
	conf   *config.BarplotConfig
	store  plotstore.PlotStore
	index  *plotstore.PlotIndex
	charts *cache.Cache
	md     goldmark.Markdown
}

func NewBarplotController(conf *config.BarplotConfig, store plotstore.PlotStore, index *plotstore.PlotIndex) *BarplotController {
	ttl := time.Duration(conf.CacheMinutes) * time.Minute
	return &BarplotController{
		conf:   conf,
		store:  store,
		index:  index,
		charts: cache.New(ttl, 2*ttl),
		md:     goldmark.New(),
	}
}

type PlotSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

func summarize(p plotstore.StoredPlot) PlotSummary {
	return PlotSummary{ID: p.ID, Title: p.Title, CreatedAt: p.CreatedAt}
}

type HomeTemplateData struct {
	InstanceName string
	Recent       []PlotSummary
}

type SeriesRow struct {
	Name       string
	Color      string
	Annotation template.HTML
}

type PlotTemplateData struct {
	Plot   PlotSummary
	Config *plotfile.Config
	Series []SeriesRow
	Source string
}

func (pc *BarplotController) parse(source []byte) (*plotfile.Config, error) {
	cfg, err := plotfile.Parse(bytes.NewReader(source), pc.conf.PlotOptions())
	if err != nil {
		return nil, common.FromParseError(err)
	}
	return cfg, nil
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, common.NewUserVisibleError(http.StatusBadRequest, "could not read request body")
	}
	return body, nil
}

func (pc *BarplotController) getStored(c echo.Context) (plotstore.StoredPlot, error) {
	id := c.Param("id")
	p, err := pc.store.Get(c.Request().Context(), id)
	if errors.Is(err, plotstore.ErrNotFound) {
		return p, common.NewUserVisibleError(http.StatusNotFound, fmt.Sprintf("No plot with id %q", id))
	}
	return p, err
}

// renderCached renders cfg in format, reusing an earlier rendering stored
// under key.
func (pc *BarplotController) renderCached(key string, cfg func() (*plotfile.Config, error), format string) ([]byte, error) {
	if b, found := pc.charts.Get(key); found {
		return b.([]byte), nil
	}
	parsed, err := cfg()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	size := chart.Size{WidthInches: pc.conf.Render.WidthInches, HeightInches: pc.conf.Render.HeightInches}
	if err := chart.Render(parsed, &buf, format, size); err != nil {
		return nil, common.NewUserVisibleError(http.StatusUnprocessableEntity, err.Error())
	}
	pc.charts.Set(key, buf.Bytes(), cache.DefaultExpiration)
	return buf.Bytes(), nil
}

func (pc *BarplotController) annotationHTML(text string) template.HTML {
	var buf bytes.Buffer
	if err := pc.md.Convert([]byte(text), &buf); err != nil {
		slog.Warn("could not render annotation", "err", err)
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

func (pc *BarplotController) GetHome(c echo.Context) error {
	plots, err := pc.store.List(c.Request().Context(), recentPlotsLimit)
	if err != nil {
		return err
	}
	data := HomeTemplateData{InstanceName: pc.conf.InstanceName}
	for _, p := range plots {
		data.Recent = append(data.Recent, summarize(p))
	}
	return c.Render(http.StatusOK, "home", data)
}

func (pc *BarplotController) ParsePlot(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	cfg, err := pc.parse(body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}

func (pc *BarplotController) RenderPlot(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = pc.conf.Render.Format
	}
	if !slices.Contains(chart.Formats, format) {
		return common.NewUserVisibleError(http.StatusBadRequest, fmt.Sprintf("Unsupported format %q", format))
	}
	body, err := readBody(c)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("body:%s:%x", format, sha256.Sum256(body))
	out, err := pc.renderCached(key, func() (*plotfile.Config, error) { return pc.parse(body) }, format)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentTypes[format], out)
}

func (pc *BarplotController) createPlot(c echo.Context, source []byte) (plotstore.StoredPlot, error) {
	cfg, err := pc.parse(source)
	if err != nil {
		return plotstore.StoredPlot{}, err
	}
	if _, err := chart.NewPlot(cfg); err != nil {
		return plotstore.StoredPlot{}, common.NewUserVisibleError(http.StatusUnprocessableEntity, err.Error())
	}
	p, err := pc.store.Add(c.Request().Context(), string(source), cfg)
	if err != nil {
		return p, err
	}
	if err := pc.index.Index(p); err != nil {
		slog.Error("could not index plot", "id", p.ID, "err", err)
	}
	slog.Info("stored plot", "id", p.ID, "series", cfg.SeriesCount, "categories", len(cfg.Categories))
	return p, nil
}

func (pc *BarplotController) CreatePlot(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	p, err := pc.createPlot(c, body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// CreatePlotForm handles the upload form on the home page.
func (pc *BarplotController) CreatePlotForm(c echo.Context) error {
	p, err := pc.createPlot(c, []byte(c.FormValue("source")))
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, c.Echo().Reverse("plot", p.ID))
}

func (pc *BarplotController) GetPlot(c echo.Context) error {
	p, err := pc.getStored(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (pc *BarplotController) GetPlotChart(c echo.Context) error {
	p, err := pc.getStored(c)
	if err != nil {
		return err
	}
	out, err := pc.renderCached("plot:"+p.ID, func() (*plotfile.Config, error) { return p.Config, nil }, "svg")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentTypes["svg"], out)
}

func (pc *BarplotController) SearchPlots(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return common.NewUserVisibleError(http.StatusBadRequest, "Query parameter q is required")
	}
	ctx := c.Request().Context()
	ids, err := pc.index.Search(ctx, q, searchLimit)
	if err != nil {
		return common.NewUserVisibleError(http.StatusBadRequest, fmt.Sprintf("Invalid query: %v", err))
	}
	results := make([]PlotSummary, 0, len(ids))
	for _, id := range ids {
		p, err := pc.store.Get(ctx, id)
		if err != nil {
			slog.Warn("indexed plot missing from store", "id", id, "err", err)
			continue
		}
		results = append(results, summarize(p))
	}
	return c.JSON(http.StatusOK, results)
}

func (pc *BarplotController) GetPlotPage(c echo.Context) error {
	p, err := pc.getStored(c)
	if err != nil {
		return err
	}
	cfg := p.Config
	data := PlotTemplateData{
		Plot:   summarize(p),
		Config: cfg,
		Source: p.Source,
	}
	for i := 0; i < cfg.SeriesCount; i++ {
		row := SeriesRow{Color: cfg.Colors[i], Annotation: pc.annotationHTML(cfg.Arguments[i])}
		if i < len(cfg.Directives.Labels) {
			row.Name = cfg.Directives.Labels[i]
		} else {
			row.Name = fmt.Sprintf("series %d", i+1)
		}
		data.Series = append(data.Series, row)
	}
	return c.Render(http.StatusOK, "plot", data)
}
