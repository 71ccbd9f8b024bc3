package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mahesh-hegde/barplot/app/chart"
	"github.com/mahesh-hegde/barplot/app/config"
	"github.com/mahesh-hegde/barplot/app/plotfile"
	"github.com/mahesh-hegde/barplot/app/plotstore"
	"github.com/mahesh-hegde/barplot/app/server"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: barplot <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  check     Parse and validate a plot file")
	fmt.Fprintln(w, "  render    Draw a plot file as a grouped bar chart")
	fmt.Fprintln(w, "  server    Start the barplot HTTP server")
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	var err error
	switch args[0] {
	case "check":
		err = runCheck(args[1:], stdout, stderr)
	case "render":
		err = runRender(args[1:], stdout, stderr)
	case "server":
		err = runServer(args[1:], stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		printUsage(stderr)
		return 1
	}

	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// plotFlags are the options shared by every command that reads a plot file.
type plotFlags struct {
	input        string
	barWidth     float64
	defaultColor string
	verbose      bool
	configPath   string
}

func (pf *plotFlags) register(flags *pflag.FlagSet) {
	flags.StringVarP(&pf.input, "input", "i", "plot.in", "Plot file to read")
	flags.Float64VarP(&pf.barWidth, "bar-width", "b", plotfile.DefaultBarWidth, "Bar width used when the file has no barwidth directive")
	flags.StringVarP(&pf.defaultColor, "default-color", "c", plotfile.DefaultColor, "Color used for series without a color")
	flags.BoolVarP(&pf.verbose, "verbose", "v", false, "Print diagnostic output")
	flags.StringVar(&pf.configPath, "config", "", "Optional config.json supplying defaults")
}

// load reads the config file, lets explicitly set flags win, and parses the
// plot file.
func (pf *plotFlags) load(flags *pflag.FlagSet, logger *slog.Logger) (*config.BarplotConfig, *plotfile.Config, error) {
	conf, err := config.LoadConfig(pf.configPath)
	if err != nil {
		return nil, nil, err
	}
	if flags.Changed("bar-width") || pf.configPath == "" {
		conf.DefaultBarWidth = pf.barWidth
	}
	if flags.Changed("default-color") || pf.configPath == "" {
		conf.DefaultColor = pf.defaultColor
	}
	if err := conf.Validate(); err != nil {
		return nil, nil, err
	}

	logger.Debug("parsing plot file", "path", pf.input,
		"default_bar_width", conf.DefaultBarWidth, "default_color", conf.DefaultColor)
	cfg, err := plotfile.ParseFile(pf.input, conf.PlotOptions())
	if err != nil {
		return nil, nil, err
	}
	logger.Debug(fmt.Sprintf("plots %d, names %d", cfg.SeriesCount, len(cfg.Directives.Labels)),
		"categories", len(cfg.Categories), "bar_width", cfg.BarWidth, "log_scale", cfg.Directives.LogScale)
	if n := len(cfg.Directives.Labels); n != cfg.SeriesCount {
		logger.Debug("legend names do not match series count", "names", n, "series", cfg.SeriesCount)
	}
	return conf, cfg, nil
}

func runCheck(args []string, stdout, stderr io.Writer) error {
	flags := pflag.NewFlagSet("check", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	var pf plotFlags
	var asJSON bool
	pf.register(flags)
	flags.BoolVar(&asJSON, "json", false, "Print the parsed plot as JSON")

	if err := flags.Parse(args); err != nil {
		return err
	}

	logger := config.NewLogger(stderr, pf.verbose, "text")
	_, cfg, err := pf.load(flags, logger)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}
	fmt.Fprintf(stdout, "%s: %d series, %d categories, bar width %.4g\n",
		pf.input, cfg.SeriesCount, len(cfg.Categories), cfg.BarWidth)
	if title := cfg.Directives.Title; title != "" {
		fmt.Fprintf(stdout, "title: %s\n", title)
	}
	fmt.Fprintf(stdout, "categories: %s\n", strings.Join(cfg.Categories, ", "))
	return nil
}

func runRender(args []string, stdout, stderr io.Writer) error {
	flags := pflag.NewFlagSet("render", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	var pf plotFlags
	var output string
	var width, height float64
	pf.register(flags)
	flags.StringVarP(&output, "output", "o", "", "Output file; the extension picks svg, png or pdf (default: input name with .svg)")
	flags.Float64Var(&width, "width", chart.DefaultSize.WidthInches, "Chart width in inches")
	flags.Float64Var(&height, "height", chart.DefaultSize.HeightInches, "Chart height in inches")

	if err := flags.Parse(args); err != nil {
		return err
	}

	logger := config.NewLogger(stderr, pf.verbose, "text")
	conf, cfg, err := pf.load(flags, logger)
	if err != nil {
		return err
	}

	if !flags.Changed("width") {
		width = conf.Render.WidthInches
	}
	if !flags.Changed("height") {
		height = conf.Render.HeightInches
	}
	if output == "" {
		output = strings.TrimSuffix(pf.input, filepath.Ext(pf.input)) + ".svg"
	}
	size := chart.Size{WidthInches: width, HeightInches: height}
	if err := chart.RenderFile(cfg, output, size); err != nil {
		return err
	}
	logger.Debug("chart written", "path", output)
	fmt.Fprintln(stdout, output)
	return nil
}

func runServer(args []string, stderr io.Writer) error {
	flags := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	var serverConf config.ServerRuntimeConfig
	var dataDir, configPath string
	var verbose bool
	flags.StringVarP(&serverConf.Addr, "address", "a", "localhost", "Server address to bind")
	flags.IntVarP(&serverConf.Port, "port", "p", 8080, "Server port to bind")
	flags.IntVar(&serverConf.RateLimit, "rate-limit", 0, "Requests per second per client, 0 disables")
	flags.IntVar(&serverConf.GzipLevel, "gzip", 0, "Gzip compression level, 0 disables")
	flags.BoolVar(&serverConf.BehindLoadBalancer, "behind-lb", false, "Identify clients by X-Forwarded-For")
	flags.StringVarP(&dataDir, "data-dir", "d", "",
		"data directory holding barplot.db, the search index and an optional config.json")
	flags.StringVar(&configPath, "config", "", "config file (default: <data-dir>/config.json if present)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	if err := flags.Parse(args); err != nil {
		return err
	}
	slog.SetDefault(config.NewLogger(stderr, verbose, "json"))

	if dataDir == "" {
		return errors.New("--data-dir not provided")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	if configPath == "" {
		candidate := filepath.Join(dataDir, "config.json")
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	conf.DataDir = dataDir

	db, err := plotstore.NewSQLiteDB(dataDir)
	if err != nil {
		return fmt.Errorf("error while opening DB: %w", err)
	}
	defer db.Close()
	store := plotstore.NewSQLitePlotStore(db)
	if err := store.Init(); err != nil {
		return err
	}

	indexPath := ""
	if !conf.InMemoryIndex {
		indexPath = filepath.Join(dataDir, "plots.bleve")
	}
	index, err := plotstore.NewPlotIndex(indexPath)
	if err != nil {
		return err
	}
	defer index.Close()
	if conf.InMemoryIndex {
		if err := reindex(store, index); err != nil {
			return err
		}
	}

	controller := server.NewBarplotController(conf, store, index)
	return server.StartServer(controller, conf, serverConf)
}

// reindex fills an in-memory index from every stored plot.
func reindex(store plotstore.PlotStore, index *plotstore.PlotIndex) error {
	plots, err := store.List(context.Background(), math.MaxInt32)
	if err != nil {
		return fmt.Errorf("error while loading plots for indexing: %w", err)
	}
	for _, p := range plots {
		if err := index.Index(p); err != nil {
			return err
		}
	}
	slog.Info("search index rebuilt", "plots", len(plots))
	return nil
}
