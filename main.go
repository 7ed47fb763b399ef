package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/html"

	"pageblock/compiler"
	"pageblock/config"
	"pageblock/dom"
	"pageblock/source"
	"pageblock/updater"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	pagePath := flag.String("page", "", "Run cosmetic enforcement over an HTML file and exit")
	oneShot := flag.Bool("oneshot", false, "Compile once, write output, and exit")
	flag.Parse()

	logger := slog.Default()
	logger.Info("starting pageblock engine")

	// 1. Load Config
	cfgMgr := config.NewManager(*configPath)
	if err := cfgMgr.Load(); err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
	}
	cfg := cfgMgr.Get()

	if !cfg.Engine.Enabled {
		logger.Info("engine disabled by config, exiting")
		return
	}

	// 2. Build Sources
	loader := source.NewLoader(cfg.Engine.DataDir, logger)
	defer loader.Close()
	sources := buildSources(cfg, loader, logger)

	// 3. Initial Compile
	comp := compiler.New(sources, logger)
	if err := comp.Compile(context.Background()); err != nil {
		logger.Error("initial compile failed", "error", err)
		os.Exit(1)
	}
	if err := writeDirectives(cfg.Engine.OutputPath, comp); err != nil {
		logger.Error("failed to write directives", "error", err)
		os.Exit(1)
	}
	logger.Info("directives written",
		"path", cfg.Engine.OutputPath,
		"directives", len(comp.Directives()),
		"cosmetic", len(comp.CosmeticRules()))

	// 4. Optional debug page run
	if *pagePath != "" {
		if err := runPage(*pagePath, cfg.DOM.PageHostname, comp, logger); err != nil {
			logger.Error("page run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *oneShot {
		return
	}

	// 5. Periodic Updates
	upd := updater.NewUpdater(comp, func() {
		if err := writeDirectives(cfg.Engine.OutputPath, comp); err != nil {
			logger.Error("failed to write directives", "error", err)
		}
	}, logger)
	upd.Run()

	// Wait for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigChan
	logger.Info("shutting down", "signal", s.String())
	upd.Stop()
}

// buildSources assembles the configured sources around the shared loader.
func buildSources(cfg *config.Config, loader *source.Loader, logger *slog.Logger) []source.Source {
	var sources []source.Source
	for _, sc := range cfg.Sources {
		interval := time.Duration(sc.IntervalMinutes) * time.Minute
		switch sc.Format {
		case "json":
			sources = append(sources, source.NewDefaultBlockSource(sc.URL, loader, sc.IDRange, interval, logger))
		default:
			sources = append(sources, source.NewEasyListSource(sc.Name, sc.URL, loader, sc.IDRange, interval))
		}
	}
	store := source.NewFileStore(cfg.Custom.StorePath)
	sources = append(sources, source.NewCustomPatternSource(store, cfg.Custom.IDRange, logger))
	return sources
}

func writeDirectives(path string, comp *compiler.Compiler) error {
	data, err := json.MarshalIndent(comp.Directives(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// runPage parses an HTML file, runs the hybrid executor over it with the
// compiled cosmetic rules, and prints the resulting stats.
func runPage(path, hostname string, comp *compiler.Compiler, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	exec := dom.NewHybridExecutor(doc, logger)
	defer exec.Cleanup()

	total := exec.Execute(comp.CosmeticRules(), hostname)
	logger.Info("page pass complete", "total", total)

	stats, err := json.MarshalIndent(exec.Stats(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(stats))
	return nil
}
