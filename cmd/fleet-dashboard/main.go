package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/haulstat/fleet-dashboard/internal/config"
	"github.com/haulstat/fleet-dashboard/internal/dashboard"
	"github.com/haulstat/fleet-dashboard/internal/ingest"
	"github.com/haulstat/fleet-dashboard/internal/mcp"
	"github.com/haulstat/fleet-dashboard/internal/report"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging builds the process logger. In stdio mode all logging goes
// to stderr so it cannot interfere with the MCP protocol on stdout.
func setupLogging(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	out := os.Stdout
	if cfg.IsStdioMode() {
		out = os.Stderr
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func newSession(cfg *config.Config, logger *slog.Logger) *dashboard.Session {
	var reporter report.StatusReporter
	if cfg.IsStdioMode() {
		reporter = report.NopReporter{}
	} else {
		reporter = report.NewLogReporter(logger)
	}

	opts := report.DefaultOptions()
	opts.PageWarnThreshold = cfg.PageWarnThreshold

	extractor := report.NewExtractor(report.NewPDFEngine(), reporter, opts)
	return dashboard.NewSession(extractor, cfg.Rules(), cfg.MaxFileSize, logger)
}

// runImportMode imports a single report, prints its summary and optionally
// writes an Excel export.
func runImportMode(ctx context.Context, cfg *config.Config, session *dashboard.Session, logger *slog.Logger) error {
	summary, err := session.ImportFile(ctx, cfg.InputPath, cfg.Format())
	if err != nil {
		return fmt.Errorf("importing %s: %w", cfg.InputPath, err)
	}

	stats := session.Summary()
	fmt.Printf("Imported %d record(s) from %s (%d page(s))\n", summary.Imported, cfg.InputPath, summary.Pages)
	fmt.Printf("Average payload: %.1f t  min: %.1f t  max: %.1f t\n",
		stats.AveragePayload, stats.MinPayload, stats.MaxPayload)
	fmt.Printf("Excavators: %d  Dump trucks: %d\n", stats.ExcavatorCount, stats.DumpTruckCount)

	for _, inv := range summary.Invalid {
		logger.Warn("record rejected",
			"equipment", inv.Record.EquipmentNumber,
			"issues", inv.Issues,
		)
	}

	if cfg.XLSXPath != "" {
		if err := session.ExportXLSX(cfg.XLSXPath); err != nil {
			return fmt.Errorf("exporting workbook: %w", err)
		}
		fmt.Printf("Workbook written to %s\n", cfg.XLSXPath)
	}
	return nil
}

// runWatchMode imports every PDF report that appears in the configured
// directory until interrupted.
func runWatchMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config,
	session *dashboard.Session, logger *slog.Logger,
) error {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	paths, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Root:        cfg.ReportsDirectory,
		InitialScan: true,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", cfg.ReportsDirectory, err)
	}

	logger.Info("watching for reports", "directory", cfg.ReportsDirectory)

	for {
		select {
		case sig := <-signalCh:
			logger.Info("shutting down", "signal", sig.String())
			cancel()
			return nil
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		case path, ok := <-paths:
			if !ok {
				return nil
			}
			summary, err := session.ImportFile(ctx, path, cfg.Format())
			if err != nil {
				logger.Error("import failed", "path", path, "error", err)
				continue
			}
			logger.Info("report imported",
				"path", path,
				"imported", summary.Imported,
				"invalid", len(summary.Invalid),
			)
			if cfg.XLSXPath != "" {
				if err := session.ExportXLSX(cfg.XLSXPath); err != nil {
					logger.Error("export failed", "path", cfg.XLSXPath, "error", err)
				}
			}
		}
	}
}

// runStdioMode serves the MCP tool surface; the parent process controls
// our lifecycle.
func runStdioMode(ctx context.Context, cfg *config.Config, session *dashboard.Session, logger *slog.Logger) error {
	server, err := mcp.NewServer(cfg, session)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}
	if cfg.IsDebug() {
		logger.Debug("starting MCP server in stdio mode")
	}
	return server.Run(ctx)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		logger.Debug("starting", "config", cfg.String())
	}

	session := newSession(cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch cfg.Mode {
	case config.ModeImport:
		err = runImportMode(ctx, cfg, session, logger)
	case config.ModeWatch:
		err = runWatchMode(ctx, cancel, cfg, session, logger)
	case config.ModeStdio:
		err = runStdioMode(ctx, cfg, session, logger)
	}
	if err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Fleet Payload Dashboard\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
