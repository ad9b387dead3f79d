package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/KaziBadrul/Acadex-sub000/internal/config"
	appLog "github.com/KaziBadrul/Acadex-sub000/internal/log"
	"github.com/KaziBadrul/Acadex-sub000/internal/routine"
	"github.com/KaziBadrul/Acadex-sub000/internal/store"
	"github.com/KaziBadrul/Acadex-sub000/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	parseOnly  bool
	logLevel   string
}

func main() {
	appLog.Info("routinecal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI overrides.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	// One-shot mode: OCR text on stdin, routine events on stdout.
	// Useful for piping OCR output through without running the server.
	if flags.parseOnly {
		if err := runParseOnly(conf); err != nil {
			appLog.Error("parse failed", err)
			os.Exit(1)
		}
		return
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"horizon_days", conf.HorizonDays,
		"class_start", conf.ClassStart,
		"class_end", conf.ClassEnd,
		"db_path", conf.DBPath,
		"preview", conf.PreviewPath != "",
	)

	st, err := store.Open(conf.DBPath)
	if err != nil {
		appLog.Error("failed to open store", err, "db_path", conf.DBPath)
		os.Exit(1)
	}
	defer st.Close()

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	srv := web.NewServer(conf, st)

	// The week projection is anchored to the current Sunday, so the
	// cached view (and the preview image, when enabled) must roll over
	// on a schedule rather than only on writes.
	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		srv.InvalidateProjection()
		if conf.PreviewPath == "" {
			return
		}
		capCtx, capCancel := context.WithTimeout(ctx, 60*time.Second)
		defer capCancel()
		if err := srv.CapturePreview(capCtx); err != nil {
			appLog.Error("scheduled preview capture failed", err)
			return
		}
		appLog.Info("scheduled preview capture completed", "path", conf.PreviewPath)
	}); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	httpServer := &http.Server{
		Addr:              conf.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLog.Error("HTTP server shutdown failed", err)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			appLog.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}

	appLog.Info("routinecal exiting")
}

// runParseOnly reads OCR text from stdin and writes the parsed routine
// events as JSON to stdout.
func runParseOnly(conf *config.Config) error {
	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	events := routine.ParseWith(string(text), routine.Options{
		DefaultStart: conf.ClassStart,
		DefaultEnd:   conf.ClassEnd,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./routinecal.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.parseOnly, "parse", false, "Parse OCR text from stdin to JSON and exit")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level: debug/info/warn/error (overrides config)")

	flag.Parse()

	return cfg
}
