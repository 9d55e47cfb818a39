package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripboard/internal/capture"
	"tripboard/internal/catalog"
	"tripboard/internal/config"
	appLog "tripboard/internal/log"
	"tripboard/internal/scheduler"
	"tripboard/internal/telemetry"
	"tripboard/internal/trip"
	"tripboard/internal/web"
)

const version = "0.1.0"

// flagConfig holds CLI flag values; they override the config file.
type flagConfig struct {
	configPath  string
	listen      string
	debug       bool
	captureOnce bool
}

func main() {
	flags := parseFlags()
	if err := run(flags); err != nil {
		appLog.Error("tripboard failed", err)
		os.Exit(1)
	}
}

func run(flags flagConfig) error {
	conf, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", flags.configPath, err)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.SetOutput(os.Stderr, conf.IsProduction())
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("tripboard starting", "version", version)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, conf.OtelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			appLog.Warn("telemetry shutdown failed", "err", err)
		}
	}()

	cat, err := catalog.Load(conf.Catalog)
	if err != nil {
		return err
	}

	debugTime, err := conf.ParseDebugTime(cat.Location())
	if err != nil {
		return err
	}
	clock := trip.NewClock(debugTime)

	appLog.Info("effective config",
		"listen", conf.Addr(),
		"env", conf.Env,
		"static_dir", conf.ResolvedStaticDir(),
		"catalog", catalogName(conf.Catalog),
		"events", len(cat.Events()),
		"locale", conf.Locale,
		"debug", flags.debug,
		"debug_time", conf.DebugTime,
		"capture", conf.Capture.Enabled,
		"tracing", conf.OtelEndpoint != "",
	)

	srv := web.NewServer(conf, cat, clock, flags.debug)

	if flags.captureOnce {
		return captureOnce(ctx, srv, conf)
	}

	sched := scheduler.New(cat.Location())
	watcher := trip.NewWatcher(cat)
	if err := sched.Add(conf.WatchEvery, "watch", func() {
		for _, tr := range watcher.Observe(clock.Now()) {
			appLog.Info("itinerary transition",
				"kind", string(tr.Kind),
				"event", tr.EventID,
				"title", tr.Title,
				"at", tr.At,
			)
		}
	}); err != nil {
		return err
	}
	if conf.Capture.Enabled {
		if err := sched.Add(conf.Capture.Schedule, "capture", func() {
			if err := capture.PagePNG(ctx, captureOptions(conf)); err != nil {
				appLog.Error("preview capture failed", err)
			}
		}); err != nil {
			return err
		}
	}
	sched.Start()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sched.Stop(sctx); err != nil {
			appLog.Warn("scheduler stop timed out", "err", err)
		}
	}()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	appLog.Info("tripboard exiting")
	return nil
}

// captureOnce serves the page just long enough to take one screenshot.
func captureOnce(ctx context.Context, srv *web.Server, conf *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	opts := captureOptions(conf)
	err := waitHealthy(ctx, opts.URL+"health", 10*time.Second)
	if err == nil {
		err = capture.PagePNG(ctx, opts)
	}
	cancel()
	if serr := <-errCh; serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		return fmt.Errorf("capture once: %w", err)
	}
	appLog.Info("preview captured", "path", opts.OutputPath)
	return nil
}

func captureOptions(conf *config.Config) capture.Options {
	return capture.Options{
		URL:        localURL(conf),
		OutputPath: conf.Capture.OutputPath,
		Width:      conf.Capture.Width,
		Height:     conf.Capture.Height,
		WaitReady:  true,
	}
}

// localURL turns the listen address into a loopback URL for the capture
// browser, carrying Basic Auth credentials when they are configured.
func localURL(conf *config.Config) string {
	addr := conf.Addr()
	host, port, err := net.SplitHostPort(addr)
	if err == nil {
		switch host {
		case "", "0.0.0.0", "::":
			host = "127.0.0.1"
		}
		addr = net.JoinHostPort(host, port)
	}
	u := url.URL{Scheme: "http", Host: addr, Path: "/"}
	if ba := conf.BasicAuth; ba != nil && ba.Username != "" && ba.Password != "" {
		u.User = url.UserPassword(ba.Username, ba.Password)
	}
	return u.String()
}

func waitHealthy(ctx context.Context, target string, limit time.Duration) error {
	deadline := time.Now().Add(limit)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return errors.New("server did not become healthy")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func catalogName(path string) string {
	if path == "" {
		return "(built-in)"
	}
	return path
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "config.yaml", "Path to config file (created with defaults if missing)")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging and the ?at= time override on /api")
	flag.BoolVar(&cfg.captureOnce, "capture-once", false, "Serve the page, write one preview screenshot and exit")

	flag.Parse()

	return cfg
}
