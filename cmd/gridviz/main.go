package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pdrpinto/gridastar/internal/mapstore"
	"github.com/pdrpinto/gridastar/internal/vizserver"
)

// Configuration represents all the settings for the visualiser
type Configuration struct {
	Addr           string
	DatabasePath   string
	Workers        int
	MaxExpansions  int
	MaxRuns        int
	StreamInterval time.Duration
	JSONLogs       bool
	DebugMode      bool
}

func main() {
	config := parseConfig()
	setupLogging(config)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config); err != nil {
		log.WithError(err).Fatal("gridviz stopped")
	}
}

func parseConfig() *Configuration {
	config := &Configuration{}

	flag.StringVar(&config.Addr, "addr", "", "Listen address (defaults to :$PORT or :8080)")
	flag.StringVar(&config.DatabasePath, "db", "", "SQLite file for saved maps (disabled when empty)")
	flag.IntVar(&config.Workers, "workers", 4, "Worker goroutines per search")
	flag.IntVar(&config.MaxExpansions, "max-expansions", 0, "Stop a search after this many expansions (0 = no limit)")
	flag.IntVar(&config.MaxRuns, "max-runs", 32, "Runs held at once before the oldest is evicted")
	flag.DurationVar(&config.StreamInterval, "interval", 50*time.Millisecond, "Delay between streamed steps")
	flag.BoolVar(&config.JSONLogs, "json", false, "Log as JSON")
	flag.BoolVar(&config.DebugMode, "debug", false, "Enable debug logging")
	flag.Parse()

	if config.Addr == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
			log.Printf("Defaulting to port %s", port)
		}
		config.Addr = ":" + port
	}
	return config
}

func setupLogging(config *Configuration) {
	if config.JSONLogs {
		log.SetFormatter(&log.JSONFormatter{})
	}
	if config.DebugMode {
		log.SetLevel(log.DebugLevel)
		log.Debug("Debug mode enabled")
	}
}

func run(ctx context.Context, config *Configuration) error {
	var store *mapstore.Store
	if config.DatabasePath != "" {
		var err error
		store, err = mapstore.Open(config.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		log.WithField("db", store.Path()).Info("map store opened")
	}

	server := vizserver.New(vizserver.Config{
		Workers:        config.Workers,
		MaxExpansions:  config.MaxExpansions,
		MaxRuns:        config.MaxRuns,
		StreamInterval: config.StreamInterval,
	}, store, log.StandardLogger())
	defer server.Close()

	// Try the configured address first, then fall back to a random free port
	ln, err := net.Listen("tcp", config.Addr)
	if err != nil {
		log.WithError(err).Warnf("cannot listen on %s, picking a free port", config.Addr)
		ln, err = net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return err
		}
	}
	log.Infof("GUI: http://%s", ln.Addr())

	srv := &http.Server{Handler: server, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- srv.Serve(ln) }()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		log.Info("Received shutdown signal, gracefully shutting down...")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
