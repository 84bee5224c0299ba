// Command worker is the "worker" CLI subcommand: it connects to a gardener
// endpoint and executes whatever Work arrives against its registered
// functions, reconnecting with backoff on disconnect.
//
// Grounded on the now-removed cmd/server/main.go's flag-parse/graceful-shutdown
// structure, adapted from an HTTP listener to an outbound websocket dial loop.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/smilemakc/gardenflow/config"
	"github.com/smilemakc/gardenflow/garden"
	"github.com/smilemakc/gardenflow/plugin"
	_ "github.com/smilemakc/gardenflow/plugin/builtin"
	"github.com/smilemakc/gardenflow/transport/wsworker"
	"github.com/smilemakc/gardenflow/worker"
)

func main() {
	var (
		endpoint     = flag.String("endpoint", "", "gardener websocket endpoint (overrides config)")
		pluginModule = flag.String("plugin", "", "path to the function manifest (overrides config)")
		poolSize     = flag.Int("pool", 0, "pooled worker goroutine count, 0 uses config default")
	)
	flag.Parse()

	cfg := config.Load()
	if *endpoint != "" {
		cfg.WorkerEndpoint = *endpoint
	}
	if *pluginModule != "" {
		cfg.PluginModule = *pluginModule
	}
	if *poolSize > 0 {
		cfg.WorkerPoolSize = *poolSize
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.PluginModule == "" {
		log.Fatal().Msg("worker: PLUGIN_MODULE is required to know which functions to run")
	}

	// pool and transport each need the other (pool emits through transport,
	// transport forwards DoWork into pool): allocate transport empty, hand
	// its pointer to pool as the Sink, then fill it in below once pool
	// exists to pass as its LocalWorker.
	transport := &wsworker.WorkerTransport{}
	pool := worker.NewPooled(transport, cfg.WorkerPoolSize)
	defer pool.Close()

	// The manifest's recipe structure is irrelevant to the worker process
	// (it never walks the Garden); only its function registrations matter,
	// so its paths are declared into a throwaway Garden.
	scratch := garden.New()
	if err := plugin.NewLoader(plugin.Builtins).Load(cfg.PluginModule, scratch, pool); err != nil {
		log.Fatal().Err(err).Msg("worker: failed to load function manifest")
	}

	*transport = *wsworker.NewWorkerTransport(cfg.WorkerEndpoint, pool)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- transport.Run(ctx) }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("worker: shutting down")
		cancel()
		<-runErr
	case err := <-runErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("worker: transport exited")
			os.Exit(1)
		}
	}

	log.Info().Msg("worker: exited gracefully")
}
