// Command gardener is the "gardener" CLI subcommand: it listens for worker
// connections and, optionally, HTTP input, dispatching Work over whichever
// worker session is next in fair rotation.
//
// Grounded on the now-removed cmd/server/main.go's flag-parse,
// graceful-shutdown-on-signal structure, adapted from a single REST server
// to two independently optional listeners (worker websocket, HTTP input).
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/smilemakc/gardenflow/config"
	"github.com/smilemakc/gardenflow/garden"
	"github.com/smilemakc/gardenflow/gardener"
	"github.com/smilemakc/gardenflow/ingress"
	"github.com/smilemakc/gardenflow/plugin"
	"github.com/smilemakc/gardenflow/transport/wsworker"
)

func main() {
	var (
		listenAddr    = flag.String("listen", "", "worker websocket listen address (overrides config)")
		inputEndpoint = flag.String("input", "", "HTTP input listen address, empty disables it (overrides config)")
		storeURI      = flag.String("store", "", "store URI: memory, sqlite:<path>, or postgres:// DSN (overrides config)")
		pluginModule  = flag.String("plugin", "", "path to the path-declaration manifest (overrides config)")
	)
	flag.Parse()

	cfg := config.Load()
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *inputEndpoint != "" {
		cfg.InputEndpoint = *inputEndpoint
	}
	if *storeURI != "" {
		cfg.StoreURI = *storeURI
	}
	if *pluginModule != "" {
		cfg.PluginModule = *pluginModule
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()
	store, err := config.OpenStore(ctx, cfg.StoreURI)
	if err != nil {
		log.Fatal().Err(err).Msg("gardener: failed to open store")
	}

	g := garden.New()
	if cfg.PluginModule != "" {
		if err := plugin.NewLoader(plugin.Builtins).DeclarePaths(cfg.PluginModule, g); err != nil {
			log.Fatal().Err(err).Msg("gardener: failed to load path manifest")
		}
	}

	gn := gardener.New(g, store)

	transport := wsworker.NewGardenerTransport(gn)
	if _, err := gn.SubscribeWorkSink(transport); err != nil {
		log.Fatal().Err(err).Msg("gardener: failed to wire work sink")
	}

	var servers []*http.Server
	servers = append(servers, &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: transport,
	})

	if cfg.InputEndpoint != "" {
		limiter := rate.NewLimiter(rate.Limit(50), 100)
		servers = append(servers, &http.Server{
			Addr:    cfg.InputEndpoint,
			Handler: ingress.NewServer(gn, limiter),
		})
	}

	for _, srv := range servers {
		srv := srv
		go func() {
			log.Info().Str("address", srv.Addr).Msg("gardener: listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Str("address", srv.Addr).Msg("gardener: listener failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("gardener: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Str("address", srv.Addr).Msg("gardener: forced shutdown")
			os.Exit(1)
		}
	}
	log.Info().Msg("gardener: exited gracefully")
}
