// Package config loads the environment-variable driven configuration both
// cmd/gardener and cmd/worker bootstrap from.
//
// Grounded on the now-removed internal/config/config.go's getEnv-fallback idiom, extended
// with the worker-endpoint/input-endpoint/store-URI/plugin-module fields the
// CLI surface names.
package config

import (
	"os"
	"strconv"
)

// Config is the full set of settings either binary may need; each only
// reads the fields relevant to its own subcommand.
type Config struct {
	// ListenAddr is where the gardener subcommand accepts worker
	// websocket connections.
	ListenAddr string
	// InputEndpoint is where the gardener subcommand optionally listens
	// for the HTTP input endpoint. Empty disables it.
	InputEndpoint string
	// WorkerEndpoint is the gardener websocket URL the worker subcommand
	// dials.
	WorkerEndpoint string
	// StoreURI selects and configures the backing store: "memory",
	// "sqlite:<path>", or a postgres:// DSN.
	StoreURI string
	// PluginModule is the path to the YAML manifest declaring paths and
	// their worker functions.
	PluginModule string
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string
	// WorkerPoolSize sizes the worker subcommand's Pooled executor.
	WorkerPoolSize int
}

// Load reads Config from the environment, falling back to development
// defaults for anything unset.
func Load() *Config {
	return &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		InputEndpoint:  getEnv("INPUT_ENDPOINT", ""),
		WorkerEndpoint: getEnv("WORKER_ENDPOINT", "ws://localhost:8080/worker"),
		StoreURI:       getEnv("STORE_URI", "memory"),
		PluginModule:   getEnv("PLUGIN_MODULE", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		WorkerPoolSize: getEnvInt("WORKER_POOL_SIZE", 4),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
