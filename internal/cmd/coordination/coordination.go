// Package coordination parses coordination service flags and launches the service.
package coordination

import (
	"context"
	"flag"

	entrypoint "github.com/dealdeskhq/dealdesk/internal/platform/cmd"
	server "github.com/dealdeskhq/dealdesk/internal/services/coordination/app"
)

// Config holds coordination command configuration.
type Config struct {
	HTTPPort int `env:"DEALDESK_HTTP_PORT" envDefault:"8080"`
	GRPCPort int `env:"DEALDESK_GRPC_PORT" envDefault:"8090"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.HTTPPort, "http-port", cfg.HTTPPort, "The coordination HTTP API port")
	fs.IntVar(&cfg.GRPCPort, "grpc-port", cfg.GRPCPort, "The coordination health endpoint port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the coordination service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCoordination, func(context.Context) error {
		return server.Run(ctx, cfg.HTTPPort, cfg.GRPCPort)
	})
}
