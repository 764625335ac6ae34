// Package server parses control server flags and starts the service.
package server

import (
	"context"
	"flag"
	"strings"

	entrypoint "github.com/louisbranch/sceneforge/internal/platform/cmd"
	"github.com/louisbranch/sceneforge/internal/services/control/app"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Config holds control server configuration.
type Config struct {
	Addr       string `env:"SCENEFORGE_ADDR"        envDefault:"localhost:8765"`
	DBPath     string `env:"SCENEFORGE_DB_PATH"`
	RenderDir  string `env:"SCENEFORGE_RENDER_DIR"`
	AllowedIPs string `env:"SCENEFORGE_ALLOWED_IPS"`
	JWTSecret  string `env:"SCENEFORGE_JWT_SECRET"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "WebSocket listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite audit database path (empty keeps records in memory)")
	fs.StringVar(&cfg.RenderDir, "render-dir", cfg.RenderDir, "directory for render output without an explicit path")
	fs.StringVar(&cfg.AllowedIPs, "allowed-ips", cfg.AllowedIPs, "comma-separated IPs or CIDR ranges allowed besides loopback")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "HMAC secret enabling bearer auth for remote clients")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Run starts the control server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		return app.Run(ctx, app.Options{
			Addr:       cfg.Addr,
			DBPath:     cfg.DBPath,
			RenderDir:  cfg.RenderDir,
			AllowedIPs: splitList(cfg.AllowedIPs),
			JWTSecret:  cfg.JWTSecret,
			Version:    Version,
		})
	})
}
