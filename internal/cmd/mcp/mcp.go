// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"strings"

	entrypoint "github.com/louisbranch/sceneforge/internal/platform/cmd"
	"github.com/louisbranch/sceneforge/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	ControlURL   string `env:"SCENEFORGE_CONTROL_URL"   envDefault:"ws://localhost:8765/ws"`
	ControlToken string `env:"SCENEFORGE_CONTROL_TOKEN"`
	Transport    string `env:"SCENEFORGE_MCP_TRANSPORT" envDefault:"stdio"`
	HTTPAddr     string `env:"SCENEFORGE_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	APIToken     string `env:"SCENEFORGE_MCP_API_TOKEN"`
	AllowedHosts string `env:"SCENEFORGE_MCP_ALLOWED_HOSTS"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.ControlURL, "control-url", cfg.ControlURL, "control server WebSocket URL")
	fs.StringVar(&cfg.ControlToken, "control-token", cfg.ControlToken, "bearer token for the control server")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address (for HTTP transport)")
	fs.StringVar(&cfg.APIToken, "api-token", cfg.APIToken, "bearer token guarding the HTTP transport")
	fs.StringVar(&cfg.AllowedHosts, "allowed-hosts", cfg.AllowedHosts, "comma-separated extra Host values accepted over HTTP")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		var hosts []string
		for _, host := range strings.Split(cfg.AllowedHosts, ",") {
			if trimmed := strings.TrimSpace(host); trimmed != "" {
				hosts = append(hosts, trimmed)
			}
		}
		return service.Run(ctx, service.Config{
			ControlURL:   cfg.ControlURL,
			ControlToken: cfg.ControlToken,
			Transport:    service.Transport(cfg.Transport),
			HTTPAddr:     cfg.HTTPAddr,
			APIToken:     cfg.APIToken,
			AllowedHosts: hosts,
		})
	})
}
