package service

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/sceneforge/internal/services/control/client"
	"github.com/louisbranch/sceneforge/internal/services/mcp/domain"
)

const (
	serverName = "sceneforge"

	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Transport selects how the MCP server talks to its client.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// Config configures the MCP service entrypoint.
type Config struct {
	// ControlURL is the control server WebSocket endpoint.
	ControlURL string

	// ControlToken is the bearer token for the control server, if any.
	ControlToken string

	// Transport selects stdio (default) or http.
	Transport Transport

	// HTTPAddr is the HTTP listen address when Transport is http.
	HTTPAddr string

	// APIToken guards the HTTP transport when set.
	APIToken string

	// AllowedHosts restricts Host headers on the HTTP transport.
	AllowedHosts []string
}

// Server binds MCP tools and resources to a control-server client.
type Server struct {
	mcpServer *mcp.Server
	control   *client.Client

	pingInterval time.Duration
	controlDown  atomic.Bool
}

// New creates a configured MCP server that proxies tool calls to the
// control server at controlURL.
func New(controlURL, controlToken string) (*Server, error) {
	if controlURL == "" {
		return nil, fmt.Errorf("control server url is required")
	}

	control := client.New(controlURL, client.Options{Token: controlToken})
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	s := &Server{
		mcpServer:    mcpServer,
		control:      control,
		pingInterval: 30 * time.Second,
	}
	s.register()
	return s, nil
}

// monitorControl periodically pings the control server. An unreachable
// control server is logged and reflected in /healthz but does not stop
// the transport; individual tool calls surface their own errors.
func (s *Server) monitorControl(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := s.control.Ping(callCtx)
			cancel()

			switch {
			case err != nil:
				s.controlDown.Store(true)
				log.Printf("control server health check failed: %v", err)
			case s.controlDown.Swap(false):
				log.Printf("control server reachable again")
			}
		}
	}
}

// register binds every scene tool and resource once at construction.
func (s *Server) register() {
	mcp.AddTool(s.mcpServer, domain.CreateObjectTool(), domain.CreateObjectHandler(s.control))
	mcp.AddTool(s.mcpServer, domain.MoveObjectTool(), domain.MoveObjectHandler(s.control))
	mcp.AddTool(s.mcpServer, domain.RotateObjectTool(), domain.RotateObjectHandler(s.control))
	mcp.AddTool(s.mcpServer, domain.ScaleObjectTool(), domain.ScaleObjectHandler(s.control))
	mcp.AddTool(s.mcpServer, domain.SetMaterialTool(), domain.SetMaterialHandler(s.control))
	mcp.AddTool(s.mcpServer, domain.SceneInfoTool(), domain.SceneInfoHandler(s.control))
	mcp.AddTool(s.mcpServer, domain.ClearSceneTool(), domain.ClearSceneHandler(s.control))
	mcp.AddTool(s.mcpServer, domain.RenderTool(), domain.RenderHandler(s.control))
	mcp.AddTool(s.mcpServer, domain.RenderSettingsTool(), domain.RenderSettingsHandler(s.control))

	s.mcpServer.AddResource(domain.ObjectsResource(), domain.ObjectsResourceHandler(s.control))
	s.mcpServer.AddResource(domain.RenderSettingsResource(), domain.RenderSettingsResourceHandler(s.control))
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Close releases the control-server connection held by the server.
func (s *Server) Close() error {
	if s == nil || s.control == nil {
		return nil
	}
	return s.control.Close()
}

// serveWithTransport starts the MCP server using the provided transport.
// The server and its control connection share a single exit path so cleanup
// is consistent for both stdio and HTTP runs.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("mcp server is not configured")
	}
	defer s.Close()
	return s.mcpServer.Run(ctx, transport)
}

// Run is the service entrypoint for MCP and blocks until context
// cancellation. Startup chooses stdio for local tools and HTTP for remote
// integrations.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	server, err := New(cfg.ControlURL, cfg.ControlToken)
	if err != nil {
		return err
	}

	// Ping the control server up front so a bad URL fails at startup
	// rather than on the first tool call.
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = server.control.Ping(pingCtx)
	cancel()
	if err != nil {
		server.Close()
		return fmt.Errorf("control server unreachable at %s: %w", cfg.ControlURL, err)
	}

	switch cfg.Transport {
	case TransportStdio:
		return server.Serve(ctx)
	case TransportHTTP:
		return server.serveHTTP(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}
