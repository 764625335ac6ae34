package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/sceneforge/internal/platform/timeouts"
)

// serveHTTP exposes the MCP server over streamable HTTP with host and
// token checks in front. Defaults bind to localhost only.
func (s *Server) serveHTTP(ctx context.Context, cfg Config) error {
	defer s.Close()

	addr := cfg.HTTPAddr
	if addr == "" {
		addr = "localhost:8081"
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", s.guard(cfg, handler))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := "ok"
		if s.controlDown.Load() {
			status = "degraded"
		}
		fmt.Fprintf(w, `{"status":%q}`, status)
	})

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go s.monitorControl(monitorCtx)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("mcp http transport listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown mcp http transport: %w", err)
	}
	return <-errCh
}

// guard enforces the Host allowlist and API token before requests reach
// the MCP handler. Host validation blocks DNS-rebinding attacks on a
// localhost-bound server.
func (s *Server) guard(cfg Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hostAllowed(r.Host, cfg.AllowedHosts) {
			log.Printf("mcp http: rejected host %q", r.Host)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		if cfg.APIToken != "" {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || !subtleEquals(strings.TrimSpace(token), cfg.APIToken) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// hostAllowed accepts localhost forms by default plus any configured hosts.
func hostAllowed(host string, allowed []string) bool {
	if host == "" {
		return false
	}
	name := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		name = h
	}
	if name == "localhost" || name == "127.0.0.1" || name == "::1" {
		return true
	}
	for _, entry := range allowed {
		if strings.EqualFold(strings.TrimSpace(entry), name) {
			return true
		}
	}
	return false
}

// subtleEquals compares tokens in constant time.
func subtleEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
