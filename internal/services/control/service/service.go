package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/louisbranch/sceneforge/internal/engine"
	"github.com/louisbranch/sceneforge/internal/platform/timeouts"
	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
	"github.com/louisbranch/sceneforge/internal/services/control/storage"
)

// Options configures the control server.
type Options struct {
	// Addr is the listen address, e.g. "localhost:8765".
	Addr string

	// AllowedIPs restricts which remote addresses may connect. Entries are
	// plain IPs or CIDR ranges. Loopback is always allowed. An empty list
	// allows loopback only.
	AllowedIPs []string

	// JWTSecret enables bearer-token authentication for non-loopback
	// connections when set.
	JWTSecret string

	// Version is reported by get_server_status.
	Version string
}

// Server is the WebSocket control server.
type Server struct {
	engine   engine.Engine
	store    storage.Store
	router   *Router
	executor *Executor
	opts     Options

	mu      sync.Mutex
	clients map[string]*client

	startedAt     time.Time
	commandsTotal atomic.Int64
}

// New assembles a control server around an engine and an audit store.
func New(eng engine.Engine, store storage.Store, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "localhost:8765"
	}
	s := &Server{
		engine:    eng,
		store:     store,
		router:    NewRouter(),
		executor:  NewExecutor(),
		opts:      opts,
		clients:   make(map[string]*client),
		startedAt: time.Now(),
	}
	s.registerHandlers()
	return s
}

// Run starts the HTTP listener and blocks until ctx is canceled or the
// listener fails. Shutdown closes client connections with a going-away
// frame before stopping the listener.
func (s *Server) Run(ctx context.Context) error {
	executorCtx, stopExecutor := context.WithCancel(context.Background())
	defer stopExecutor()
	go s.executor.Run(executorCtx)
	go s.monitorHeartbeats(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/healthz", s.handleHealth)

	httpServer := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logf("control server listening on %s", s.opts.Addr)
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

	s.logf("control server shutting down")
	s.closeClients()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.ClientCount(),
	})
}

// handleFrame routes one request frame and records the outcome.
func (s *Server) handleFrame(ctx context.Context, clientID string, frame []byte) protocol.Response {
	start := time.Now()
	resp := s.router.Dispatch(withClientID(ctx, clientID), frame)
	s.commandsTotal.Add(1)
	s.recordCommand(clientID, commandName(frame), resp, time.Since(start))
	return resp
}

func (s *Server) recordCommand(clientID, command string, resp protocol.Response, duration time.Duration) {
	rec := storage.CommandRecord{
		ID:        storage.NewRecordID(),
		ClientID:  clientID,
		Command:   command,
		Success:   resp.Success,
		Duration:  duration,
		CreatedAt: time.Now(),
	}
	if !resp.Success {
		rec.ErrorCode = string(resp.ErrorCode())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.store.RecordCommand(ctx, rec); err != nil {
		s.logf("record command: %v", err)
	}
}

// commandName extracts the command field for audit records. Malformed
// frames audit under an empty name.
func commandName(frame []byte) string {
	var envelope struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return ""
	}
	return envelope.Command
}

// StatusReport is the payload of get_server_status.
type StatusReport struct {
	Version           string         `json:"version"`
	UptimeSeconds     float64        `json:"uptime_seconds"`
	ConnectedClients  int            `json:"connected_clients"`
	CommandsProcessed int64          `json:"commands_processed"`
	QueuedCommands    int            `json:"queued_commands"`
	Clients           []ClientStatus `json:"clients"`
}

// ClientStatus describes one connected client.
type ClientStatus struct {
	ID           string    `json:"id"`
	ConnectedAt  time.Time `json:"connected_at"`
	MessageCount int64     `json:"message_count"`
}

// Status snapshots the server state.
func (s *Server) Status() StatusReport {
	s.mu.Lock()
	clients := make([]ClientStatus, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, ClientStatus{
			ID:           c.id,
			ConnectedAt:  c.connectedAt,
			MessageCount: c.messages.Load(),
		})
	}
	s.mu.Unlock()
	sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })

	return StatusReport{
		Version:           s.opts.Version,
		UptimeSeconds:     time.Since(s.startedAt).Seconds(),
		ConnectedClients:  len(clients),
		CommandsProcessed: s.commandsTotal.Load(),
		QueuedCommands:    s.executor.Pending(),
		Clients:           clients,
	}
}

// RunExecutor runs the command executor until ctx is canceled. Run starts
// it automatically; callers embedding HandleWS in their own server run it
// themselves.
func (s *Server) RunExecutor(ctx context.Context) {
	s.executor.Run(ctx)
}

// ClientCount reports the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Broadcast sends a response frame to every connected client.
func (s *Server) Broadcast(resp protocol.Response) {
	frame, err := json.Marshal(resp)
	if err != nil {
		s.logf("marshal broadcast: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		c.enqueue(frame)
	}
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.id] = c
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c.id)
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.closeWithReason("server shutting down")
	}
}

func (s *Server) logf(format string, args ...any) {
	log.Printf(format, args...)
}

type ctxKey int

const clientIDKey ctxKey = iota

func withClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey, id)
}

// clientIDFrom returns the connection id carried by ctx, or "" outside a
// connection context.
func clientIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}
