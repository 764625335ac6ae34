package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/louisbranch/sceneforge/internal/platform/id"
	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
)

const (
	// pingPeriod is how often the server pings an idle connection.
	pingPeriod = 20 * time.Second

	// pongTimeout is how long after a ping the peer has to answer.
	pongTimeout = 15 * time.Second

	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second

	// readLimit leaves slack above the protocol cap so oversized frames
	// get a coded response instead of an abrupt close. Frames beyond the
	// slack still close the connection.
	readLimit = protocol.MaxMessageSize + 64*1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     originAllowed,
}

// originAllowed accepts non-browser clients (no Origin header) and browser
// clients served from the same host.
func originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// client is one connected WebSocket peer. Clients are identified by their
// remote "ip:port" address.
type client struct {
	id          string
	conn        *websocket.Conn
	server      *Server
	send        chan []byte
	connectedAt time.Time
	messages    atomic.Int64

	mu       sync.Mutex
	lastSeen time.Time

	closeOnce sync.Once
	done      chan struct{}
}

// HandleWS upgrades a connection and runs its read/write pumps. It is
// exported so other transports can mount the control endpoint on their
// own mux; Run wires it to /ws.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	if err := s.authorize(r); err != nil {
		s.logf("rejected connection from %s: %v", r.RemoteAddr, err)
		http.Error(w, "unauthorized", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logf("upgrade from %s: %v", r.RemoteAddr, err)
		return
	}

	c := &client{
		id:          clientID(r),
		conn:        conn,
		server:      s,
		send:        make(chan []byte, 32),
		connectedAt: time.Now(),
		lastSeen:    time.Now(),
		done:        make(chan struct{}),
	}
	s.addClient(c)
	s.logf("client %s connected", c.id)

	go c.writePump()
	c.readPump(r.Context())
}

// clientID derives a client identifier from the remote address. Requests
// without one (in-process tests mostly) fall back to a generated id.
func clientID(r *http.Request) string {
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	generated, err := id.NewID()
	if err != nil {
		return "unknown"
	}
	return generated
}

func (c *client) touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

func (c *client) idleFor() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastSeen)
}

// readPump reads request frames until the connection drops. Each frame is
// handled synchronously so a single client observes strict request order.
func (c *client) readPump(ctx context.Context) {
	defer c.close()

	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pingPeriod + pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.touch()
		return c.conn.SetReadDeadline(time.Now().Add(pingPeriod + pongTimeout))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.server.logf("client %s read: %v", c.id, err)
			}
			return
		}
		c.touch()
		c.messages.Add(1)
		c.conn.SetReadDeadline(time.Now().Add(pingPeriod + pongTimeout))

		resp := c.server.handleFrame(ctx, c.id, frame)
		out, err := json.Marshal(resp)
		if err != nil {
			c.server.logf("client %s marshal response: %v", c.id, err)
			continue
		}
		c.enqueue(out)
	}
}

// writePump drains the send queue and keeps the connection alive with
// periodic pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.server.logf("client %s write: %v", c.id, err)
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// enqueue queues a frame for delivery, dropping it if the client cannot
// keep up.
func (c *client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	case <-c.done:
	default:
		c.server.logf("client %s send queue full, dropping frame", c.id)
	}
}

// closeWithReason sends a going-away frame and closes the connection.
func (c *client) closeWithReason(reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, reason)
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.close()
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
		c.server.removeClient(c)
		c.server.logf("client %s disconnected", c.id)
	})
}

// monitorHeartbeats sweeps connected clients, warning on long-idle peers
// and dropping the ones past the hard limit.
func (s *Server) monitorHeartbeats(ctx context.Context) {
	const (
		sweepInterval = time.Minute
		warnAfter     = 3 * time.Minute
		dropAfter     = 5 * time.Minute
	)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		clients := make([]*client, 0, len(s.clients))
		for _, c := range s.clients {
			clients = append(clients, c)
		}
		s.mu.Unlock()

		for _, c := range clients {
			idle := c.idleFor()
			switch {
			case idle > dropAfter:
				s.logf("client %s idle for %s, dropping", c.id, idle.Round(time.Second))
				c.closeWithReason("heartbeat timeout")
			case idle > warnAfter:
				s.logf("client %s idle for %s", c.id, idle.Round(time.Second))
			}
		}
	}
}
