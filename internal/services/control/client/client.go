// Package client provides a reconnecting WebSocket client for the control
// server, with typed methods for every protocol command.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/louisbranch/sceneforge/internal/engine"
	"github.com/louisbranch/sceneforge/internal/platform/errors"
	"github.com/louisbranch/sceneforge/internal/platform/timeouts"
	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
)

// slowCommands take longer on a real host; the client doubles their
// response timeout.
var slowCommands = map[string]bool{
	protocol.CmdRenderScene:  true,
	protocol.CmdCreateObject: true,
	protocol.CmdSetMaterial:  true,
}

// Options configures a Client.
type Options struct {
	// Token is sent as a bearer token when set.
	Token string

	// DialTimeout bounds one connection attempt. Defaults to the platform
	// dial timeout.
	DialTimeout time.Duration

	// CommandTimeout bounds one command round trip. Slow commands get
	// double this. Defaults to the platform command timeout.
	CommandTimeout time.Duration

	// MaxRetries is how many times a failed send is retried after
	// reconnecting. Defaults to 2.
	MaxRetries int

	// RetryBackoff is the pause between reconnect attempts. Defaults to
	// one second.
	RetryBackoff time.Duration
}

func (o *Options) setDefaults() {
	if o.DialTimeout <= 0 {
		o.DialTimeout = timeouts.Dial
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = timeouts.Command
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 2
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = time.Second
	}
}

// Client talks to one control server. Commands are serialized; the protocol
// answers strictly in request order on a single connection.
type Client struct {
	url  string
	opts Options

	mu   sync.Mutex
	conn *websocket.Conn
}

// New builds a client for the control server at url (a ws:// or wss://
// endpoint). No connection is made until the first command or an explicit
// Connect.
func New(url string, opts Options) *Client {
	opts.setDefaults()
	return &Client{url: url, opts: opts}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked(ctx)
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancel()

	header := http.Header{}
	if c.opts.Token != "" {
		header.Set("Authorization", "Bearer "+c.opts.Token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, header)
	if err != nil {
		return errors.Wrap(errors.CodeConnectionError, fmt.Sprintf("dial %s", c.url), err)
	}
	c.conn = conn
	return nil
}

// Close closes the connection. The client may be reused; the next command
// reconnects.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropLocked()
}

func (c *Client) dropLocked() error {
	if c.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Send issues one command and waits for its response. Connection failures
// trigger reconnect-and-retry up to the configured retry budget; protocol
// errors (success=false) do not retry.
func (c *Client) Send(ctx context.Context, command string, params any) (protocol.Response, error) {
	frame, err := encodeCommand(command, params)
	if err != nil {
		return protocol.Response{}, err
	}

	timeout := c.opts.CommandTimeout
	if slowCommands[command] {
		timeout *= 2
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			c.dropLocked()
			select {
			case <-ctx.Done():
				return protocol.Response{}, errors.Wrap(errors.CodeConnectionError, "canceled while retrying", ctx.Err())
			case <-time.After(c.opts.RetryBackoff):
			}
		}
		if err := c.connectLocked(ctx); err != nil {
			lastErr = err
			continue
		}

		resp, err := c.roundTripLocked(frame, timeout)
		if err != nil {
			lastErr = err
			continue
		}
		return resp, nil
	}
	return protocol.Response{}, lastErr
}

func (c *Client) roundTripLocked(frame []byte, timeout time.Duration) (protocol.Response, error) {
	c.conn.SetWriteDeadline(time.Now().Add(timeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return protocol.Response{}, errors.Wrap(errors.CodeConnectionError, "write command", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return protocol.Response{}, errors.Wrap(errors.CodeConnectionError, "read response", err)
	}

	var resp protocol.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return protocol.Response{}, errors.Wrap(errors.CodeConnectionError, "decode response", err)
	}
	return resp, nil
}

func encodeCommand(command string, params any) ([]byte, error) {
	req := map[string]any{"command": command}
	if params != nil {
		req["params"] = params
	}
	frame, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidParams, "encode command", err)
	}
	if len(frame) > protocol.MaxMessageSize {
		return nil, errors.Newf(errors.CodeMessageTooLarge, "command exceeds %d bytes", protocol.MaxMessageSize)
	}
	return frame, nil
}

// call sends command and decodes the response data into out when the
// command succeeds. A success=false response becomes a coded error.
func (c *Client) call(ctx context.Context, command string, params any, out any) error {
	resp, err := c.Send(ctx, command, params)
	if err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.ErrorCode(), resp.Error)
	}
	if out == nil || resp.Data == nil {
		return nil
	}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return errors.Wrap(errors.CodeConnectionError, "re-encode response data", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(errors.CodeConnectionError, "decode response data", err)
	}
	return nil
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, protocol.CmdPing, nil, nil)
}

// CreateObject adds a primitive to the scene.
func (c *Client) CreateObject(ctx context.Context, params protocol.CreateObjectParams) (engine.Object, error) {
	var obj engine.Object
	err := c.call(ctx, protocol.CmdCreateObject, params, &obj)
	return obj, err
}

// MoveObject sets an object's location.
func (c *Client) MoveObject(ctx context.Context, name string, location [3]float64) (engine.Object, error) {
	loc := protocol.Vec3(location)
	var obj engine.Object
	err := c.call(ctx, protocol.CmdMoveObject, protocol.MoveObjectParams{Name: name, Location: &loc}, &obj)
	return obj, err
}

// RotateObject sets an object's rotation in degrees.
func (c *Client) RotateObject(ctx context.Context, name string, rotation [3]float64) (engine.Object, error) {
	rot := protocol.Vec3(rotation)
	var obj engine.Object
	err := c.call(ctx, protocol.CmdRotateObject, protocol.RotateObjectParams{Name: name, Rotation: &rot}, &obj)
	return obj, err
}

// ScaleObject sets an object's scale factors.
func (c *Client) ScaleObject(ctx context.Context, name string, scale [3]float64) (engine.Object, error) {
	sc := protocol.Vec3(scale)
	var obj engine.Object
	err := c.call(ctx, protocol.CmdScaleObject, protocol.ScaleObjectParams{Name: name, Scale: &sc}, &obj)
	return obj, err
}

// SetMaterial applies material properties to an object.
func (c *Client) SetMaterial(ctx context.Context, name string, mat protocol.MaterialParams) (engine.Object, error) {
	var obj engine.Object
	err := c.call(ctx, protocol.CmdSetMaterial, protocol.SetMaterialParams{Name: name, Material: &mat}, &obj)
	return obj, err
}

// SceneInfo returns the current scene snapshot.
func (c *Client) SceneInfo(ctx context.Context) (engine.Scene, error) {
	var scene engine.Scene
	err := c.call(ctx, protocol.CmdGetSceneInfo, nil, &scene)
	return scene, err
}

// ClearScene removes user-created objects.
func (c *Client) ClearScene(ctx context.Context) (engine.ClearResult, error) {
	var result engine.ClearResult
	err := c.call(ctx, protocol.CmdClearScene, nil, &result)
	return result, err
}

// Render produces an image of the current scene.
func (c *Client) Render(ctx context.Context, params protocol.RenderSceneParams) (engine.RenderResult, error) {
	var result engine.RenderResult
	err := c.call(ctx, protocol.CmdRenderScene, params, &result)
	return result, err
}

// RenderSettings returns the current render configuration.
func (c *Client) RenderSettings(ctx context.Context) (engine.RenderSettings, error) {
	var settings engine.RenderSettings
	err := c.call(ctx, protocol.CmdGetRenderSettings, nil, &settings)
	return settings, err
}

// SetRenderSettings applies a partial render configuration.
func (c *Client) SetRenderSettings(ctx context.Context, params protocol.RenderSettingsParams) (engine.RenderSettings, error) {
	var settings engine.RenderSettings
	err := c.call(ctx, protocol.CmdSetRenderSettings, params, &settings)
	return settings, err
}

// ServerStatus returns the server's status report.
func (c *Client) ServerStatus(ctx context.Context) (map[string]any, error) {
	var status map[string]any
	err := c.call(ctx, protocol.CmdGetServerStatus, nil, &status)
	return status, err
}

// ErrorStats returns the server's aggregated error statistics.
func (c *Client) ErrorStats(ctx context.Context) (map[string]any, error) {
	var stats map[string]any
	err := c.call(ctx, protocol.CmdGetErrorStats, nil, &stats)
	return stats, err
}
