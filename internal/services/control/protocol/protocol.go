// Package protocol defines the JSON command protocol spoken between
// SceneForge clients and the control server.
//
// A request is a single JSON object {"command": ..., "params": {...}} sent
// as one WebSocket text frame. Every request produces exactly one response
// frame {"success": ..., "data": ..., "message": ..., "error": ...}.
// Error strings take the form "CODE: detail".
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/sceneforge/internal/platform/errors"
)

// MaxMessageSize caps a single request frame at 1 MiB.
const MaxMessageSize = 1 << 20

// Command names accepted by the control server.
const (
	CmdPing              = "ping"
	CmdGetServerStatus   = "get_server_status"
	CmdGetErrorStats     = "get_error_stats"
	CmdCreateObject      = "create_object"
	CmdMoveObject        = "move_object"
	CmdRotateObject      = "rotate_object"
	CmdScaleObject       = "scale_object"
	CmdSetMaterial       = "set_material"
	CmdGetSceneInfo      = "get_scene_info"
	CmdClearScene        = "clear_scene"
	CmdRenderScene       = "render_scene"
	CmdSetRenderSettings = "set_render_settings"
	CmdGetRenderSettings = "get_render_settings"
)

// Commands lists every known command name in a stable order.
func Commands() []string {
	return []string{
		CmdPing, CmdGetSceneInfo, CmdGetServerStatus, CmdGetErrorStats,
		CmdClearScene, CmdRenderScene, CmdSetRenderSettings,
		CmdGetRenderSettings, CmdCreateObject, CmdMoveObject,
		CmdRotateObject, CmdScaleObject, CmdSetMaterial,
	}
}

// Known reports whether name is a recognized command.
func Known(name string) bool {
	for _, cmd := range Commands() {
		if cmd == name {
			return true
		}
	}
	return false
}

// Command is a single request frame.
type Command struct {
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a single response frame.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK builds a successful response with optional data.
func OK(data any, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

// Fail builds an error response from a domain error.
func Fail(err *errors.Error) Response {
	return Response{Success: false, Error: err.Wire()}
}

// Failf builds an error response with a formatted detail message.
func Failf(code errors.Code, format string, args ...any) Response {
	return Fail(errors.Newf(code, format, args...))
}

// FailErr converts any error into an error response, preserving the
// domain code when one is present in the chain.
func FailErr(err error) Response {
	if e, ok := err.(*errors.Error); ok {
		return Fail(e)
	}
	return Response{Success: false, Error: fmt.Sprintf("%s: %s", errors.CodeOf(err), err.Error())}
}

// ErrorCode extracts the leading code from a response error string.
// It returns UNKNOWN_ERROR for empty or malformed error strings.
func (r Response) ErrorCode() errors.Code {
	if r.Error == "" {
		return errors.CodeUnknown
	}
	for i := 0; i < len(r.Error); i++ {
		if r.Error[i] == ':' {
			return errors.Code(r.Error[:i])
		}
	}
	return errors.Code(r.Error)
}
