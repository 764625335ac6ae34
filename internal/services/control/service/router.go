package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log"

	"github.com/louisbranch/sceneforge/internal/platform/errors"
	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
)

// Handler processes decoded params for one command.
type Handler func(ctx context.Context, params json.RawMessage) protocol.Response

// Router maps command names to handlers and normalizes malformed frames
// into coded error responses.
type Router struct {
	handlers map[string]Handler
}

// NewRouter builds an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]Handler)}
}

// Register binds a handler to a command name. Registering a duplicate name
// panics; registration happens once at startup.
func (r *Router) Register(command string, h Handler) {
	if _, exists := r.handlers[command]; exists {
		panic("duplicate handler registration: " + command)
	}
	r.handlers[command] = h
}

// Typed adapts a strongly typed handler into a Handler. Params are decoded
// from JSON and validated before fn runs; decode and validation failures
// short-circuit with coded responses.
func Typed[In protocol.Validator](fn func(ctx context.Context, in In) protocol.Response) Handler {
	return func(ctx context.Context, params json.RawMessage) protocol.Response {
		var in In
		if len(params) > 0 && !bytes.Equal(params, []byte("null")) {
			if err := json.Unmarshal(params, &in); err != nil {
				return protocol.Failf(errors.CodeInvalidParams, "invalid parameters: %v", err)
			}
		}
		if err := in.Validate(); err != nil {
			return protocol.Fail(err)
		}
		return fn(ctx, in)
	}
}

// Dispatch decodes one request frame and routes it. Malformed frames never
// reach a handler; every failure mode maps to a distinct error code so
// clients can tell a protocol mistake from a scene failure.
func (r *Router) Dispatch(ctx context.Context, frame []byte) protocol.Response {
	if len(frame) > protocol.MaxMessageSize {
		return protocol.Failf(errors.CodeMessageTooLarge, "message exceeds %d bytes", protocol.MaxMessageSize)
	}
	if !json.Valid(frame) {
		return protocol.Failf(errors.CodeInvalidJSON, "message is not valid JSON")
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return protocol.Failf(errors.CodeInvalidMessageFormat, "message must be a JSON object")
	}

	rawCommand, ok := envelope["command"]
	if !ok {
		return protocol.Failf(errors.CodeMissingCommand, "missing required field: command")
	}
	var command string
	if err := json.Unmarshal(rawCommand, &command); err != nil {
		return protocol.Failf(errors.CodeInvalidCommandType, "field 'command' must be a string")
	}

	handler, ok := r.handlers[command]
	if !ok {
		return protocol.Failf(errors.CodeUnknownCommand, "unknown command: %s", command)
	}

	params := envelope["params"]
	if len(params) > 0 && !bytes.Equal(params, []byte("null")) && params[0] != '{' {
		return protocol.Failf(errors.CodeInvalidParamsType, "field 'params' must be an object")
	}

	return r.safeCall(ctx, command, handler, params)
}

// safeCall runs a handler with panic recovery so one bad command cannot
// take down the connection loop.
func (r *Router) safeCall(ctx context.Context, command string, handler Handler, params json.RawMessage) (resp protocol.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic handling %s: %v", command, rec)
			resp = protocol.Failf(errors.CodeProcessingError, "internal error handling %s", command)
		}
	}()
	return handler(ctx, params)
}
