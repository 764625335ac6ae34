// Package service implements the SceneForge control server: a WebSocket
// endpoint that accepts JSON commands, dispatches them to the scene engine
// through a single executor, and reports results back to clients.
package service
