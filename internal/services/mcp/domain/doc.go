// Package domain defines the MCP tool and resource surface for scene
// control. Handlers translate tool calls into control-server commands and
// shape responses for MCP clients.
package domain
