// Package service runs the SceneForge MCP server. It binds the scene tools
// and resources from the domain package to a control-server client and
// serves them over stdio or HTTP.
package service
