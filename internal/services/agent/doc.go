// Package agent drives scenes through the control client: plans compiled
// from YAML documents or Lua scenarios, a retrying step executor, a scene
// observer, and a workflow state machine tying them together.
package agent
