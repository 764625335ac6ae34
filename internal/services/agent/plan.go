package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
)

// Step is a single scene mutation within a plan.
type Step struct {
	Action      string         `yaml:"action" json:"action"`
	Params      map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
}

// Plan is an ordered list of steps with a human-readable description.
type Plan struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Steps       []Step `yaml:"steps" json:"steps"`
}

// planActions are the commands a plan step may invoke. Read-only and
// built-in commands are excluded; the observer covers inspection.
var planActions = map[string]bool{
	protocol.CmdCreateObject:      true,
	protocol.CmdMoveObject:        true,
	protocol.CmdRotateObject:      true,
	protocol.CmdScaleObject:       true,
	protocol.CmdSetMaterial:       true,
	protocol.CmdClearScene:        true,
	protocol.CmdRenderScene:       true,
	protocol.CmdSetRenderSettings: true,
}

// Validate checks that the plan has at least one step and every step
// names a known action.
func (p *Plan) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}
	for i, step := range p.Steps {
		action := strings.TrimSpace(step.Action)
		if action == "" {
			return fmt.Errorf("step %d: missing action", i+1)
		}
		if !planActions[action] {
			return fmt.Errorf("step %d: unknown action %q", i+1, action)
		}
	}
	return nil
}

// ParsePlan decodes a YAML plan document.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// LoadPlan reads and decodes a YAML plan document from disk. A plan
// without a description takes its file name.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	plan, err := ParsePlan(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if strings.TrimSpace(plan.Description) == "" {
		plan.Description = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return plan, nil
}
