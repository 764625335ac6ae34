package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/sceneforge/internal/engine"
	"github.com/louisbranch/sceneforge/internal/services/control/client"
	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
)

// SceneAnalysis is the observer's view of the scene after execution.
type SceneAnalysis struct {
	Objects     []engine.Object `json:"objects"`
	Description string          `json:"description"`
	RenderPath  string          `json:"render_path,omitempty"`
}

// Observer inspects the scene through the control client.
type Observer struct {
	client *client.Client
}

// NewObserver builds an observer over an existing control client.
func NewObserver(c *client.Client) *Observer {
	return &Observer{client: c}
}

// Analyze fetches the current scene, describes it, and optionally
// captures a render.
func (o *Observer) Analyze(ctx context.Context, captureRender bool) (SceneAnalysis, error) {
	scene, err := o.client.SceneInfo(ctx)
	if err != nil {
		return SceneAnalysis{}, fmt.Errorf("scene info: %w", err)
	}

	analysis := SceneAnalysis{
		Objects:     scene.Objects,
		Description: describeScene(scene.Objects),
	}
	if captureRender {
		result, err := o.client.Render(ctx, protocol.RenderSceneParams{})
		if err != nil {
			return analysis, fmt.Errorf("capture render: %w", err)
		}
		analysis.RenderPath = result.OutputPath
	}
	return analysis, nil
}

// VerifyObjects reports, per expected object name, whether the scene
// contains it.
func (o *Observer) VerifyObjects(ctx context.Context, names []string) (map[string]bool, error) {
	scene, err := o.client.SceneInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("scene info: %w", err)
	}

	existing := make(map[string]bool, len(scene.Objects))
	for _, obj := range scene.Objects {
		existing[obj.Name] = true
	}
	found := make(map[string]bool, len(names))
	for _, name := range names {
		found[name] = existing[name]
	}
	return found, nil
}

func describeScene(objects []engine.Object) string {
	if len(objects) == 0 {
		return "The scene is empty."
	}

	parts := make([]string, 0, len(objects))
	for _, obj := range objects {
		desc := fmt.Sprintf("a %s named %q", obj.Type, obj.Name)
		if obj.Material != nil {
			c := obj.Material.Color
			desc += fmt.Sprintf(" with %s color", colorName(c[0], c[1], c[2]))
		}
		desc += fmt.Sprintf(" at (%.1f, %.1f, %.1f)", obj.Location[0], obj.Location[1], obj.Location[2])
		parts = append(parts, desc)
	}

	if len(parts) == 1 {
		return fmt.Sprintf("The scene contains %s.", parts[0])
	}
	return fmt.Sprintf("The scene contains %d objects: %s.", len(parts), strings.Join(parts, "; "))
}

// colorName maps RGB in [0,1] to a coarse color name.
func colorName(r, g, b float64) string {
	switch {
	case r > 0.7 && g < 0.3 && b < 0.3:
		return "red"
	case r < 0.3 && g > 0.7 && b < 0.3:
		return "green"
	case r < 0.3 && g < 0.3 && b > 0.7:
		return "blue"
	case r > 0.7 && g > 0.7 && b < 0.3:
		return "yellow"
	case r > 0.5 && g < 0.5 && b > 0.5:
		return "purple"
	case r < 0.5 && g > 0.5 && b > 0.5:
		return "cyan"
	case r > 0.7 && g > 0.4 && b < 0.3:
		return "orange"
	case r > 0.4 && g > 0.2 && b < 0.2:
		return "brown"
	case r > 0.7 && g > 0.7 && b > 0.7:
		return "white"
	case r < 0.3 && g < 0.3 && b < 0.3:
		return "black"
	default:
		return "colored"
	}
}
