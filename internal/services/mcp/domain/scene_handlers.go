package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/sceneforge/internal/engine"
	"github.com/louisbranch/sceneforge/internal/services/control/client"
	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
)

func objectResult(obj engine.Object) ObjectResult {
	return ObjectResult{
		Name:     obj.Name,
		Type:     obj.Type,
		Location: obj.Location[:],
		Rotation: obj.RotationDeg[:],
		Scale:    obj.Scale[:],
	}
}

func vec3From(values []float64, field string) (*protocol.Vec3, error) {
	if values == nil {
		return nil, nil
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("%s must have exactly 3 elements", field)
	}
	v := protocol.Vec3{values[0], values[1], values[2]}
	return &v, nil
}

// CreateObjectHandler executes an object creation request.
func CreateObjectHandler(c *client.Client) mcp.ToolHandlerFor[CreateObjectInput, ObjectResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreateObjectInput) (*mcp.CallToolResult, ObjectResult, error) {
		loc, err := vec3From(input.Location, "location")
		if err != nil {
			return nil, ObjectResult{}, err
		}
		obj, err := c.CreateObject(ctx, protocol.CreateObjectParams{
			Type:     input.Type,
			Name:     input.Name,
			Location: loc,
		})
		if err != nil {
			return nil, ObjectResult{}, fmt.Errorf("create object failed: %w", err)
		}
		return nil, objectResult(obj), nil
	}
}

// MoveObjectHandler executes an object move request.
func MoveObjectHandler(c *client.Client) mcp.ToolHandlerFor[TransformInput, ObjectResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TransformInput) (*mcp.CallToolResult, ObjectResult, error) {
		value, err := vec3From(input.Value, "value")
		if err != nil || value == nil {
			return nil, ObjectResult{}, fmt.Errorf("value must be [x, y, z]")
		}
		obj, err := c.MoveObject(ctx, input.Name, [3]float64(*value))
		if err != nil {
			return nil, ObjectResult{}, fmt.Errorf("move object failed: %w", err)
		}
		return nil, objectResult(obj), nil
	}
}

// RotateObjectHandler executes an object rotation request.
func RotateObjectHandler(c *client.Client) mcp.ToolHandlerFor[TransformInput, ObjectResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TransformInput) (*mcp.CallToolResult, ObjectResult, error) {
		value, err := vec3From(input.Value, "value")
		if err != nil || value == nil {
			return nil, ObjectResult{}, fmt.Errorf("value must be [x, y, z]")
		}
		obj, err := c.RotateObject(ctx, input.Name, [3]float64(*value))
		if err != nil {
			return nil, ObjectResult{}, fmt.Errorf("rotate object failed: %w", err)
		}
		return nil, objectResult(obj), nil
	}
}

// ScaleObjectHandler executes an object scale request.
func ScaleObjectHandler(c *client.Client) mcp.ToolHandlerFor[TransformInput, ObjectResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TransformInput) (*mcp.CallToolResult, ObjectResult, error) {
		value, err := vec3From(input.Value, "value")
		if err != nil || value == nil {
			return nil, ObjectResult{}, fmt.Errorf("value must be [x, y, z]")
		}
		obj, err := c.ScaleObject(ctx, input.Name, [3]float64(*value))
		if err != nil {
			return nil, ObjectResult{}, fmt.Errorf("scale object failed: %w", err)
		}
		return nil, objectResult(obj), nil
	}
}

// SetMaterialHandler executes a material update request.
func SetMaterialHandler(c *client.Client) mcp.ToolHandlerFor[SetMaterialInput, ObjectResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetMaterialInput) (*mcp.CallToolResult, ObjectResult, error) {
		mat := protocol.MaterialParams{
			Metallic:  input.Metallic,
			Roughness: input.Roughness,
		}
		if input.Color != "" {
			var color protocol.Color
			encoded, _ := json.Marshal(input.Color)
			if err := json.Unmarshal(encoded, &color); err != nil {
				return nil, ObjectResult{}, fmt.Errorf("parse color: %w", err)
			}
			mat.Color = &color
		}
		obj, err := c.SetMaterial(ctx, input.Name, mat)
		if err != nil {
			return nil, ObjectResult{}, fmt.Errorf("set material failed: %w", err)
		}
		return nil, objectResult(obj), nil
	}
}

// SceneInfoHandler executes a scene inspection request.
func SceneInfoHandler(c *client.Client) mcp.ToolHandlerFor[SceneInfoInput, SceneInfoResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SceneInfoInput) (*mcp.CallToolResult, SceneInfoResult, error) {
		scene, err := c.SceneInfo(ctx)
		if err != nil {
			return nil, SceneInfoResult{}, fmt.Errorf("scene info failed: %w", err)
		}
		result := SceneInfoResult{
			Name:           scene.Name,
			ObjectCount:    scene.ObjectCount,
			RenderSettings: renderSettingsResult(scene.RenderSettings),
			ActiveObject:   scene.ActiveObject,
		}
		if cam := scene.Camera; cam != nil {
			result.Camera = &CameraResult{
				Name:     cam.Name,
				Location: cam.Location[:],
				Rotation: cam.RotationDeg[:],
			}
		}
		for _, obj := range scene.Objects {
			result.Objects = append(result.Objects, objectResult(obj))
		}
		return nil, result, nil
	}
}

// ClearSceneHandler executes a scene clear request.
func ClearSceneHandler(c *client.Client) mcp.ToolHandlerFor[ClearSceneInput, ClearSceneResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ClearSceneInput) (*mcp.CallToolResult, ClearSceneResult, error) {
		result, err := c.ClearScene(ctx)
		if err != nil {
			return nil, ClearSceneResult{}, fmt.Errorf("clear scene failed: %w", err)
		}
		return nil, ClearSceneResult{
			Deleted:   result.Deleted,
			Preserved: result.Preserved,
		}, nil
	}
}

// RenderHandler executes a render request.
func RenderHandler(c *client.Client) mcp.ToolHandlerFor[RenderInput, RenderResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RenderInput) (*mcp.CallToolResult, RenderResult, error) {
		params := protocol.RenderSceneParams{
			OutputPath: input.OutputPath,
			Engine:     input.Engine,
		}
		if input.Width != 0 || input.Height != 0 {
			res := protocol.Resolution{input.Width, input.Height}
			params.Resolution = &res
		}
		result, err := c.Render(ctx, params)
		if err != nil {
			return nil, RenderResult{}, fmt.Errorf("render failed: %w", err)
		}
		return nil, RenderResult{
			OutputPath: result.OutputPath,
			Width:      result.Resolution[0],
			Height:     result.Resolution[1],
			Engine:     result.Engine,
			Seconds:    result.Seconds,
		}, nil
	}
}

func renderSettingsResult(settings engine.RenderSettings) RenderSettingsResult {
	return RenderSettingsResult{
		Width:   settings.Resolution[0],
		Height:  settings.Resolution[1],
		Engine:  settings.Engine,
		Samples: settings.Samples,
		Format:  settings.Format,
		Quality: settings.Quality,
	}
}

// RenderSettingsHandler executes a render settings update.
func RenderSettingsHandler(c *client.Client) mcp.ToolHandlerFor[RenderSettingsInput, RenderSettingsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RenderSettingsInput) (*mcp.CallToolResult, RenderSettingsResult, error) {
		params := protocol.RenderSettingsParams{
			Engine:  input.Engine,
			Samples: input.Samples,
			Format:  input.Format,
			Quality: input.Quality,
		}
		if input.Width != 0 || input.Height != 0 {
			res := protocol.Resolution{input.Width, input.Height}
			params.Resolution = &res
		}
		settings, err := c.SetRenderSettings(ctx, params)
		if err != nil {
			return nil, RenderSettingsResult{}, fmt.Errorf("update render settings failed: %w", err)
		}
		return nil, renderSettingsResult(settings), nil
	}
}
