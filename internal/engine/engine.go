// Package engine defines the boundary between the control server and the
// 3D host application. The control server never talks to a host directly;
// it drives an Engine, and implementations adapt that contract to whatever
// backs the scene (a live host process or the built-in headless engine).
package engine

import (
	"context"

	"github.com/louisbranch/sceneforge/internal/platform/errors"
)

// Engine is the scene manipulation contract the control server depends on.
// All methods honor ctx cancellation; implementations return coded domain
// errors so transports can render them on the wire.
type Engine interface {
	// CreateObject adds a primitive to the scene and returns the object
	// as created, including any name adjustment the host applied.
	CreateObject(ctx context.Context, req CreateRequest) (Object, error)

	// MoveObject sets an object's location.
	MoveObject(ctx context.Context, name string, location [3]float64) (Object, error)

	// RotateObject sets an object's rotation, in degrees per axis.
	RotateObject(ctx context.Context, name string, rotation [3]float64) (Object, error)

	// ScaleObject sets an object's per-axis scale factors.
	ScaleObject(ctx context.Context, name string, scale [3]float64) (Object, error)

	// SetMaterial applies material properties to an object. Nil fields
	// leave the current value untouched.
	SetMaterial(ctx context.Context, name string, mat Material) (Object, error)

	// SceneInfo returns a snapshot of the current scene.
	SceneInfo(ctx context.Context) (Scene, error)

	// ClearScene removes user-created objects, preserving protected ones
	// such as the default camera and light.
	ClearScene(ctx context.Context) (ClearResult, error)

	// Render produces an image of the current scene.
	Render(ctx context.Context, req RenderRequest) (RenderResult, error)

	// RenderSettings returns the current render configuration.
	RenderSettings(ctx context.Context) (RenderSettings, error)

	// SetRenderSettings applies a partial render configuration and
	// returns the resulting full configuration.
	SetRenderSettings(ctx context.Context, patch RenderSettingsPatch) (RenderSettings, error)
}

// CreateRequest describes a primitive to add to the scene.
type CreateRequest struct {
	Type     string
	Name     string
	Location [3]float64
}

// Material holds optional surface properties. Nil fields are not applied.
type Material struct {
	Color     *[4]float64
	Metallic  *float64
	Roughness *float64
}

// Object is the engine's view of a scene object.
type Object struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Location    [3]float64      `json:"location"`
	RotationDeg [3]float64      `json:"rotation"`
	Scale       [3]float64      `json:"scale"`
	Visible     bool            `json:"visible"`
	Material    *ObjectMaterial `json:"material,omitempty"`
}

// ObjectMaterial is the resolved material on an object.
type ObjectMaterial struct {
	Color     [4]float64 `json:"color"`
	Metallic  float64    `json:"metallic"`
	Roughness float64    `json:"roughness"`
}

// Scene is a snapshot of the scene graph.
type Scene struct {
	Name           string         `json:"name"`
	ObjectCount    int            `json:"object_count"`
	Objects        []Object       `json:"objects"`
	Camera         *Camera        `json:"camera"`
	RenderSettings RenderSettings `json:"render_settings"`
	ActiveObject   string         `json:"active_object,omitempty"`
}

// Camera describes the scene camera.
type Camera struct {
	Name        string     `json:"name"`
	Location    [3]float64 `json:"location"`
	RotationDeg [3]float64 `json:"rotation"`
}

// ClearResult reports the outcome of ClearScene.
type ClearResult struct {
	Deleted   int      `json:"deleted_count"`
	Preserved []string `json:"preserved"`
}

// RenderRequest describes a single render. Zero values fall back to the
// engine's current render settings.
type RenderRequest struct {
	OutputPath string
	Resolution [2]int
	Engine     string
}

// RenderResult reports a completed render.
type RenderResult struct {
	OutputPath string  `json:"output_path"`
	Resolution [2]int  `json:"resolution"`
	Engine     string  `json:"engine"`
	Seconds    float64 `json:"render_time_seconds"`
}

// RenderSettings is the full render configuration.
type RenderSettings struct {
	Resolution [2]int `json:"resolution"`
	Engine     string `json:"engine"`
	Samples    int    `json:"samples"`
	Format     string `json:"format"`
	Quality    int    `json:"quality"`
}

// RenderSettingsPatch is a partial render configuration. Nil fields keep
// their current values.
type RenderSettingsPatch struct {
	Resolution *[2]int
	Engine     *string
	Samples    *int
	Format     *string
	Quality    *int
}

// ErrObjectNotFound builds the standard not-found error for name.
func ErrObjectNotFound(name string) *errors.Error {
	return errors.Newf(errors.CodeObjectNotFound, "object not found: %s", name)
}

// ErrUnsupportedType builds the standard error for an unknown primitive.
func ErrUnsupportedType(typ string) *errors.Error {
	return errors.Newf(errors.CodeUnsupportedType, "unsupported object type: %s", typ)
}
