// Package headless provides an in-process Engine implementation that keeps
// the scene graph in memory and renders placeholder images. It stands in
// for a live host application in tests, demos, and CI.
package headless

import (
	"context"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/sceneforge/internal/engine"
	"github.com/louisbranch/sceneforge/internal/platform/errors"
)

//go:embed primitives.yaml
var primitivesYAML []byte

type primitiveDef struct {
	Mesh       string     `yaml:"mesh"`
	Dimensions [3]float64 `yaml:"dimensions"`
}

type primitiveCatalog struct {
	Primitives map[string]primitiveDef `yaml:"primitives"`
}

var defaultMaterial = engine.ObjectMaterial{
	Color:     [4]float64{0.8, 0.8, 0.8, 1},
	Metallic:  0,
	Roughness: 0.5,
}

// Engine is an in-memory scene. The zero value is not usable; construct
// with New.
type Engine struct {
	mu        sync.Mutex
	sceneName string
	objects   []*engine.Object
	settings  engine.RenderSettings
	catalog   map[string]primitiveDef
	active    string

	renderDir string
}

// Option configures the headless engine.
type Option func(*Engine)

// WithRenderDir sets the directory placeholder renders are written to when
// a render request carries no output path.
func WithRenderDir(dir string) Option {
	return func(e *Engine) { e.renderDir = dir }
}

// New builds a headless engine seeded with the default camera and light,
// matching the startup scene of a host application.
func New(opts ...Option) (*Engine, error) {
	var catalog primitiveCatalog
	if err := yaml.Unmarshal(primitivesYAML, &catalog); err != nil {
		return nil, fmt.Errorf("parse primitive catalog: %w", err)
	}

	e := &Engine{
		sceneName: "Scene",
		catalog:   catalog.Primitives,
		settings:  engine.RenderSettings{
			Resolution: [2]int{1920, 1080},
			Engine:     "BLENDER_EEVEE",
			Samples:    128,
			Format:     "PNG",
			Quality:    90,
		},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.objects = []*engine.Object{
		{
			Name:     "Camera",
			Type:     "camera",
			Location: [3]float64{7.36, -6.93, 4.96},
			Scale:    [3]float64{1, 1, 1},
			Visible:  true,
		},
		{
			Name:     "Light",
			Type:     "light",
			Location: [3]float64{4.08, 1.01, 5.9},
			Scale:    [3]float64{1, 1, 1},
			Visible:  true,
		},
	}
	return e, nil
}

// protected objects survive ClearScene.
func protected(obj *engine.Object) bool {
	return obj.Type == "camera" || obj.Type == "light"
}

func (e *Engine) find(name string) *engine.Object {
	for _, obj := range e.objects {
		if obj.Name == name {
			return obj
		}
	}
	return nil
}

// uniqueName applies the host naming convention: on collision the name
// gains a numeric suffix (Cube, Cube.001, Cube.002, ...).
func (e *Engine) uniqueName(name string) string {
	if e.find(name) == nil {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", name, i)
		if e.find(candidate) == nil {
			return candidate
		}
	}
}

// CreateObject implements engine.Engine.
func (e *Engine) CreateObject(ctx context.Context, req engine.CreateRequest) (engine.Object, error) {
	if err := ctx.Err(); err != nil {
		return engine.Object{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.catalog[req.Type]; !ok {
		return engine.Object{}, engine.ErrUnsupportedType(req.Type)
	}

	mat := defaultMaterial
	obj := &engine.Object{
		Name:     e.uniqueName(req.Name),
		Type:     req.Type,
		Location: req.Location,
		Scale:    [3]float64{1, 1, 1},
		Visible:  true,
		Material: &mat,
	}
	e.objects = append(e.objects, obj)
	e.active = obj.Name
	return *obj, nil
}

// MoveObject implements engine.Engine.
func (e *Engine) MoveObject(ctx context.Context, name string, location [3]float64) (engine.Object, error) {
	return e.mutate(ctx, name, func(obj *engine.Object) {
		obj.Location = location
	})
}

// RotateObject implements engine.Engine.
func (e *Engine) RotateObject(ctx context.Context, name string, rotation [3]float64) (engine.Object, error) {
	return e.mutate(ctx, name, func(obj *engine.Object) {
		obj.RotationDeg = rotation
	})
}

// ScaleObject implements engine.Engine.
func (e *Engine) ScaleObject(ctx context.Context, name string, scale [3]float64) (engine.Object, error) {
	return e.mutate(ctx, name, func(obj *engine.Object) {
		obj.Scale = scale
	})
}

// SetMaterial implements engine.Engine.
func (e *Engine) SetMaterial(ctx context.Context, name string, mat engine.Material) (engine.Object, error) {
	return e.mutate(ctx, name, func(obj *engine.Object) {
		if obj.Material == nil {
			m := defaultMaterial
			obj.Material = &m
		}
		if mat.Color != nil {
			obj.Material.Color = *mat.Color
		}
		if mat.Metallic != nil {
			obj.Material.Metallic = *mat.Metallic
		}
		if mat.Roughness != nil {
			obj.Material.Roughness = *mat.Roughness
		}
	})
}

func (e *Engine) mutate(ctx context.Context, name string, fn func(*engine.Object)) (engine.Object, error) {
	if err := ctx.Err(); err != nil {
		return engine.Object{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	obj := e.find(name)
	if obj == nil {
		return engine.Object{}, engine.ErrObjectNotFound(name)
	}
	fn(obj)
	return *obj, nil
}

// SceneInfo implements engine.Engine.
func (e *Engine) SceneInfo(ctx context.Context) (engine.Scene, error) {
	if err := ctx.Err(); err != nil {
		return engine.Scene{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	scene := engine.Scene{
		Name:           e.sceneName,
		ObjectCount:    len(e.objects),
		Objects:        make([]engine.Object, 0, len(e.objects)),
		RenderSettings: e.settings,
		ActiveObject:   e.active,
	}
	for _, obj := range e.objects {
		scene.Objects = append(scene.Objects, *obj)
		if obj.Type == "camera" && scene.Camera == nil {
			scene.Camera = &engine.Camera{
				Name:        obj.Name,
				Location:    obj.Location,
				RotationDeg: obj.RotationDeg,
			}
		}
	}
	return scene, nil
}

// ClearScene implements engine.Engine.
func (e *Engine) ClearScene(ctx context.Context) (engine.ClearResult, error) {
	if err := ctx.Err(); err != nil {
		return engine.ClearResult{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var kept []*engine.Object
	var result engine.ClearResult
	for _, obj := range e.objects {
		if protected(obj) {
			kept = append(kept, obj)
			result.Preserved = append(result.Preserved, obj.Name)
			continue
		}
		result.Deleted++
	}
	e.objects = kept
	if e.find(e.active) == nil {
		e.active = ""
	}
	return result, nil
}

// RenderSettings implements engine.Engine.
func (e *Engine) RenderSettings(ctx context.Context) (engine.RenderSettings, error) {
	if err := ctx.Err(); err != nil {
		return engine.RenderSettings{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings, nil
}

// SetRenderSettings implements engine.Engine.
func (e *Engine) SetRenderSettings(ctx context.Context, patch engine.RenderSettingsPatch) (engine.RenderSettings, error) {
	if err := ctx.Err(); err != nil {
		return engine.RenderSettings{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if patch.Resolution != nil {
		e.settings.Resolution = *patch.Resolution
	}
	if patch.Engine != nil {
		e.settings.Engine = *patch.Engine
	}
	if patch.Samples != nil {
		e.settings.Samples = *patch.Samples
	}
	if patch.Format != nil {
		e.settings.Format = *patch.Format
	}
	if patch.Quality != nil {
		e.settings.Quality = *patch.Quality
	}
	return e.settings, nil
}

// Render implements engine.Engine. The headless engine writes a flat-color
// placeholder image so downstream consumers always receive a real file.
func (e *Engine) Render(ctx context.Context, req engine.RenderRequest) (engine.RenderResult, error) {
	if err := ctx.Err(); err != nil {
		return engine.RenderResult{}, err
	}
	e.mu.Lock()
	settings := e.settings
	objectCount := len(e.objects)
	e.mu.Unlock()

	resolution := settings.Resolution
	if req.Resolution != [2]int{} {
		resolution = req.Resolution
	}
	renderEngine := settings.Engine
	if req.Engine != "" {
		renderEngine = req.Engine
	}

	start := time.Now()
	path, err := e.writePlaceholder(req.OutputPath, resolution, objectCount)
	if err != nil {
		return engine.RenderResult{}, errors.Wrap(errors.CodeRenderFailed, "write render output", err)
	}
	return engine.RenderResult{
		OutputPath: path,
		Resolution: resolution,
		Engine:     renderEngine,
		Seconds:    time.Since(start).Seconds(),
	}, nil
}
