package headless

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/louisbranch/sceneforge/internal/engine"
	"github.com/louisbranch/sceneforge/internal/platform/errors"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(WithRenderDir(t.TempDir()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestNewSeedsCameraAndLight(t *testing.T) {
	e := newTestEngine(t)

	scene, err := e.SceneInfo(context.Background())
	if err != nil {
		t.Fatalf("SceneInfo() error = %v", err)
	}
	if scene.ObjectCount != 2 {
		t.Fatalf("ObjectCount = %d, want 2", scene.ObjectCount)
	}
	names := map[string]bool{}
	for _, obj := range scene.Objects {
		names[obj.Name] = true
	}
	for _, want := range []string{"Camera", "Light"} {
		if !names[want] {
			t.Errorf("seeded scene missing %q", want)
		}
	}
}

func TestSceneInfoSnapshot(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreateObject(ctx, engine.CreateRequest{Type: "cube", Name: "Box"}); err != nil {
		t.Fatalf("CreateObject() error = %v", err)
	}

	scene, err := e.SceneInfo(ctx)
	if err != nil {
		t.Fatalf("SceneInfo() error = %v", err)
	}
	if scene.Camera == nil {
		t.Fatal("Camera = nil, want seeded camera")
	}
	if scene.Camera.Name != "Camera" {
		t.Errorf("Camera.Name = %q, want Camera", scene.Camera.Name)
	}
	if scene.Camera.Location != [3]float64{7.36, -6.93, 4.96} {
		t.Errorf("Camera.Location = %v", scene.Camera.Location)
	}
	if scene.RenderSettings.Engine != "BLENDER_EEVEE" {
		t.Errorf("RenderSettings.Engine = %q, want BLENDER_EEVEE", scene.RenderSettings.Engine)
	}
	if scene.RenderSettings.Resolution != [2]int{1920, 1080} {
		t.Errorf("RenderSettings.Resolution = %v", scene.RenderSettings.Resolution)
	}
	if scene.ActiveObject != "Box" {
		t.Errorf("ActiveObject = %q, want Box", scene.ActiveObject)
	}

	if _, err := e.ClearScene(ctx); err != nil {
		t.Fatalf("ClearScene() error = %v", err)
	}
	scene, err = e.SceneInfo(ctx)
	if err != nil {
		t.Fatalf("SceneInfo() error = %v", err)
	}
	if scene.ActiveObject != "" {
		t.Errorf("ActiveObject after clear = %q, want empty", scene.ActiveObject)
	}
}

func TestCreateObjectNameCollision(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	first, err := e.CreateObject(ctx, engine.CreateRequest{Type: "cube", Name: "Cube"})
	if err != nil {
		t.Fatalf("CreateObject() error = %v", err)
	}
	if first.Name != "Cube" {
		t.Errorf("first object name = %q, want Cube", first.Name)
	}

	second, err := e.CreateObject(ctx, engine.CreateRequest{Type: "cube", Name: "Cube"})
	if err != nil {
		t.Fatalf("CreateObject() error = %v", err)
	}
	if second.Name != "Cube.001" {
		t.Errorf("second object name = %q, want Cube.001", second.Name)
	}

	third, err := e.CreateObject(ctx, engine.CreateRequest{Type: "cube", Name: "Cube"})
	if err != nil {
		t.Fatalf("CreateObject() error = %v", err)
	}
	if third.Name != "Cube.002" {
		t.Errorf("third object name = %q, want Cube.002", third.Name)
	}
}

func TestCreateObjectUnsupportedType(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.CreateObject(context.Background(), engine.CreateRequest{Type: "teapot", Name: "Utah"})
	if err == nil {
		t.Fatal("CreateObject() error = nil, want UNSUPPORTED_TYPE")
	}
	if code := errors.CodeOf(err); code != errors.CodeUnsupportedType {
		t.Errorf("error code = %v, want %v", code, errors.CodeUnsupportedType)
	}
}

func TestTransforms(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreateObject(ctx, engine.CreateRequest{Type: "sphere", Name: "Ball"}); err != nil {
		t.Fatalf("CreateObject() error = %v", err)
	}

	obj, err := e.MoveObject(ctx, "Ball", [3]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("MoveObject() error = %v", err)
	}
	if obj.Location != [3]float64{1, 2, 3} {
		t.Errorf("Location = %v, want [1 2 3]", obj.Location)
	}

	obj, err = e.RotateObject(ctx, "Ball", [3]float64{0, 0, 90})
	if err != nil {
		t.Fatalf("RotateObject() error = %v", err)
	}
	if obj.RotationDeg != [3]float64{0, 0, 90} {
		t.Errorf("RotationDeg = %v, want [0 0 90]", obj.RotationDeg)
	}

	obj, err = e.ScaleObject(ctx, "Ball", [3]float64{2, 2, 2})
	if err != nil {
		t.Fatalf("ScaleObject() error = %v", err)
	}
	if obj.Scale != [3]float64{2, 2, 2} {
		t.Errorf("Scale = %v, want [2 2 2]", obj.Scale)
	}

	if _, err := e.MoveObject(ctx, "Ghost", [3]float64{0, 0, 0}); errors.CodeOf(err) != errors.CodeObjectNotFound {
		t.Errorf("MoveObject(Ghost) code = %v, want OBJECT_NOT_FOUND", errors.CodeOf(err))
	}
}

func TestSetMaterialPartialUpdate(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.CreateObject(ctx, engine.CreateRequest{Type: "cube", Name: "Box"}); err != nil {
		t.Fatalf("CreateObject() error = %v", err)
	}

	red := [4]float64{1, 0, 0, 1}
	obj, err := e.SetMaterial(ctx, "Box", engine.Material{Color: &red})
	if err != nil {
		t.Fatalf("SetMaterial() error = %v", err)
	}
	if obj.Material.Color != red {
		t.Errorf("Color = %v, want %v", obj.Material.Color, red)
	}
	if obj.Material.Roughness != 0.5 {
		t.Errorf("Roughness = %v, want default 0.5 untouched", obj.Material.Roughness)
	}

	metallic := 1.0
	obj, err = e.SetMaterial(ctx, "Box", engine.Material{Metallic: &metallic})
	if err != nil {
		t.Fatalf("SetMaterial() error = %v", err)
	}
	if obj.Material.Metallic != 1 {
		t.Errorf("Metallic = %v, want 1", obj.Material.Metallic)
	}
	if obj.Material.Color != red {
		t.Errorf("Color = %v, want %v preserved across partial update", obj.Material.Color, red)
	}
}

func TestClearScenePreservesCameraAndLight(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		if _, err := e.CreateObject(ctx, engine.CreateRequest{Type: "cube", Name: name}); err != nil {
			t.Fatalf("CreateObject(%s) error = %v", name, err)
		}
	}

	result, err := e.ClearScene(ctx)
	if err != nil {
		t.Fatalf("ClearScene() error = %v", err)
	}
	if result.Deleted != 3 {
		t.Errorf("Deleted = %d, want 3", result.Deleted)
	}
	if len(result.Preserved) != 2 {
		t.Errorf("Preserved = %v, want Camera and Light", result.Preserved)
	}

	scene, err := e.SceneInfo(ctx)
	if err != nil {
		t.Fatalf("SceneInfo() error = %v", err)
	}
	if scene.ObjectCount != 2 {
		t.Errorf("ObjectCount after clear = %d, want 2", scene.ObjectCount)
	}
}

func TestSetRenderSettingsPatch(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	samples := 64
	settings, err := e.SetRenderSettings(ctx, engine.RenderSettingsPatch{Samples: &samples})
	if err != nil {
		t.Fatalf("SetRenderSettings() error = %v", err)
	}
	if settings.Samples != 64 {
		t.Errorf("Samples = %d, want 64", settings.Samples)
	}
	if settings.Resolution != [2]int{1920, 1080} {
		t.Errorf("Resolution = %v, want defaults preserved", settings.Resolution)
	}

	got, err := e.RenderSettings(ctx)
	if err != nil {
		t.Fatalf("RenderSettings() error = %v", err)
	}
	if got != settings {
		t.Errorf("RenderSettings() = %+v, want %+v", got, settings)
	}
}

func TestRenderWritesPNG(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	out := filepath.Join(t.TempDir(), "shots", "frame.png")
	result, err := e.Render(ctx, engine.RenderRequest{
		OutputPath: out,
		Resolution: [2]int{64, 48},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if result.OutputPath != out {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, out)
	}
	if result.Resolution != [2]int{64, 48} {
		t.Errorf("Resolution = %v, want [64 48]", result.Resolution)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open render output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode render output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("image bounds = %v, want 64x48", b)
	}
}

func TestRenderDefaultsToSettings(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Render(context.Background(), engine.RenderRequest{
		OutputPath: filepath.Join(t.TempDir(), "out.png"),
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if result.Resolution != [2]int{1920, 1080} {
		t.Errorf("Resolution = %v, want configured default", result.Resolution)
	}
	if result.Engine != "BLENDER_EEVEE" {
		t.Errorf("Engine = %q, want BLENDER_EEVEE", result.Engine)
	}
}

func TestContextCancellation(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.SceneInfo(ctx); err == nil {
		t.Error("SceneInfo() with canceled context: error = nil, want context error")
	}
}
