package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/sceneforge/internal/engine/headless"
	"github.com/louisbranch/sceneforge/internal/services/control/client"
	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
	"github.com/louisbranch/sceneforge/internal/services/control/service"
	"github.com/louisbranch/sceneforge/internal/services/control/storage/memory"
)

func startControlClient(t *testing.T) *client.Client {
	t.Helper()

	eng, err := headless.New(headless.WithRenderDir(t.TempDir()))
	if err != nil {
		t.Fatalf("headless.New() error = %v", err)
	}
	srv := service.New(eng, memory.New(), service.Options{Version: "test"})

	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.RunExecutor(ctx)

	c := client.New("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", client.Options{
		CommandTimeout: 5 * time.Second,
		MaxRetries:     1,
		RetryBackoff:   10 * time.Millisecond,
	})
	t.Cleanup(func() { c.Close() })
	return c
}

func towerPlan() *Plan {
	return &Plan{
		Description: "two-cube tower",
		Steps: []Step{
			{Action: protocol.CmdCreateObject, Params: map[string]any{"type": "cube", "name": "Base"}},
			{Action: protocol.CmdCreateObject, Params: map[string]any{"type": "cube", "name": "Top", "location": []any{0, 0, 2}}},
			{Action: protocol.CmdSetMaterial, Params: map[string]any{"name": "Top", "material": map[string]any{"color": "#FF0000"}}},
		},
	}
}

func TestExecutorExecute(t *testing.T) {
	c := startControlClient(t)
	exec := NewExecutor(c, 2)
	exec.backoff = 10 * time.Millisecond

	t.Run("all steps succeed", func(t *testing.T) {
		result, err := exec.Execute(context.Background(), towerPlan())
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !result.Success {
			t.Errorf("Success = false, errors: %v", result.Errors)
		}
		if result.Completed != 3 || result.Failed != 0 {
			t.Errorf("Completed/Failed = %d/%d, want 3/0", result.Completed, result.Failed)
		}
	})

	t.Run("failed step recorded, run continues", func(t *testing.T) {
		plan := &Plan{Steps: []Step{
			{Action: protocol.CmdMoveObject, Params: map[string]any{"name": "Ghost", "location": []any{0, 0, 0}}},
			{Action: protocol.CmdCreateObject, Params: map[string]any{"type": "sphere", "name": "Ball"}},
		}}
		result, err := exec.Execute(context.Background(), plan)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if result.Success {
			t.Error("Success = true, want false")
		}
		if result.Completed != 1 || result.Failed != 1 {
			t.Errorf("Completed/Failed = %d/%d, want 1/1", result.Completed, result.Failed)
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "step 1") {
			t.Errorf("Errors = %v", result.Errors)
		}
	})

	t.Run("nil plan", func(t *testing.T) {
		if _, err := exec.Execute(context.Background(), nil); err == nil {
			t.Fatal("expected error for nil plan")
		}
	})
}

func TestObserverAnalyze(t *testing.T) {
	c := startControlClient(t)
	exec := NewExecutor(c, 1)
	if _, err := exec.Execute(context.Background(), towerPlan()); err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	obs := NewObserver(c)
	analysis, err := obs.Analyze(context.Background(), true)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	// Camera + Light + Base + Top.
	if len(analysis.Objects) != 4 {
		t.Errorf("len(Objects) = %d, want 4", len(analysis.Objects))
	}
	if !strings.Contains(analysis.Description, "red color") {
		t.Errorf("Description = %q, want red color mention", analysis.Description)
	}
	if analysis.RenderPath == "" {
		t.Error("RenderPath empty with captureRender")
	}
	if _, err := os.Stat(analysis.RenderPath); err != nil {
		t.Errorf("render output missing: %v", err)
	}
}

func TestObserverVerifyObjects(t *testing.T) {
	c := startControlClient(t)
	exec := NewExecutor(c, 1)
	if _, err := exec.Execute(context.Background(), towerPlan()); err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	found, err := NewObserver(c).VerifyObjects(context.Background(), []string{"Base", "Top", "Ghost"})
	if err != nil {
		t.Fatalf("VerifyObjects() error = %v", err)
	}
	if !found["Base"] || !found["Top"] {
		t.Errorf("expected Base and Top present, got %v", found)
	}
	if found["Ghost"] {
		t.Error("Ghost reported present")
	}
}

func TestColorName(t *testing.T) {
	tests := []struct {
		r, g, b float64
		want    string
	}{
		{0.9, 0.1, 0.1, "red"},
		{0.1, 0.9, 0.1, "green"},
		{0.1, 0.1, 0.9, "blue"},
		{0.9, 0.9, 0.1, "yellow"},
		{0.9, 0.9, 0.9, "white"},
		{0.1, 0.1, 0.1, "black"},
		{0.5, 0.5, 0.4, "colored"},
	}
	for _, tt := range tests {
		if got := colorName(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("colorName(%v, %v, %v) = %q, want %q", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestWorkflowProcess(t *testing.T) {
	t.Run("completes with in-memory plan", func(t *testing.T) {
		c := startControlClient(t)
		w := NewWorkflow(c, 2)

		result, err := w.Process(context.Background(), Request{Plan: towerPlan(), CaptureRender: true})
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if !result.Success {
			t.Errorf("Success = false, execution errors: %v", result.Execution.Errors)
		}
		if result.FinalState != StateCompleted {
			t.Errorf("FinalState = %q", result.FinalState)
		}
		if w.State() != StateCompleted {
			t.Errorf("State() = %q", w.State())
		}
		if result.RenderPath == "" {
			t.Error("RenderPath empty")
		}
	})

	t.Run("runs yaml plan from disk", func(t *testing.T) {
		c := startControlClient(t)
		path := filepath.Join(t.TempDir(), "plan.yaml")
		doc := "steps:\n  - action: create_object\n    params:\n      type: cone\n      name: Hat\n"
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatal(err)
		}

		result, err := NewWorkflow(c, 1).Process(context.Background(), Request{PlanPath: path})
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if !result.Success {
			t.Errorf("Success = false, errors: %v", result.Execution.Errors)
		}
	})

	t.Run("runs lua scenario from disk", func(t *testing.T) {
		c := startControlClient(t)
		path := writeScenario(t, "scene.lua", `
local s = Scenario.new("torus drop")
s:create("torus", {name = "Ring", location = {0, 0, 3}})
return s
`)

		result, err := NewWorkflow(c, 1).Process(context.Background(), Request{ScenarioPath: path})
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if !result.Success {
			t.Errorf("Success = false, errors: %v", result.Execution.Errors)
		}
		if len(result.Plan.Steps) != 1 {
			t.Errorf("plan steps = %d", len(result.Plan.Steps))
		}
	})

	t.Run("empty request errors", func(t *testing.T) {
		c := startControlClient(t)
		w := NewWorkflow(c, 1)
		if _, err := w.Process(context.Background(), Request{}); err == nil {
			t.Fatal("expected error for empty request")
		}
		if w.State() != StateError {
			t.Errorf("State() = %q, want error", w.State())
		}
	})

	t.Run("partial failure still completes", func(t *testing.T) {
		c := startControlClient(t)
		plan := &Plan{Steps: []Step{
			{Action: protocol.CmdMoveObject, Params: map[string]any{"name": "Ghost", "location": []any{0, 0, 0}}},
		}}
		w := NewWorkflow(c, 1)
		result, err := w.Process(context.Background(), Request{Plan: plan})
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if result.Success {
			t.Error("Success = true, want false")
		}
		if result.FinalState != StateCompleted {
			t.Errorf("FinalState = %q, want completed", result.FinalState)
		}
	})
}
