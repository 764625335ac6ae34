package agent

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeScenario(t *testing.T, name, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, "demo.lua", `
local s = Scenario.new("tower demo")
s:create("cube", {name = "Base", location = {0, 0, 0.5}})
s:create("cube", {name = "Top"})
s:move("Top", {0, 0, 1.5})
s:rotate("Top", {0, 0, 45})
s:scale("Top", {0.5, 0.5, 0.5})
s:material("Base", {color = "#AA3311", metallic = 0.2})
s:render({width = 320, height = 240})
return s
`)

	plan, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario() error = %v", err)
	}
	if plan.Description != "tower demo" {
		t.Errorf("Description = %q", plan.Description)
	}
	if len(plan.Steps) != 7 {
		t.Fatalf("len(Steps) = %d, want 7", len(plan.Steps))
	}

	create := plan.Steps[0]
	if create.Action != "create_object" {
		t.Errorf("Steps[0].Action = %q", create.Action)
	}
	if create.Params["type"] != "cube" || create.Params["name"] != "Base" {
		t.Errorf("Steps[0].Params = %v", create.Params)
	}
	wantLoc := []any{0, 0, 0.5}
	if !reflect.DeepEqual(create.Params["location"], wantLoc) {
		t.Errorf("location = %v, want %v", create.Params["location"], wantLoc)
	}

	move := plan.Steps[2]
	if move.Action != "move_object" || move.Params["name"] != "Top" {
		t.Errorf("Steps[2] = %+v", move)
	}

	mat := plan.Steps[5]
	material, ok := mat.Params["material"].(map[string]any)
	if !ok {
		t.Fatalf("material params = %v", mat.Params["material"])
	}
	if material["color"] != "#AA3311" {
		t.Errorf("material color = %v", material["color"])
	}

	render := plan.Steps[6]
	wantRes := []any{320, 240}
	if !reflect.DeepEqual(render.Params["resolution"], wantRes) {
		t.Errorf("resolution = %v, want %v", render.Params["resolution"], wantRes)
	}
}

func TestLoadScenarioDefaultsName(t *testing.T) {
	path := writeScenario(t, "spiral.lua", `
local s = Scenario.new()
s:clear()
return s
`)

	plan, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario() error = %v", err)
	}
	if plan.Description != "spiral" {
		t.Errorf("Description = %q, want spiral", plan.Description)
	}
	if plan.Steps[0].Action != "clear_scene" {
		t.Errorf("Steps[0].Action = %q", plan.Steps[0].Action)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	t.Run("missing return", func(t *testing.T) {
		path := writeScenario(t, "noreturn.lua", `local s = Scenario.new("x")`)
		if _, err := LoadScenario(path); err == nil {
			t.Fatal("expected error when script returns nothing")
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		path := writeScenario(t, "broken.lua", `local s = Scenario.new(`)
		if _, err := LoadScenario(path); err == nil {
			t.Fatal("expected load error")
		}
	})

	t.Run("runtime error", func(t *testing.T) {
		path := writeScenario(t, "boom.lua", `error("boom")`)
		if _, err := LoadScenario(path); err == nil {
			t.Fatal("expected runtime error")
		}
	})

	t.Run("empty scenario", func(t *testing.T) {
		path := writeScenario(t, "empty.lua", `return Scenario.new("empty")`)
		if _, err := LoadScenario(path); err == nil {
			t.Fatal("expected validation error for scenario with no steps")
		}
	})

	t.Run("unknown action via step", func(t *testing.T) {
		path := writeScenario(t, "unknown.lua", `
local s = Scenario.new("bad")
s:step("explode_object", {})
return s
`)
		if _, err := LoadScenario(path); err == nil {
			t.Fatal("expected validation error for unknown action")
		}
	})
}
