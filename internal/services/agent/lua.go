package agent

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
)

const scenarioTypeName = "scenario"

// scenario accumulates steps while a Lua script runs.
type scenario struct {
	name  string
	steps []Step
}

// LoadScenario runs a Lua scenario script and compiles it into a plan.
// The script must return a Scenario built with Scenario.new, e.g.:
//
//	local s = Scenario.new("demo")
//	s:create("cube", {name = "Box", location = {0, 0, 1}})
//	s:material("Box", {color = "#FF0000"})
//	s:render({width = 640, height = 480})
//	return s
func LoadScenario(path string) (*Plan, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerScenarioType(state)
	registerScenarioConstructor(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run scenario: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return a Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	sc, ok := ud.(*scenario)
	if !ok || sc == nil {
		return nil, fmt.Errorf("scenario script returned an invalid Scenario")
	}

	name := strings.TrimSpace(sc.name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	plan := &Plan{Description: name, Steps: sc.steps}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return plan, nil
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "new", Function: scenarioNew},
	}, 0)
	state.SetGlobal("Scenario")
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	sc := &scenario{name: name}
	state.PushUserData(sc)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "create", Function: scenarioCreate},
	{Name: "move", Function: scenarioMove},
	{Name: "rotate", Function: scenarioRotate},
	{Name: "scale", Function: scenarioScale},
	{Name: "material", Function: scenarioMaterial},
	{Name: "clear", Function: scenarioClear},
	{Name: "render", Function: scenarioRender},
	{Name: "render_settings", Function: scenarioRenderSettings},
	{Name: "step", Function: scenarioStep},
}

func scenarioCreate(state *lua.State) int {
	sc := checkScenario(state)
	objType := lua.CheckString(state, 2)
	params := optionalTable(state, 3)
	params["type"] = objType
	appendStep(sc, protocol.CmdCreateObject, params)
	return 0
}

func scenarioMove(state *lua.State) int {
	return transformStep(state, protocol.CmdMoveObject, "location")
}

func scenarioRotate(state *lua.State) int {
	return transformStep(state, protocol.CmdRotateObject, "rotation")
}

func scenarioScale(state *lua.State) int {
	return transformStep(state, protocol.CmdScaleObject, "scale")
}

func transformStep(state *lua.State, action, field string) int {
	sc := checkScenario(state)
	name := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	appendStep(sc, action, map[string]any{
		"name": name,
		field:  tableToGo(state, 3),
	})
	return 0
}

func scenarioMaterial(state *lua.State) int {
	sc := checkScenario(state)
	name := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	appendStep(sc, protocol.CmdSetMaterial, map[string]any{
		"name":     name,
		"material": tableToMap(state, 3),
	})
	return 0
}

func scenarioClear(state *lua.State) int {
	sc := checkScenario(state)
	appendStep(sc, protocol.CmdClearScene, nil)
	return 0
}

func scenarioRender(state *lua.State) int {
	sc := checkScenario(state)
	params := optionalTable(state, 2)
	appendStep(sc, protocol.CmdRenderScene, renderParams(params))
	return 0
}

func scenarioRenderSettings(state *lua.State) int {
	sc := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(sc, protocol.CmdSetRenderSettings, renderParams(tableToMap(state, 2)))
	return 0
}

// renderParams folds width/height shorthand into a resolution pair.
func renderParams(params map[string]any) map[string]any {
	width, wok := params["width"]
	height, hok := params["height"]
	if wok && hok {
		delete(params, "width")
		delete(params, "height")
		params["resolution"] = []any{width, height}
	}
	return params
}

func scenarioStep(state *lua.State) int {
	sc := checkScenario(state)
	action := lua.CheckString(state, 2)
	params := optionalTable(state, 3)
	appendStep(sc, action, params)
	return 0
}

func checkScenario(state *lua.State) *scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if sc, ok := ud.(*scenario); ok && sc != nil {
		return sc
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(sc *scenario, action string, params map[string]any) {
	if sc == nil {
		return
	}
	if params == nil {
		params = map[string]any{}
	}
	sc.steps = append(sc.steps, Step{Action: action, Params: params})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
