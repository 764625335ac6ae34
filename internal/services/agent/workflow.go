package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/louisbranch/sceneforge/internal/services/control/client"
)

// State names a workflow phase.
type State string

const (
	StateIdle      State = "idle"
	StatePlanning  State = "planning"
	StateExecuting State = "executing"
	StateObserving State = "observing"
	StateCompleted State = "completed"
	StateError     State = "error"
)

// Request asks the workflow to run one plan.
type Request struct {
	// PlanPath points at a YAML plan document. Mutually exclusive with
	// ScenarioPath and Plan.
	PlanPath string
	// ScenarioPath points at a Lua scenario script.
	ScenarioPath string
	// Plan is a pre-compiled plan. Takes precedence when set.
	Plan *Plan
	// CaptureRender asks the observer to render the final scene.
	CaptureRender bool
}

// Result is the outcome of one workflow run.
type Result struct {
	Success    bool            `json:"success"`
	FinalState State           `json:"final_state"`
	Plan       *Plan           `json:"plan,omitempty"`
	Execution  ExecutionResult `json:"execution"`
	Analysis   SceneAnalysis   `json:"analysis"`
	RenderPath string          `json:"render_path,omitempty"`
}

// Workflow runs plans through planning, execution, and observation.
type Workflow struct {
	executor *Executor
	observer *Observer
	state    State
}

// NewWorkflow wires the pipeline over one control client.
func NewWorkflow(c *client.Client, maxRetries int) *Workflow {
	return &Workflow{
		executor: NewExecutor(c, maxRetries),
		observer: NewObserver(c),
		state:    StateIdle,
	}
}

// State returns the current phase.
func (w *Workflow) State() State {
	return w.state
}

func (w *Workflow) transition(next State) {
	log.Printf("agent: workflow %s -> %s", w.state, next)
	w.state = next
}

// Process compiles the requested plan, executes it, and observes the
// resulting scene. A failed run leaves the workflow in StateError.
func (w *Workflow) Process(ctx context.Context, req Request) (Result, error) {
	w.transition(StatePlanning)
	plan, err := w.compile(req)
	if err != nil {
		w.transition(StateError)
		return Result{FinalState: StateError}, err
	}
	log.Printf("agent: plan %q with %d steps", plan.Description, len(plan.Steps))

	w.transition(StateExecuting)
	execution, err := w.executor.Execute(ctx, plan)
	if err != nil {
		w.transition(StateError)
		return Result{FinalState: StateError, Plan: plan, Execution: execution}, err
	}

	w.transition(StateObserving)
	analysis, err := w.observer.Analyze(ctx, req.CaptureRender)
	if err != nil {
		w.transition(StateError)
		return Result{FinalState: StateError, Plan: plan, Execution: execution}, err
	}

	w.transition(StateCompleted)
	return Result{
		Success:    execution.Success,
		FinalState: StateCompleted,
		Plan:       plan,
		Execution:  execution,
		Analysis:   analysis,
		RenderPath: analysis.RenderPath,
	}, nil
}

func (w *Workflow) compile(req Request) (*Plan, error) {
	switch {
	case req.Plan != nil:
		if err := req.Plan.Validate(); err != nil {
			return nil, err
		}
		return req.Plan, nil
	case req.PlanPath != "":
		return LoadPlan(req.PlanPath)
	case req.ScenarioPath != "":
		return LoadScenario(req.ScenarioPath)
	default:
		return nil, fmt.Errorf("request has no plan")
	}
}
