package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/sceneforge/internal/services/control/client"
	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
)

// ExecutionResult summarizes a plan run.
type ExecutionResult struct {
	Success   bool                `json:"success"`
	Completed int                 `json:"completed"`
	Failed    int                 `json:"failed"`
	Errors    []string            `json:"errors,omitempty"`
	Responses []protocol.Response `json:"-"`
}

// Executor runs plan steps against the control server, retrying each
// step before giving up on it.
type Executor struct {
	client     *client.Client
	maxRetries int
	backoff    time.Duration
}

// NewExecutor builds an executor over an existing control client.
func NewExecutor(c *client.Client, maxRetries int) *Executor {
	if maxRetries < 1 {
		maxRetries = 3
	}
	return &Executor{client: c, maxRetries: maxRetries, backoff: 500 * time.Millisecond}
}

// Execute runs every step in order. Failed steps are recorded and
// execution moves on; the result is successful only when all steps are.
func (e *Executor) Execute(ctx context.Context, plan *Plan) (ExecutionResult, error) {
	if plan == nil {
		return ExecutionResult{}, fmt.Errorf("nil plan")
	}

	var result ExecutionResult
	for i, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		resp, err := e.executeStep(ctx, step)
		result.Responses = append(result.Responses, resp)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("step %d (%s): %v", i+1, step.Action, err))
			log.Printf("agent: step %d/%d %s failed: %v", i+1, len(plan.Steps), step.Action, err)
			continue
		}
		result.Completed++
	}

	result.Success = result.Failed == 0
	return result, nil
}

func (e *Executor) executeStep(ctx context.Context, step Step) (protocol.Response, error) {
	var (
		resp protocol.Response
		err  error
	)
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return resp, ctx.Err()
			case <-time.After(e.backoff):
			}
		}

		resp, err = e.client.Send(ctx, step.Action, step.Params)
		if err == nil && resp.Success {
			return resp, nil
		}
		if err == nil {
			err = fmt.Errorf("%s", resp.Error)
		}
	}
	return resp, err
}
