package service

import (
	"context"
	"log"
	"time"

	"github.com/louisbranch/sceneforge/internal/platform/errors"
	"github.com/louisbranch/sceneforge/internal/platform/timeouts"
	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
)

// defaultQueueSize bounds the number of commands waiting for the executor.
const defaultQueueSize = 100

// job is one unit of work for the executor.
type job struct {
	ctx    context.Context
	run    func(ctx context.Context) protocol.Response
	result chan protocol.Response
}

// Executor serializes scene mutations onto a single goroutine. Host scene
// graphs are not safe for concurrent mutation, so every scene command from
// every client funnels through here in arrival order.
type Executor struct {
	queue   chan job
	timeout time.Duration
}

// NewExecutor builds an executor with the default queue size and per-job
// timeout.
func NewExecutor() *Executor {
	return &Executor{
		queue:   make(chan job, defaultQueueSize),
		timeout: timeouts.Execute,
	}
}

// Run processes queued jobs until ctx is canceled.
func (e *Executor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.drain()
			return
		case j := <-e.queue:
			e.execute(j)
		}
	}
}

func (e *Executor) execute(j job) {
	if err := j.ctx.Err(); err != nil {
		j.result <- protocol.Failf(errors.CodeTimeout, "command abandoned before execution")
		return
	}
	jobCtx, cancel := context.WithTimeout(j.ctx, e.timeout)
	defer cancel()
	j.result <- j.run(jobCtx)
}

// drain fails any jobs still queued at shutdown.
func (e *Executor) drain() {
	for {
		select {
		case j := <-e.queue:
			j.result <- protocol.Failf(errors.CodeConnectionError, "server shutting down")
		default:
			return
		}
	}
}

// Submit queues fn and waits for its result. A full queue fails fast with
// QUEUE_FULL; a job that does not complete within the executor timeout
// reports TIMEOUT to the caller while the executor finishes or abandons the
// job in the background.
func (e *Executor) Submit(ctx context.Context, fn func(ctx context.Context) protocol.Response) protocol.Response {
	j := job{
		ctx:    ctx,
		run:    fn,
		result: make(chan protocol.Response, 1),
	}

	select {
	case e.queue <- j:
	default:
		log.Printf("executor queue full (%d pending)", len(e.queue))
		return protocol.Failf(errors.CodeQueueFull, "command queue is full, try again later")
	}

	wait := time.NewTimer(e.timeout + time.Second)
	defer wait.Stop()
	select {
	case resp := <-j.result:
		return resp
	case <-ctx.Done():
		return protocol.Failf(errors.CodeConnectionError, "client disconnected while waiting for result")
	case <-wait.C:
		return protocol.Failf(errors.CodeTimeout, "command timed out after %s", e.timeout)
	}
}

// Pending reports the number of queued jobs.
func (e *Executor) Pending() int {
	return len(e.queue)
}
