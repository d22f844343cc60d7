package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vk/taskgridgo/internal/config"
	"github.com/vk/taskgridgo/internal/ctxlog"
	"github.com/vk/taskgridgo/internal/depgraph"
	"github.com/vk/taskgridgo/internal/domain"
	"github.com/vk/taskgridgo/internal/resource"
	"github.com/vk/taskgridgo/internal/scheduler"
)

// Run executes the loaded grid: every task is submitted to the dependency
// domain, edges are discovered from the declared regions, and the resource
// pool drains the ready queue until the graph is done.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	runID := uuid.New().String()
	logger := a.logger.With("run", runID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	workers := appConfig.Workers
	if a.model.Runtime.Workers > 0 {
		workers = a.model.Runtime.Workers
	}
	arch := appConfig.Architecture
	if a.model.Runtime.Architecture != "" {
		arch = a.model.Runtime.Architecture
	}
	// Ready is invoked from a worker's completion path, so the queue must be
	// able to absorb every node one completion can release or the pool blocks
	// feeding itself. tasks+workers always suffices; a configured depth may
	// only raise it.
	depth := len(a.model.Tasks) + workers
	if a.model.Runtime.QueueDepth > depth {
		depth = a.model.Runtime.QueueDepth
	}

	pol := scheduler.NewFIFO(depth)
	dom := domain.New(pol)
	src := newGridSource(ctx, pol, dom)

	logger.Info("Starting resource pool.", "workers", workers, "architecture", arch)
	pool := make([]*resource.Resource, 0, workers)
	for i := 0; i < workers; i++ {
		r := resource.New(i, arch)
		if _, err := r.StartWorker(ctx, src); err != nil {
			return fmt.Errorf("starting worker for resource %d: %w", i, err)
		}
		pool = append(pool, r)
	}

	logger.Info("Submitting tasks.", "count", len(a.model.Tasks))
	submitErr := a.submitAll(ctx, dom)

	// Even on a submission error, anything already submitted must drain
	// before the queue closes: a finishing task may still release successors
	// into it.
	dom.Wait()
	pol.Close()
	for _, r := range pool {
		r.StopAll()
		if w := r.Worker(); w != nil {
			w.Join()
		}
	}
	if submitErr != nil {
		return submitErr
	}
	logger.Info("Execution finished.", "tasks", len(a.model.Tasks))

	if errs := src.Errors(); len(errs) > 0 {
		return fmt.Errorf("execution failed for %d task(s): %w", len(errs), errors.Join(errs...))
	}
	return nil
}

// submitAll turns every declared task into a work item and submits it in
// declaration order, resolving explicit depends_on references against the
// tasks submitted before it.
func (a *App) submitAll(ctx context.Context, dom *domain.Domain) error {
	byName := make(map[string]depgraph.Object, len(a.model.Tasks))
	for _, t := range a.model.Tasks {
		item := newSimTask(t)

		var after []depgraph.Object
		for _, dep := range t.DependsOn {
			pred, ok := byName[dep]
			if !ok {
				return fmt.Errorf("task %q depends on %q, which is declared later in the grid", t.Name, dep)
			}
			after = append(after, pred)
		}

		obj := depgraph.NewTask(dom.NewID(), item, dom.Policy())
		if item.ops != nil {
			obj.DepNode().SetCompletionOps(item.ops)
		}
		dom.SubmitObject(ctx, obj, regionsToTargets(t.Reads), regionsToTargets(t.Writes), after...)
		byName[t.Name] = obj
	}
	return nil
}

func regionsToTargets(regions []config.Region) []depgraph.Target {
	out := make([]depgraph.Target, 0, len(regions))
	for _, r := range regions {
		out = append(out, depgraph.Target{Base: r.Base, Length: r.Length})
	}
	return out
}
