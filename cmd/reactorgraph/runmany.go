package main

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/kessler-tait/reactorgraph/eval"
)

// runMany evaluates each of the given evaluators concurrently, one
// goroutine per evaluator: a CompiledGraph plus its Evaluator is a
// single-writer, single-threaded unit, and the only sanctioned
// parallelism is running distinct graphs on distinct goroutines.
// Fan-out is grounded on App.Run's errgroup worker loop in
// github.com/birdayz/kstreams/app.go. Unlike errgroup.Wait's
// first-error-wins behavior, runMany collects every evaluator's
// error and reports all of them, mirroring TaskManager.Close's
// multierr.Append accumulation in
// github.com/birdayz/kstreams/internal/task_manager.go, since one
// topology failing to evaluate shouldn't hide another's failure.
func runMany(ctx context.Context, evaluators []*eval.Evaluator, tick func(*eval.Evaluator) error) error {
	grp, _ := errgroup.WithContext(ctx)
	var mu sync.Mutex
	var combined error
	for _, e := range evaluators {
		e := e
		grp.Go(func() error {
			err := tick(e)
			if err != nil {
				mu.Lock()
				combined = multierr.Append(combined, err)
				mu.Unlock()
			}
			return err
		})
	}
	_ = grp.Wait()
	return combined
}
