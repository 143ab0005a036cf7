// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package concurrent provides a bounded worker pool for fanning out
// independent units of work, such as cleaning up the exceptions of a
// series after its template is deleted.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool limits how many submitted functions run at the same time.
type WorkerPool struct {
	workerCount int
}

// NewWorkerPool creates a worker pool running at most workerCount functions
// concurrently. A non-positive count falls back to serial execution.
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{workerCount: workerCount}
}

// Run executes the functions concurrently and returns the first error.
// Once a function fails, functions that have not started yet are skipped.
func (wp *WorkerPool) Run(ctx context.Context, functions ...func() error) error {
	if len(functions) == 0 {
		return nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)

	for _, fn := range functions {
		g.Go(func() error {
			// A failed sibling cancels groupCtx; don't start more work then.
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			default:
			}
			return fn()
		})
	}

	return g.Wait()
}

// RunAll executes every function regardless of failures and returns the
// non-nil errors that occurred, in no particular order. A cancelled context
// is reported once per function that was skipped because of it.
func (wp *WorkerPool) RunAll(ctx context.Context, functions ...func() error) []error {
	if len(functions) == 0 {
		return nil
	}

	// Each goroutine writes only its own slot, so no locking is needed.
	results := make([]error, len(functions))

	g := new(errgroup.Group)
	g.SetLimit(wp.workerCount)

	for i, fn := range functions {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = ctx.Err()
				return nil
			default:
			}
			results[i] = fn()
			return nil
		})
	}

	// Never receives an error; used purely to wait for completion.
	_ = g.Wait()

	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
