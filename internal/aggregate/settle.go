package aggregate

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Outcome is the settled result of one branch of a fan-out. Exactly one of
// Value and Err is meaningful.
type Outcome[T any] struct {
	Index int
	Value T
	Err   error
}

// OK reports whether the branch succeeded.
func (o Outcome[T]) OK() bool {
	return o.Err == nil
}

// PanicError is recorded for a branch that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Settle runs every task concurrently and waits for all of them. Outcomes
// are returned in task order. Tasks not yet launched when ctx is cancelled
// settle with ctx's error.
func Settle[T any](ctx context.Context, tasks []func(context.Context) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		outcomes[i].Index = i
		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}

		wg.Add(1)
		go func(i int, task func(context.Context) (T, error)) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					var zero T
					outcomes[i].Value = zero
					outcomes[i].Err = &PanicError{Value: r, Stack: debug.Stack()}
				}
			}()
			value, err := task(ctx)
			outcomes[i].Value = value
			outcomes[i].Err = err
		}(i, task)
	}

	wg.Wait()
	return outcomes
}
