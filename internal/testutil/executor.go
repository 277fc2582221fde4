package testutil

import (
	"context"

	"github.com/vk/dpctl/internal/executor"
)

// FakeExecutor records executions instead of running containers.
type FakeExecutor struct {
	Calls []executor.Spec

	// OnExecute, when set, decides the outcome of a call.
	OnExecute func(spec executor.Spec) (executor.Result, error)
}

// Execute implements executor.Executor.
func (f *FakeExecutor) Execute(_ context.Context, spec executor.Spec) (executor.Result, error) {
	f.Calls = append(f.Calls, spec)
	if f.OnExecute != nil {
		return f.OnExecute(spec)
	}
	return executor.Result{}, nil
}

// LastCall returns the most recent execution, or a zero Spec.
func (f *FakeExecutor) LastCall() executor.Spec {
	if len(f.Calls) == 0 {
		return executor.Spec{}
	}
	return f.Calls[len(f.Calls)-1]
}
