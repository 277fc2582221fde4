package executor

import (
	"context"
	"fmt"
	"strings"
)

// Volume is a host path mounted into the container.
type Volume struct {
	Host      string
	Container string
}

func (v Volume) String() string {
	return v.Host + ":" + v.Container
}

// Spec describes one container execution.
type Spec struct {
	Image   string
	Volumes []Volume
	Env     map[string]string
}

// Result is the outcome of a finished container.
type Result struct {
	ExitCode int
	Log      string
}

// Executor runs a container to completion.
type Executor interface {
	Execute(ctx context.Context, spec Spec) (Result, error)
}

// ExecutionError reports a container that exited with a non-zero code.
type ExecutionError struct {
	Image    string
	ExitCode int
	Log      string
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("container %s exited with code %d", e.Image, e.ExitCode)
	if tail := lastLines(e.Log, 5); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
