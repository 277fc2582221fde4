package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"

	"github.com/vk/dpctl/internal/ctxlog"
)

// DockerExecutor runs containers with the docker CLI.
type DockerExecutor struct {
	dockerBin string
	output    io.Writer
}

// NewDockerExecutor returns an executor using dockerBin ("docker" when
// empty). When output is non-nil the container log is streamed to it while
// it is being captured.
func NewDockerExecutor(dockerBin string, output io.Writer) *DockerExecutor {
	dockerBin = strings.TrimSpace(dockerBin)
	if dockerBin == "" {
		dockerBin = "docker"
	}
	return &DockerExecutor{dockerBin: dockerBin, output: output}
}

// Execute runs `docker run --rm` and waits for the container to exit.
func (e *DockerExecutor) Execute(ctx context.Context, spec Spec) (Result, error) {
	image := strings.TrimSpace(spec.Image)
	if image == "" {
		return Result{}, errors.New("image is required")
	}
	if _, err := exec.LookPath(e.dockerBin); err != nil {
		return Result{}, fmt.Errorf("docker binary not found: %w", err)
	}

	args := runArgs(spec)
	ctxlog.FromContext(ctx).Debug("Running container.", "bin", e.dockerBin, "args", args)

	var buf bytes.Buffer
	var out io.Writer = &buf
	if e.output != nil {
		out = io.MultiWriter(&buf, e.output)
	}
	cmd := exec.CommandContext(ctx, e.dockerBin, args...)
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	result := Result{Log: buf.String()}
	if err == nil {
		return result, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &ExecutionError{Image: image, ExitCode: result.ExitCode, Log: result.Log}
	}
	return result, fmt.Errorf("docker run failed: %w", err)
}

func runArgs(spec Spec) []string {
	args := []string{"run", "--rm"}
	for _, v := range spec.Volumes {
		args = append(args, "-v", v.String())
	}
	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+spec.Env[k])
	}
	return append(args, strings.TrimSpace(spec.Image))
}
