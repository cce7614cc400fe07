// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolexec runs the external desktop tools the client relies on
// (clipboard and camera utilities) and picks the first one that works on
// the current machine.
package toolexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Executor abstracts command execution for testing.
type Executor interface {
	LookPath(file string) (string, error)
	Getenv(key string) string

	// Run executes name with args, wiring stdin and stdout. Either may be
	// nil. A non-zero exit returns an error that includes stderr.
	Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Getenv(key string) string {
	return os.Getenv(key)
}

func (osExecutor) Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Default is the executor used outside tests.
var Default Executor = osExecutor{}

// Requirement describes what a tool backend needs to be usable.
type Requirement struct {
	// Bins must all be on PATH.
	Bins []string

	// Env, when set, must be non-empty (e.g. WAYLAND_DISPLAY).
	Env string
}

// Satisfied reports whether ex can run a backend with requirement r.
func (r Requirement) Satisfied(ex Executor) bool {
	for _, bin := range r.Bins {
		if _, err := ex.LookPath(bin); err != nil {
			return false
		}
	}
	return r.Env == "" || ex.Getenv(r.Env) != ""
}

// Backend is one candidate tool.
type Backend interface {
	Name() string
	Requirement() Requirement
}

// Detect returns the first backend whose requirement is satisfied. what
// names the capability in the error (e.g. "clipboard tool").
func Detect[B Backend](ex Executor, what string, backends ...B) (B, error) {
	names := make([]string, 0, len(backends))
	for _, b := range backends {
		if b.Requirement().Satisfied(ex) {
			return b, nil
		}
		names = append(names, b.Name())
	}
	var zero B
	return zero, fmt.Errorf("no %s available: tried %s", what, strings.Join(names, ", "))
}

// Output runs a command and returns its stdout.
func Output(ctx context.Context, ex Executor, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	if err := ex.Run(ctx, name, args, nil, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
