// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolexectest provides a scripted toolexec.Executor for tests.
package toolexectest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// Call is one recorded Run invocation.
type Call struct {
	Name  string
	Args  []string
	Stdin string
}

// Key returns "name arg1 arg2".
func (c Call) Key() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Fake records calls and returns configured responses.
type Fake struct {
	mu sync.Mutex

	// Bins lists binaries LookPath finds.
	Bins map[string]bool

	// Env holds environment variables.
	Env map[string]string

	// Outputs maps a call key to the stdout it produces.
	Outputs map[string]string

	// Errors maps a call key to the error it returns.
	Errors map[string]error

	// RunFunc, when set, handles every call instead of Outputs/Errors.
	RunFunc func(c Call, stdout io.Writer) error

	Calls []Call
}

func (f *Fake) LookPath(file string) (string, error) {
	if f.Bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *Fake) Getenv(key string) string {
	return f.Env[key]
}

func (f *Fake) Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := Call{Name: name, Args: append([]string(nil), args...)}
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		c.Stdin = string(data)
	}
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	f.mu.Unlock()

	if f.RunFunc != nil {
		return f.RunFunc(c, stdout)
	}
	if err, ok := f.Errors[c.Key()]; ok {
		return err
	}
	if out, ok := f.Outputs[c.Key()]; ok && stdout != nil {
		_, err := io.WriteString(stdout, out)
		return err
	}
	return nil
}

// Recorded returns a copy of the recorded calls.
func (f *Fake) Recorded() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.Calls...)
}
