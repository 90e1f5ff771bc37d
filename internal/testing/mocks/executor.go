// Package mocks provides shared test doubles for ciplug packages.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/AndreyAkinshin/ciplug/internal/runner"
)

var _ runner.Executor = (*Executor)(nil)

// Call records one command run through an Executor.
type Call struct {
	Dir     string
	Command string
}

// Executor implements runner.Executor for testing.
// Use NewExecutor() and WithRunFunc() to script command results.
type Executor struct {
	// RunFunc decides the outcome of a call. If nil, every command succeeds
	// with empty output.
	RunFunc func(ctx context.Context, call Call) (ok bool, output string)

	mu         sync.Mutex
	calls      []Call
	lastOutput string
}

// NewExecutor creates a new mock executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// WithRunFunc sets the function called by Run.
func (m *Executor) WithRunFunc(fn func(ctx context.Context, call Call) (bool, string)) *Executor {
	m.RunFunc = fn
	return m
}

// Run formats the command like runner.Shell and records it.
func (m *Executor) Run(ctx context.Context, dir, template string, args ...interface{}) bool {
	cmd := template
	if len(args) > 0 {
		cmd = fmt.Sprintf(template, args...)
	}
	call := Call{Dir: dir, Command: cmd}

	m.mu.Lock()
	m.calls = append(m.calls, call)
	fn := m.RunFunc
	m.mu.Unlock()

	ok, output := true, ""
	if fn != nil {
		ok, output = fn(ctx, call)
	}

	m.mu.Lock()
	m.lastOutput = output
	m.mu.Unlock()
	return ok
}

// LastOutput returns the output of the last call.
func (m *Executor) LastOutput() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOutput
}

// Calls returns every recorded call in order.
func (m *Executor) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Call, len(m.calls))
	copy(result, m.calls)
	return result
}

// Reset clears recorded calls.
func (m *Executor) Reset() {
	m.mu.Lock()
	m.calls = nil
	m.lastOutput = ""
	m.mu.Unlock()
}
