package main

// Notes:
// - This file contains mocks and helpers shared across CLI tests.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	md2docx "github.com/alnah/go-md2docx"
)

// ---------------------------------------------------------------------------
// Mock Implementations - For unit testing
// ---------------------------------------------------------------------------

// mockConverter records inputs and returns a canned result.
type mockConverter struct {
	mu     sync.Mutex
	inputs []md2docx.Input
	result *md2docx.Result
	err    error
}

func (m *mockConverter) Convert(_ context.Context, in md2docx.Input) (*md2docx.Result, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()
	if m.result == nil && m.err == nil {
		res := &md2docx.Result{DOCX: []byte("PK mock docx")}
		if in.HTML {
			res.HTML = []byte("<html>mock</html>")
		}
		return res, nil
	}
	return m.result, m.err
}

func (m *mockConverter) Inputs() []md2docx.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]md2docx.Input(nil), m.inputs...)
}

// mockPool hands out a single shared converter.
type mockPool struct {
	conv       CLIConverter
	size       int
	acquireErr error
	acquired   atomic.Int32
	released   atomic.Int32
	closed     atomic.Bool
}

func (p *mockPool) Acquire() (CLIConverter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired.Add(1)
	return p.conv, nil
}

func (p *mockPool) Release(CLIConverter) { p.released.Add(1) }
func (p *mockPool) Size() int            { return max(p.size, 1) }
func (p *mockPool) Close() error         { p.closed.Store(true); return nil }

// testEnv returns an environment with captured output, a fixed clock, an
// empty process environment and pool.
func testEnv(pool Pool) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(string) string { return "" },
		NewPool: func(int, []md2docx.Option) Pool {
			return pool
		},
	}
	return env, &stdout, &stderr
}

// writeFiles creates files under dir from a path -> content map.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}
