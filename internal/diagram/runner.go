package diagram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/alnah/go-md2docx/internal/process"
)

// DefaultStageTimeout bounds a single external tool invocation.
const DefaultStageTimeout = 60 * time.Second

// Runner runs an external command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands as child processes, each under Timeout. When the
// deadline fires the whole process group is killed.
type ExecRunner struct {
	Timeout time.Duration
}

// Run executes name with args. A deadline hit wraps ErrStageTimeout; a
// missing binary or non-zero exit wraps ErrToolFailed with stderr attached.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := process.Command(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrStageTimeout, name, timeout)
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%w: %s: %v: %s", ErrToolFailed, name, err, firstLine(msg))
	}
	return fmt.Errorf("%w: %s: %v", ErrToolFailed, name, err)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// LookPath reports whether a tool resolves to an executable.
func LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

var _ Runner = ExecRunner{}
