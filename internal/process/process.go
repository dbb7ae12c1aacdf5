// Package process starts external tools under a deadline and reaps the
// whole process tree when the deadline fires.
package process

import (
	"context"
	"os/exec"
	"time"
)

// Command builds an exec.Cmd bound to ctx whose cancellation kills the
// entire process group rather than only the direct child.
func Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- tool paths come from configuration
	Detach(cmd)
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			KillProcessGroup(cmd.Process.Pid)
		}
		return nil
	}
	cmd.WaitDelay = 2 * time.Second
	return cmd
}
