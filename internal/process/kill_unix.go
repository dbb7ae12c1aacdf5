//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Detach places the command in its own process group so that a timeout can
// take down the whole tree (mmdc spawns a headless browser).
func Detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup sends SIGKILL to the process group led by pid.
// A pid <= 0 is ignored: -0 would signal our own group.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
