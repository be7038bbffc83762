//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking
// the browser's renderer and GPU children down with it. Non-positive pids
// are ignored: on Unix they would address the caller's own group.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Errors are ignored; the rod launcher kills the leader as a fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
