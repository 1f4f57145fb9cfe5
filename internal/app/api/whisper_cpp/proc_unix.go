//go:build unix

package whisper_cpp

import (
	"os/exec"
	"syscall"
)

// setProcessGroup runs the binary in its own process group so cancellation
// also stops children of wrapper scripts.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
