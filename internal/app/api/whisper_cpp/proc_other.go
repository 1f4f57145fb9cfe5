//go:build !unix

package whisper_cpp

import "os/exec"

func setProcessGroup(cmd *exec.Cmd) {}
