//go:build windows

package infrastructure

import (
	"os/exec"
	"strconv"
	"syscall"
)

// setProcessGroup starts the tool in a new process group without a console
// window. Cancel kills the whole process tree so that ffmpeg children go too.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | 0x08000000, // CREATE_NO_WINDOW
	}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		kill := exec.Command("taskkill", taskkillArgs(cmd.Process.Pid)...)
		kill.SysProcAttr = &syscall.SysProcAttr{CreationFlags: 0x08000000}
		if err := kill.Run(); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}

func taskkillArgs(pid int) []string {
	return []string{"/T", "/F", "/PID", strconv.Itoa(pid)}
}
