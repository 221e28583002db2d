package lifecycle

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// Relaunch starts a new copy of the running executable so an applied update
// takes effect. The caller is expected to quit afterwards.
func Relaunch() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("error discovering executable: %w", err)
	}

	cmd := exec.Command(exe)
	cmd.Dir = filepath.Dir(exe)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to relaunch %s: %w", exe, err)
	}
	slog.Info("relaunched application", "pid", cmd.Process.Pid, "exe", exe)
	return cmd.Process.Release()
}
