//go:build !windows

package install

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultShortcutDirs returns the freedesktop applications dir and the
// desktop on Linux, and ~/Applications plus the desktop on macOS.
func DefaultShortcutDirs() ShortcutDirs {
	home, _ := os.UserHomeDir()
	dirs := ShortcutDirs{Desktop: filepath.Join(home, "Desktop")}

	if runtime.GOOS == "darwin" {
		dirs.StartMenu = filepath.Join(home, "Applications")
		return dirs
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}
	dirs.StartMenu = filepath.Join(dataHome, "applications")
	return dirs
}

// NewShortcutWriter writes .desktop entries, or symlinks on macOS.
func NewShortcutWriter(dirs ShortcutDirs) ShortcutWriter {
	return fileShortcutWriter{dirs: dirs, symlink: runtime.GOOS == "darwin"}
}

type fileShortcutWriter struct {
	dirs    ShortcutDirs
	symlink bool
}

func (w fileShortcutWriter) path(s Shortcut) (string, error) {
	dir := w.dirs.For(s.Location)
	if dir == "" {
		return "", fmt.Errorf("no directory for %s shortcuts", s.Location)
	}
	if w.symlink {
		return filepath.Join(dir, s.Name), nil
	}
	return filepath.Join(dir, desktopFileName(s.Name)), nil
}

func (w fileShortcutWriter) CreateShortcut(s Shortcut) error {
	if s.Target == "" {
		return errors.New("shortcut has no target")
	}
	link, err := w.path(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return err
	}

	if w.symlink {
		if err := os.Remove(link); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return os.Symlink(s.Target, link)
	}
	return os.WriteFile(link, []byte(desktopEntry(s)), 0o755)
}

func (w fileShortcutWriter) RemoveShortcut(s Shortcut) error {
	link, err := w.path(s)
	if err != nil {
		return err
	}
	if err := os.Remove(link); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func desktopFileName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-")) + ".desktop"
}

func desktopEntry(s Shortcut) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", s.Name)
	exec := fmt.Sprintf("%q", s.Target)
	if s.Args != "" {
		exec += " " + s.Args
	}
	fmt.Fprintf(&b, "Exec=%s\n", exec)
	if s.WorkingDir != "" {
		fmt.Fprintf(&b, "Path=%s\n", s.WorkingDir)
	}
	b.WriteString("Terminal=false\n")
	return b.String()
}
