//go:build windows

package install

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// DefaultShortcutDirs returns the per-user Start Menu programs folder and desktop.
func DefaultShortcutDirs() ShortcutDirs {
	return ShortcutDirs{
		StartMenu: filepath.Join(os.Getenv("APPDATA"), "Microsoft", "Windows", "Start Menu", "Programs"),
		Desktop:   filepath.Join(os.Getenv("USERPROFILE"), "Desktop"),
	}
}

// NewShortcutWriter creates .lnk files through the WScript.Shell COM object.
func NewShortcutWriter(dirs ShortcutDirs) ShortcutWriter {
	return lnkWriter{dirs: dirs}
}

type lnkWriter struct {
	dirs ShortcutDirs
}

func (w lnkWriter) path(s Shortcut) (string, error) {
	dir := w.dirs.For(s.Location)
	if dir == "" {
		return "", fmt.Errorf("no directory for %s shortcuts", s.Location)
	}
	return filepath.Join(dir, s.Name+".lnk"), nil
}

func (w lnkWriter) CreateShortcut(s Shortcut) error {
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

	// COM objects are bound to the thread that initialised them.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	release, err := comInitResult(ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED|ole.COINIT_SPEED_OVER_MEMORY))
	if err != nil {
		return err
	}
	if release {
		defer ole.CoUninitialize()
	}

	unknown, err := oleutil.CreateObject("WScript.Shell")
	if err != nil {
		return fmt.Errorf("create WScript.Shell: %w", err)
	}
	defer unknown.Release()

	shell, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("query WScript.Shell: %w", err)
	}
	defer shell.Release()

	created, err := oleutil.CallMethod(shell, "CreateShortcut", link)
	if err != nil {
		return fmt.Errorf("create shortcut %s: %w", link, err)
	}
	shortcut := created.ToIDispatch()
	defer shortcut.Release()

	props := map[string]string{
		"TargetPath":       s.Target,
		"Arguments":        s.Args,
		"WorkingDirectory": s.WorkingDir,
		"IconLocation":     s.Target + ",0",
	}
	for name, value := range props {
		if _, err := oleutil.PutProperty(shortcut, name, value); err != nil {
			return fmt.Errorf("set shortcut %s: %w", name, err)
		}
	}

	if _, err := oleutil.CallMethod(shortcut, "Save"); err != nil {
		return fmt.Errorf("save shortcut %s: %w", link, err)
	}
	return nil
}

func (w lnkWriter) RemoveShortcut(s Shortcut) error {
	link, err := w.path(s)
	if err != nil {
		return err
	}
	if err := os.Remove(link); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
