package install

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReEnvision-AI/appshell/app/channel"
)

type fakeTarget struct {
	info channel.InstallInfo
}

func (f fakeTarget) Install() channel.InstallInfo { return f.info }

// flakyShortcuts fails the first failures calls, then records shortcuts.
type flakyShortcuts struct {
	mu       sync.Mutex
	failures int
	created  []Shortcut
	removed  []Shortcut
}

func (f *flakyShortcuts) CreateShortcut(s Shortcut) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	f.created = append(f.created, s)
	return nil
}

func (f *flakyShortcuts) RemoveShortcut(s Shortcut) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, s)
	return nil
}

type brokenRegistrar struct{}

func (brokenRegistrar) WriteUninstallEntry(Registration) error { return errors.New("access denied") }
func (brokenRegistrar) RemoveUninstallEntry(string) error      { return errors.New("access denied") }

func target(version string) fakeTarget {
	return fakeTarget{info: channel.InstallInfo{
		AppName:    "Converter",
		Version:    version,
		Executable: filepath.Join("opt", "converter", "converter.exe"),
		InstallDir: filepath.Join("opt", "converter"),
	}}
}

func TestRegisterInstallTwiceOverwrites(t *testing.T) {
	registrar := FileRegistrar{Dir: t.TempDir()}
	shortcuts := &flakyShortcuts{failures: 1}
	actions := &Actions{Publisher: "ReEnvision AI", Registrar: registrar, Shortcuts: shortcuts}

	err := actions.RegisterInstall(target("1.2.0"))
	require.ErrorIs(t, err, ErrShortcutWriteFailed)
	assert.NotErrorIs(t, err, ErrRegistryWriteFailed)

	// The registry step ran despite the shortcut failure.
	reg, err := registrar.ReadUninstallEntry("Converter")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", reg.DisplayVersion)

	require.NoError(t, actions.RegisterInstall(target("1.3.0")))

	reg, err = registrar.ReadUninstallEntry("Converter")
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", reg.DisplayVersion)
	assert.Equal(t, "ReEnvision AI", reg.Publisher)
	assert.Equal(t, UninstallCommand(target("1.3.0").info.Executable, "1.3.0"), reg.UninstallCommand)

	// one desktop shortcut from the first call, both from the second
	assert.Len(t, shortcuts.created, 3)
}

func TestRegisterInstallRegistryFailureStillCreatesShortcuts(t *testing.T) {
	shortcuts := &flakyShortcuts{}
	actions := &Actions{Registrar: brokenRegistrar{}, Shortcuts: shortcuts}

	err := actions.RegisterInstall(target("1.2.0"))
	require.ErrorIs(t, err, ErrRegistryWriteFailed)
	assert.NotErrorIs(t, err, ErrShortcutWriteFailed)

	require.Len(t, shortcuts.created, 2)
	assert.Equal(t, StartMenu, shortcuts.created[0].Location)
	assert.Equal(t, Desktop, shortcuts.created[1].Location)
	assert.Equal(t, "Converter", shortcuts.created[0].Name)
}

func TestRegisterInstallShortcutName(t *testing.T) {
	shortcuts := &flakyShortcuts{}
	actions := &Actions{
		ShortcutName: "Excel Converter",
		Locations:    []Location{Desktop},
		Registrar:    FileRegistrar{Dir: t.TempDir()},
		Shortcuts:    shortcuts,
	}

	require.NoError(t, actions.RegisterInstall(target("1.2.0")))
	require.Len(t, shortcuts.created, 1)
	assert.Equal(t, "Excel Converter", shortcuts.created[0].Name)
	assert.Equal(t, Desktop, shortcuts.created[0].Location)
}

func TestRemoveInstall(t *testing.T) {
	registrar := FileRegistrar{Dir: t.TempDir()}
	shortcuts := &flakyShortcuts{}
	actions := &Actions{Registrar: registrar, Shortcuts: shortcuts}

	require.NoError(t, actions.RegisterInstall(target("1.2.0")))
	require.NoError(t, actions.RemoveInstall(target("1.2.0")))

	_, err := registrar.ReadUninstallEntry("Converter")
	assert.Error(t, err)
	assert.Len(t, shortcuts.removed, 2)

	// Removing again is not an error.
	require.NoError(t, actions.RemoveInstall(target("1.2.0")))
}

func TestFileRegistrarRejectsEmptyName(t *testing.T) {
	err := FileRegistrar{Dir: t.TempDir()}.WriteUninstallEntry(Registration{})
	assert.Error(t, err)
}
