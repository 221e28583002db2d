// Package install performs the one-time OS integration of an installed
// build: the uninstall registration and the user-visible shortcuts.
package install

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/ReEnvision-AI/appshell/app/channel"
)

var (
	ErrRegistryWriteFailed = errors.New("uninstall registration failed")
	ErrShortcutWriteFailed = errors.New("shortcut write failed")
)

// Target is anything that can describe the local install, normally a
// *channel.Handle.
type Target interface {
	Install() channel.InstallInfo
}

// Location is a canonical place a shortcut is created.
type Location int

const (
	StartMenu Location = iota
	Desktop
)

func (l Location) String() string {
	switch l {
	case StartMenu:
		return "start-menu"
	case Desktop:
		return "desktop"
	default:
		return "unknown"
	}
}

// DefaultLocations mirrors what a fresh install creates.
var DefaultLocations = []Location{StartMenu, Desktop}

// Registration is the uninstaller entry written for an install.
type Registration struct {
	Name             string `json:"name"`
	DisplayVersion   string `json:"display_version"`
	UninstallCommand string `json:"uninstall_command"`
	InstallLocation  string `json:"install_location"`
	DisplayIcon      string `json:"display_icon,omitempty"`
	Publisher        string `json:"publisher,omitempty"`
}

// Shortcut points a user-visible link at the installed executable.
type Shortcut struct {
	Name       string
	Target     string
	Args       string
	WorkingDir string
	Location   Location
}

type Registrar interface {
	WriteUninstallEntry(reg Registration) error
	RemoveUninstallEntry(name string) error
}

type ShortcutWriter interface {
	CreateShortcut(s Shortcut) error
	RemoveShortcut(s Shortcut) error
}

// Actions performs install and uninstall integration. Every step is best
// effort: a failing step never prevents the remaining steps from running.
type Actions struct {
	Publisher    string
	ShortcutName string
	Locations    []Location
	Registrar    Registrar
	Shortcuts    ShortcutWriter
}

// New returns Actions for appName using the platform registrar and shortcut
// writer.
func New(appName, publisher string) *Actions {
	return &Actions{
		Publisher: publisher,
		Locations: DefaultLocations,
		Registrar: DefaultRegistrar(appName),
		Shortcuts: NewShortcutWriter(DefaultShortcutDirs()),
	}
}

// UninstallCommand is the command line the OS runs to remove an install.
func UninstallCommand(exe, version string) string {
	return fmt.Sprintf("\"%s\" --squirrel-uninstall %s", exe, version)
}

// RegisterInstall writes the uninstall entry and the shortcuts for t.
// Calling it again overwrites what a previous call wrote.
func (a *Actions) RegisterInstall(t Target) error {
	info := t.Install()
	var merr *multierror.Error

	reg := a.registration(info)
	if err := a.Registrar.WriteUninstallEntry(reg); err != nil {
		slog.Warn("failed to write uninstall entry", "app", info.AppName, "error", err)
		merr = multierror.Append(merr, fmt.Errorf("%w: %w", ErrRegistryWriteFailed, err))
	} else {
		slog.Info("wrote uninstall entry", "app", info.AppName, "version", info.Version)
	}

	for _, s := range a.shortcuts(info) {
		if err := a.Shortcuts.CreateShortcut(s); err != nil {
			slog.Warn("failed to create shortcut", "location", s.Location, "error", err)
			merr = multierror.Append(merr, fmt.Errorf("%w: %s: %w", ErrShortcutWriteFailed, s.Location, err))
			continue
		}
		slog.Info("created shortcut", "location", s.Location, "target", s.Target)
	}

	return merr.ErrorOrNil()
}

// RemoveInstall undoes RegisterInstall. Missing entries are not errors.
func (a *Actions) RemoveInstall(t Target) error {
	info := t.Install()
	var merr *multierror.Error

	for _, s := range a.shortcuts(info) {
		if err := a.Shortcuts.RemoveShortcut(s); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%w: %s: %w", ErrShortcutWriteFailed, s.Location, err))
		}
	}
	if err := a.Registrar.RemoveUninstallEntry(info.AppName); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("%w: %w", ErrRegistryWriteFailed, err))
	}

	if err := merr.ErrorOrNil(); err != nil {
		slog.Warn("uninstall cleanup incomplete", "app", info.AppName, "error", err)
		return err
	}
	slog.Info("removed install integration", "app", info.AppName)
	return nil
}

func (a *Actions) registration(info channel.InstallInfo) Registration {
	return Registration{
		Name:             info.AppName,
		DisplayVersion:   info.Version,
		UninstallCommand: UninstallCommand(info.Executable, info.Version),
		InstallLocation:  info.InstallDir,
		DisplayIcon:      info.Executable,
		Publisher:        a.Publisher,
	}
}

func (a *Actions) shortcuts(info channel.InstallInfo) []Shortcut {
	name := a.ShortcutName
	if name == "" {
		name = info.AppName
	}
	locations := a.Locations
	if locations == nil {
		locations = DefaultLocations
	}

	out := make([]Shortcut, 0, len(locations))
	for _, loc := range locations {
		out = append(out, Shortcut{
			Name:       name,
			Target:     info.Executable,
			WorkingDir: info.InstallDir,
			Location:   loc,
		})
	}
	return out
}
