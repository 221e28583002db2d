package lifecycle

import (
	"context"
	"log/slog"

	"github.com/ReEnvision-AI/appshell/app/install"
	"github.com/ReEnvision-AI/appshell/app/store"
	"github.com/ReEnvision-AI/appshell/app/tray"
)

// Installer performs the one-time integration of a fresh install.
type Installer interface {
	RegisterInstall(t install.Target) error
}

// Hook runs for update and uninstall events.
type Hook func(ctx context.Context, t install.Target) error

// Router dispatches a lifecycle event to exactly one handler. Handler
// failures are logged and never reach the host.
type Router struct {
	Installer   Installer
	Store       *store.Store
	OnUpdate    Hook
	OnUninstall Hook
	// Welcome shows the first run notice. Defaults to tray.ShowWelcome.
	Welcome func() error
}

// Route runs the handler for ev and returns the kind it handled, EventNone if
// nothing ran.
func (r *Router) Route(ctx context.Context, ev Event, t install.Target) (handled EventKind) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("lifecycle handler panicked", "event", ev, "panic", p)
		}
	}()

	switch ev.Kind {
	case EventInitialInstall:
		handled = EventInitialInstall
		r.onInitialInstall(ev, t)
	case EventAppUpdate:
		handled = EventAppUpdate
		r.runHook(ctx, ev, t, r.OnUpdate)
		r.recordVersion(ev, t)
	case EventAppUninstall:
		handled = EventAppUninstall
		r.runHook(ctx, ev, t, r.OnUninstall)
	case EventFirstRun:
		handled = EventFirstRun
		r.onFirstRun()
	case EventNone:
		handled = EventNone
	default:
		slog.Warn("unknown lifecycle event", "event", ev)
		handled = EventNone
	}
	return handled
}

func (r *Router) onInitialInstall(ev Event, t install.Target) {
	slog.Info("handling initial install", "event", ev)
	if r.Installer == nil {
		slog.Warn("no installer configured, skipping install integration")
	} else if err := r.Installer.RegisterInstall(t); err != nil {
		slog.Error("install integration incomplete", "error", err)
	}
	r.recordVersion(ev, t)
}

func (r *Router) runHook(ctx context.Context, ev Event, t install.Target, hook Hook) {
	if hook == nil {
		slog.Debug("no hook for lifecycle event", "event", ev)
		return
	}
	slog.Info("running lifecycle hook", "event", ev)
	if err := hook(ctx, t); err != nil {
		slog.Error("lifecycle hook failed", "event", ev, "error", err)
	}
}

func (r *Router) onFirstRun() {
	if r.Store != nil && r.Store.GetFirstTimeRun() {
		slog.Debug("first run already handled")
		return
	}

	welcome := r.Welcome
	if welcome == nil {
		welcome = tray.ShowWelcome
	}
	if err := welcome(); err != nil {
		slog.Warn("failed to display first use notification", "error", err)
	}

	if r.Store != nil {
		r.Store.SetFirstTimeRun(true)
	}
}

func (r *Router) recordVersion(ev Event, t install.Target) {
	if r.Store == nil {
		return
	}
	v := t.Install().Version
	if ev.Version != nil {
		v = ev.Version.String()
	}
	r.Store.SetInstalledVersion(v)
}
