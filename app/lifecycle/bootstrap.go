package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/ReEnvision-AI/appshell/app/channel"
	"github.com/ReEnvision-AI/appshell/app/install"
	"github.com/ReEnvision-AI/appshell/app/tray/commontray"
)

var ErrNoEntryPoint = errors.New("no main entry point")

type State int32

const (
	StateConstructed State = iota
	StateAwaitingActivation
	StateStarted
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "Constructed"
	case StateAwaitingActivation:
		return "AwaitingActivation"
	case StateStarted:
		return "Started"
	default:
		return "Unknown"
	}
}

// Mode tells the caller of Start what to do with the process.
type Mode int

const (
	ModeRun Mode = iota
	ModeExit
)

func (m Mode) String() string {
	if m == ModeExit {
		return "Exit"
	}
	return "Run"
}

// MainEntryPoint receives the main window once the application is activated.
type MainEntryPoint func(w commontray.Window)

type Options struct {
	// Args are the process arguments without the program name.
	Args    []string
	Channel channel.Config
	Entry   MainEntryPoint
	Router  *Router
	// Updater runs after activation. Nil disables the background check.
	Updater *Updater
}

// Bootstrap decides once per process how the launch is handled and hands the
// main window to the entry point on the first activation.
type Bootstrap struct {
	opts Options

	state     atomic.Int32
	started   atomic.Bool
	activated atomic.Bool

	mu      sync.Mutex
	ctx     context.Context
	event   Event
	updates <-chan Outcome
}

func New(opts Options) *Bootstrap {
	if opts.Router == nil {
		opts.Router = &Router{}
	}
	return &Bootstrap{opts: opts}
}

func (b *Bootstrap) State() State {
	return State(b.state.Load())
}

// Event returns the lifecycle event found by Start.
func (b *Bootstrap) Event() Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.event
}

// Start handles the lifecycle event the process was launched with. Install,
// update and uninstall are handled here and ModeExit is returned; they never
// fail. A first run is handled before startup continues. An error means the
// shell cannot run.
func (b *Bootstrap) Start(ctx context.Context) (Mode, error) {
	if !b.started.CompareAndSwap(false, true) {
		return ModeExit, fmt.Errorf("bootstrap already started (%s)", b.State())
	}
	b.activated.Store(false)

	ev, err := ParseEvent(b.opts.Args)
	if err != nil {
		slog.Warn("failed to parse lifecycle event", "event", ev, "error", err)
	}

	b.mu.Lock()
	b.ctx = ctx
	b.event = ev
	b.mu.Unlock()

	if ev.Kind.Exits() {
		b.route(ctx, ev)
		return ModeExit, nil
	}

	if b.opts.Entry == nil {
		return ModeExit, ErrNoEntryPoint
	}
	if err := b.opts.Channel.Validate(); err != nil {
		return ModeExit, err
	}
	if ev.Kind == EventFirstRun {
		b.route(ctx, ev)
	}

	b.state.Store(int32(StateAwaitingActivation))
	slog.Debug("awaiting activation", "event", ev)
	return ModeRun, nil
}

func (b *Bootstrap) route(ctx context.Context, ev Event) {
	var target install.Target = configTarget(b.opts.Channel)
	h, err := channel.OpenLocal(b.opts.Channel)
	if err != nil {
		slog.Error("failed to open install handle, using configured install info", "event", ev, "error", err)
	} else {
		defer h.Close()
		target = h
	}

	handled := b.opts.Router.Route(ctx, ev, target)
	slog.Info("lifecycle event handled", "event", ev, "handler", handled)
}

// configTarget describes the install from configuration alone.
type configTarget channel.Config

func (c configTarget) Install() channel.InstallInfo {
	info := channel.InstallInfo{
		AppName:    c.AppName,
		Version:    c.CurrentVersion,
		Executable: c.Executable,
		InstallID:  c.InstallID,
	}
	if info.Executable == "" {
		if exe, err := os.Executable(); err == nil {
			info.Executable = exe
		}
	}
	if info.Executable != "" {
		info.InstallDir = filepath.Dir(info.Executable)
	}
	return info
}

// Activated starts the application on its first call. Later calls, and calls
// before Start returned ModeRun, do nothing.
func (b *Bootstrap) Activated(w commontray.Window) {
	if b.State() != StateAwaitingActivation {
		slog.Debug("ignoring activation", "state", b.State())
		return
	}
	if !b.activated.CompareAndSwap(false, true) {
		slog.Debug("ignoring repeated activation")
		return
	}
	b.state.Store(int32(StateStarted))

	if b.opts.Updater != nil {
		u := *b.opts.Updater
		if u.OnUpdated == nil {
			u.OnUpdated = func(version string) {
				if err := w.UpdateAvailable(version); err != nil {
					slog.Warn("failed to register update available with tray", "error", err)
				}
			}
		}
		b.mu.Lock()
		b.updates = u.Start(b.ctx, b.opts.Channel)
		b.mu.Unlock()
	}

	b.opts.Entry(w)
}

// Updates returns the background update result, or nil before activation or
// when no updater is configured.
func (b *Bootstrap) Updates() <-chan Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updates
}
