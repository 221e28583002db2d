package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ReEnvision-AI/appshell/app/channel"
	"github.com/ReEnvision-AI/appshell/app/power"
)

var ErrUpdatePanicked = errors.New("update cycle panicked")

// Session is the part of a release channel handle the update cycle uses.
type Session interface {
	CheckForUpdate(ctx context.Context) (channel.UpdateInfo, error)
	Download(ctx context.Context, info channel.UpdateInfo) (channel.DownloadedRelease, error)
	Apply(ctx context.Context, rel channel.DownloadedRelease) error
	Close() error
}

type OpenFunc func(ctx context.Context, cfg channel.Config) (Session, error)

// OpenChannel opens a release channel handle as a Session.
func OpenChannel(ctx context.Context, cfg channel.Config) (Session, error) {
	h, err := channel.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return h, nil
}

type Status int

const (
	NoUpdateAvailable Status = iota
	Updated
	Failed
)

func (s Status) String() string {
	switch s {
	case NoUpdateAvailable:
		return "NoUpdateAvailable"
	case Updated:
		return "Updated"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Outcome is the result of one update cycle. Version is set when Updated,
// Err when Failed.
type Outcome struct {
	Status  Status
	Version string
	Err     error
}

func failed(err error) Outcome {
	return Outcome{Status: Failed, Err: err}
}

// Updater runs the background update check. The zero value opens a real
// release channel and starts immediately.
type Updater struct {
	Open       OpenFunc
	StartDelay time.Duration
	// OnUpdated is called after an update has been applied.
	OnUpdated func(version string)
}

// RunUpdateCycle checks the channel once and applies a newer release if
// there is one. The session is closed on every path.
func (u *Updater) RunUpdateCycle(ctx context.Context, cfg channel.Config) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("update cycle panicked", "panic", p)
			out = failed(fmt.Errorf("%w: %v", ErrUpdatePanicked, p))
		}
	}()

	open := u.Open
	if open == nil {
		open = OpenChannel
	}

	s, err := open(ctx, cfg)
	if err != nil {
		return failed(err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Debug("failed to close release channel", "error", err)
		}
	}()

	info, err := s.CheckForUpdate(ctx)
	if err != nil {
		return failed(err)
	}
	if !info.Available() {
		return Outcome{Status: NoUpdateAvailable}
	}

	slog.Info("new update available", "version", info.Version())
	release := power.Hold("update " + info.Version())
	defer release()

	rel, err := s.Download(ctx, info)
	if err != nil {
		return failed(err)
	}
	if err := s.Apply(ctx, rel); err != nil {
		return failed(err)
	}
	return Outcome{Status: Updated, Version: rel.Version}
}

// Start runs one update cycle in the background and returns immediately.
// The returned channel yields the outcome and is then closed.
func (u *Updater) Start(ctx context.Context, cfg channel.Config) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)

		if u.StartDelay > 0 {
			// Don't blast an update message immediately after startup
			timer := time.NewTimer(u.StartDelay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				slog.Debug("update check cancelled before start")
				out <- failed(ctx.Err())
				return
			case <-timer.C:
			}
		}

		o := u.RunUpdateCycle(ctx, cfg)
		switch o.Status {
		case Updated:
			slog.Info("update applied, restart to finish", "version", o.Version)
			u.notify(o.Version)
		case NoUpdateAvailable:
			slog.Debug("current version is up to date")
		default:
			slog.Warn("update check failed", "error", o.Err)
		}
		out <- o
	}()
	return out
}

func (u *Updater) notify(version string) {
	if u.OnUpdated == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			slog.Error("update notification panicked", "panic", p)
		}
	}()
	u.OnUpdated(version)
}
