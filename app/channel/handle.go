package channel

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	goversion "github.com/hashicorp/go-version"
)

var liveHandles atomic.Int64

// LiveHandles reports how many handles have been opened and not yet closed.
func LiveHandles() int64 {
	return liveHandles.Load()
}

// InstallInfo describes the local installation a handle operates on.
type InstallInfo struct {
	AppName    string
	Version    string
	Executable string
	InstallDir string
	InstallID  string
}

// UpdateInfo is the result of CheckForUpdate. A nil Release means the
// installed version is current.
type UpdateInfo struct {
	Release *Release
}

// Available reports whether a newer release was found.
func (u UpdateInfo) Available() bool {
	return u.Release != nil
}

// Version returns the version of the available release, or "".
func (u UpdateInfo) Version() string {
	if u.Release == nil {
		return ""
	}
	return u.Release.Version
}

// Handle is a session against a release channel and the local install
// metadata. It is owned by the operation that opened it and must be closed
// on every exit path.
type Handle struct {
	cfg     Config
	current *goversion.Version

	mu       sync.Mutex
	manifest *Manifest
	loc      location
	closed   bool
}

// Open resolves the configured release source and returns a handle to it.
func Open(ctx context.Context, cfg Config) (*Handle, error) {
	h, err := newHandle(cfg)
	if err != nil {
		return nil, err
	}
	if err := h.Refresh(ctx); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

// OpenLocal returns a handle over the local install metadata only. The
// manifest is resolved lazily on the first CheckForUpdate, so lifecycle hooks
// can use it without network access.
func OpenLocal(cfg Config) (*Handle, error) {
	return newHandle(cfg)
}

func newHandle(cfg Config) (*Handle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	current, err := goversion.NewVersion(cfg.CurrentVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	liveHandles.Add(1)
	return &Handle{cfg: cfg, current: current}, nil
}

// Install returns the local install metadata.
func (h *Handle) Install() InstallInfo {
	info := InstallInfo{
		AppName:    h.cfg.AppName,
		Version:    h.current.String(),
		Executable: h.cfg.Executable,
		InstallID:  h.cfg.InstallID,
	}
	if h.cfg.Executable != "" {
		info.InstallDir = filepath.Dir(h.cfg.Executable)
	}
	return info
}

// Refresh re-resolves the manifest from the source.
func (h *Handle) Refresh(ctx context.Context) error {
	if err := h.checkOpen(); err != nil {
		return err
	}
	m, loc, err := resolveManifest(ctx, h.cfg)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.manifest, h.loc = m, loc
	h.mu.Unlock()
	return nil
}

// CheckForUpdate compares the installed version against the newest release
// published for this platform.
func (h *Handle) CheckForUpdate(ctx context.Context) (UpdateInfo, error) {
	if err := h.checkOpen(); err != nil {
		return UpdateInfo{}, err
	}

	h.mu.Lock()
	m := h.manifest
	h.mu.Unlock()
	if m == nil {
		if err := h.Refresh(ctx); err != nil {
			return UpdateInfo{}, err
		}
		h.mu.Lock()
		m = h.manifest
		h.mu.Unlock()
	}

	latest, latestVer := m.Latest(runtime.GOOS, runtime.GOARCH)
	if latest == nil {
		slog.Debug("no release published for platform", "os", runtime.GOOS, "arch", runtime.GOARCH)
		return UpdateInfo{}, nil
	}
	if h.current.GreaterThanOrEqual(latestVer) {
		slog.Debug("current version is up to date", "current", h.current.String(), "latest", latestVer.String())
		return UpdateInfo{}, nil
	}

	rel := *latest
	slog.Info("new release available", "current", h.current.String(), "latest", rel.Version)
	return UpdateInfo{Release: &rel}, nil
}

// Close releases the handle. It is safe to call more than once.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	liveHandles.Add(-1)
	return nil
}

func (h *Handle) checkOpen() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	return nil
}

func (h *Handle) location() location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loc
}
