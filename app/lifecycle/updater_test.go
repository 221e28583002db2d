package lifecycle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReEnvision-AI/appshell/app/channel"
)

type fakeSession struct {
	info        channel.UpdateInfo
	checkErr    error
	downloadErr error
	applyErr    error
	panicOn     string

	applied atomic.Int32
	closes  *atomic.Int32
}

func (s *fakeSession) CheckForUpdate(context.Context) (channel.UpdateInfo, error) {
	if s.panicOn == "check" {
		panic("manifest parser bug")
	}
	return s.info, s.checkErr
}

func (s *fakeSession) Download(_ context.Context, info channel.UpdateInfo) (channel.DownloadedRelease, error) {
	if s.downloadErr != nil {
		return channel.DownloadedRelease{}, s.downloadErr
	}
	return channel.DownloadedRelease{Version: info.Version(), Path: "staged"}, nil
}

func (s *fakeSession) Apply(context.Context, channel.DownloadedRelease) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	s.applied.Add(1)
	return nil
}

func (s *fakeSession) Close() error {
	s.closes.Add(1)
	return nil
}

// fakeChannel counts opened and closed sessions.
type fakeChannel struct {
	opens   atomic.Int32
	closes  atomic.Int32
	openErr error
	session fakeSession
	block   chan struct{}
}

func (f *fakeChannel) open(ctx context.Context, _ channel.Config) (Session, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opens.Add(1)
	s := &fakeSession{
		info:        f.session.info,
		checkErr:    f.session.checkErr,
		downloadErr: f.session.downloadErr,
		applyErr:    f.session.applyErr,
		panicOn:     f.session.panicOn,
		closes:      &f.closes,
	}
	return s, nil
}

var newRelease = channel.UpdateInfo{Release: &channel.Release{Version: "1.3.0", URL: "converter-1.3.0.bin"}}

func TestRunUpdateCycle(t *testing.T) {
	tests := []struct {
		name   string
		feed   *fakeChannel
		status Status
		errIs  error
	}{
		{name: "unreachable", feed: &fakeChannel{openErr: channel.ErrUnreachable}, status: Failed, errIs: channel.ErrUnreachable},
		{name: "not found", feed: &fakeChannel{openErr: channel.ErrNotFound}, status: Failed, errIs: channel.ErrNotFound},
		{name: "up to date", feed: &fakeChannel{}, status: NoUpdateAvailable},
		{name: "check fails", feed: &fakeChannel{session: fakeSession{checkErr: channel.ErrClosed}}, status: Failed, errIs: channel.ErrClosed},
		{name: "download fails", feed: &fakeChannel{session: fakeSession{info: newRelease, downloadErr: channel.ErrDownloadFailed}}, status: Failed, errIs: channel.ErrDownloadFailed},
		{name: "apply fails", feed: &fakeChannel{session: fakeSession{info: newRelease, applyErr: channel.ErrApplyFailed}}, status: Failed, errIs: channel.ErrApplyFailed},
		{name: "panic", feed: &fakeChannel{session: fakeSession{panicOn: "check"}}, status: Failed, errIs: ErrUpdatePanicked},
		{name: "updated", feed: &fakeChannel{session: fakeSession{info: newRelease}}, status: Updated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := tt.feed
			u := &Updater{Open: fc.open}

			out := u.RunUpdateCycle(context.Background(), channel.Config{Source: "https://updates.example.invalid"})
			assert.Equal(t, tt.status, out.Status)
			if tt.errIs != nil {
				assert.ErrorIs(t, out.Err, tt.errIs)
			} else {
				assert.NoError(t, out.Err)
			}
			if tt.status == Updated {
				assert.Equal(t, "1.3.0", out.Version)
			}
			assert.Equal(t, fc.opens.Load(), fc.closes.Load())
		})
	}
}

func TestStartDoesNotBlock(t *testing.T) {
	fc := &fakeChannel{block: make(chan struct{}), openErr: channel.ErrUnreachable}
	u := &Updater{Open: fc.open}

	returned := make(chan (<-chan Outcome))
	go func() {
		returned <- u.Start(context.Background(), channel.Config{Source: "x"})
	}()

	var results <-chan Outcome
	select {
	case results = <-returned:
	case <-time.After(time.Second):
		t.Fatal("Start blocked on the update cycle")
	}

	close(fc.block)
	out, ok := <-results
	require.True(t, ok)
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err, channel.ErrUnreachable)

	_, ok = <-results
	assert.False(t, ok, "outcome channel should be closed")
}

func TestStartNotifiesOnUpdate(t *testing.T) {
	fc := &fakeChannel{session: fakeSession{info: newRelease}}
	var notified atomic.Value
	u := &Updater{
		Open:      fc.open,
		OnUpdated: func(v string) { notified.Store(v) },
	}

	out := <-u.Start(context.Background(), channel.Config{Source: "x"})
	assert.Equal(t, Updated, out.Status)
	assert.Equal(t, "1.3.0", notified.Load())
}

func TestStartCancelledDuringDelay(t *testing.T) {
	fc := &fakeChannel{}
	u := &Updater{Open: fc.open, StartDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	results := u.Start(ctx, channel.Config{Source: "x"})
	cancel()

	out := <-results
	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Zero(t, fc.opens.Load())
}

func TestRunUpdateCycleRealChannel(t *testing.T) {
	payload := []byte("new build")
	sum := sha256.Sum256(payload)

	mux := http.NewServeMux()
	mux.HandleFunc("/feed/releases.yaml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "releases:\n  - version: 1.3.0\n    url: converter-1.3.0.bin\n    sha256: %s\n", hex.EncodeToString(sum[:]))
	})
	mux.HandleFunc("/feed/converter-1.3.0.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	exe := filepath.Join(t.TempDir(), "converter.exe")
	require.NoError(t, os.WriteFile(exe, []byte("old build"), 0o755))
	cfg := channel.Config{
		Source:         srv.URL + "/feed",
		AppName:        "converter",
		CurrentVersion: "1.2.0",
		Executable:     exe,
		StageDir:       filepath.Join(t.TempDir(), "updates"),
	}

	before := channel.LiveHandles()
	out := (&Updater{}).RunUpdateCycle(context.Background(), cfg)
	require.NoError(t, out.Err)
	assert.Equal(t, Updated, out.Status)
	assert.Equal(t, "1.3.0", out.Version)
	assert.Equal(t, before, channel.LiveHandles())

	data, err := os.ReadFile(exe)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	// The applied build is now current.
	cfg.CurrentVersion = "1.3.0"
	out = (&Updater{}).RunUpdateCycle(context.Background(), cfg)
	assert.Equal(t, NoUpdateAvailable, out.Status)
	assert.Equal(t, before, channel.LiveHandles())
}

func TestRunUpdateCycleUnreachableReleasesNothing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	before := channel.LiveHandles()
	out := (&Updater{}).RunUpdateCycle(context.Background(), channel.Config{Source: srv.URL, CurrentVersion: "1.0.0"})
	assert.Equal(t, Failed, out.Status)
	assert.True(t, errors.Is(out.Err, channel.ErrUnreachable))
	assert.Equal(t, before, channel.LiveHandles())
}
