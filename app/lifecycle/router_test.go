package lifecycle

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	goversion "github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReEnvision-AI/appshell/app/channel"
	"github.com/ReEnvision-AI/appshell/app/install"
	"github.com/ReEnvision-AI/appshell/app/store"
)

type fakeTarget struct {
	info channel.InstallInfo
}

func (f fakeTarget) Install() channel.InstallInfo { return f.info }

type fakeInstaller struct {
	calls int
	err   error
	panic bool
}

func (f *fakeInstaller) RegisterInstall(install.Target) error {
	f.calls++
	if f.panic {
		panic("registry exploded")
	}
	return f.err
}

// countingRouter records every handler invocation.
type countingRouter struct {
	installer *fakeInstaller
	updates   int
	uninstall int
	welcomes  int
	router    *Router
}

func newCountingRouter(t *testing.T) *countingRouter {
	c := &countingRouter{installer: &fakeInstaller{}}
	c.router = &Router{
		Installer: c.installer,
		Store:     store.New(filepath.Join(t.TempDir(), "store.json")),
		OnUpdate: func(context.Context, install.Target) error {
			c.updates++
			return nil
		},
		OnUninstall: func(context.Context, install.Target) error {
			c.uninstall++
			return nil
		},
		Welcome: func() error {
			c.welcomes++
			return nil
		},
	}
	return c
}

func (c *countingRouter) total() int {
	return c.installer.calls + c.updates + c.uninstall + c.welcomes
}

func TestRouteRunsExactlyOneHandler(t *testing.T) {
	v := goversion.Must(goversion.NewVersion("1.3.0"))
	target := fakeTarget{info: channel.InstallInfo{AppName: "Converter", Version: "1.2.0"}}

	tests := []struct {
		ev      Event
		handled EventKind
		count   func(c *countingRouter) int
		want    int
	}{
		{Event{Kind: EventInitialInstall, Version: v}, EventInitialInstall, func(c *countingRouter) int { return c.installer.calls }, 1},
		{Event{Kind: EventAppUpdate, Version: v}, EventAppUpdate, func(c *countingRouter) int { return c.updates }, 1},
		{Event{Kind: EventAppUninstall, Version: v}, EventAppUninstall, func(c *countingRouter) int { return c.uninstall }, 1},
		{Event{Kind: EventFirstRun}, EventFirstRun, func(c *countingRouter) int { return c.welcomes }, 1},
		{Event{Kind: EventNone}, EventNone, func(c *countingRouter) int { return 0 }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.ev.Kind.String(), func(t *testing.T) {
			c := newCountingRouter(t)
			handled := c.router.Route(context.Background(), tt.ev, target)
			assert.Equal(t, tt.handled, handled)
			assert.Equal(t, tt.want, tt.count(c))
			assert.Equal(t, tt.want, c.total())
		})
	}
}

func TestRouteInstallRecordsVersion(t *testing.T) {
	c := newCountingRouter(t)
	c.installer.err = errors.New("access denied")
	target := fakeTarget{info: channel.InstallInfo{AppName: "Converter", Version: "1.2.0"}}

	handled := c.router.Route(context.Background(), Event{Kind: EventInitialInstall, Version: goversion.Must(goversion.NewVersion("1.2.5"))}, target)
	assert.Equal(t, EventInitialInstall, handled)
	assert.Equal(t, "1.2.5", c.router.Store.GetInstalledVersion())

	handled = c.router.Route(context.Background(), Event{Kind: EventAppUpdate}, target)
	assert.Equal(t, EventAppUpdate, handled)
	assert.Equal(t, "1.2.0", c.router.Store.GetInstalledVersion())
}

func TestRouteRecoversPanics(t *testing.T) {
	c := newCountingRouter(t)
	c.installer.panic = true

	var handled EventKind
	assert.NotPanics(t, func() {
		handled = c.router.Route(context.Background(), Event{Kind: EventInitialInstall}, fakeTarget{})
	})
	assert.Equal(t, EventInitialInstall, handled)
	assert.Equal(t, 1, c.installer.calls)
}

func TestRouteHookErrorsAreSwallowed(t *testing.T) {
	r := &Router{
		OnUninstall: func(context.Context, install.Target) error {
			return errors.New("files in use")
		},
	}
	assert.Equal(t, EventAppUninstall, r.Route(context.Background(), Event{Kind: EventAppUninstall}, fakeTarget{}))
}

func TestRouteFirstRunOnlyOnce(t *testing.T) {
	c := newCountingRouter(t)
	c.router.Welcome = func() error {
		c.welcomes++
		return errors.New("no notification daemon")
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, EventFirstRun, c.router.Route(context.Background(), Event{Kind: EventFirstRun}, fakeTarget{}))
	}
	assert.Equal(t, 1, c.welcomes)
	require.True(t, c.router.Store.GetFirstTimeRun())
}

func TestRouteWithoutHooks(t *testing.T) {
	r := &Router{}
	assert.Equal(t, EventAppUpdate, r.Route(context.Background(), Event{Kind: EventAppUpdate}, fakeTarget{}))
	assert.Equal(t, EventAppUninstall, r.Route(context.Background(), Event{Kind: EventAppUninstall}, fakeTarget{}))
	assert.Equal(t, EventInitialInstall, r.Route(context.Background(), Event{Kind: EventInitialInstall}, fakeTarget{}))
}
