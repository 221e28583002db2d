package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		kind    EventKind
		version string
	}{
		{name: "no args", args: nil, kind: EventNone},
		{name: "install", args: []string{"--squirrel-install", "1.2.0"}, kind: EventInitialInstall, version: "1.2.0"},
		{name: "install with equals", args: []string{"--squirrel-install=1.2.0"}, kind: EventInitialInstall, version: "1.2.0"},
		{name: "updated", args: []string{"--squirrel-updated", "1.3.0"}, kind: EventAppUpdate, version: "1.3.0"},
		{name: "uninstall", args: []string{"--squirrel-uninstall", "1.3.0"}, kind: EventAppUninstall, version: "1.3.0"},
		{name: "first run", args: []string{"--squirrel-firstrun"}, kind: EventFirstRun},
		{name: "obsolete is a normal run", args: []string{"--squirrel-obsolete", "1.1.0"}, kind: EventNone},
		{name: "unknown flags ignored", args: []string{"--verbose", "--squirrel-updated", "2.0.0", "file.txt"}, kind: EventAppUpdate, version: "2.0.0"},
		{name: "positional only", args: []string{"document.cvt"}, kind: EventNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ev.Kind)
			if tt.version == "" {
				assert.Nil(t, ev.Version)
			} else {
				require.NotNil(t, ev.Version)
				assert.Equal(t, tt.version, ev.Version.String())
			}
		})
	}
}

func TestParseEventBadVersion(t *testing.T) {
	ev, err := ParseEvent([]string{"--squirrel-install", "not-a-version"})
	assert.Error(t, err)
	assert.Equal(t, EventInitialInstall, ev.Kind)
	assert.Nil(t, ev.Version)
}

func TestParseEventMissingValue(t *testing.T) {
	_, err := ParseEvent([]string{"--squirrel-install"})
	assert.Error(t, err)
}

func TestEventKindExits(t *testing.T) {
	assert.True(t, EventInitialInstall.Exits())
	assert.True(t, EventAppUpdate.Exits())
	assert.True(t, EventAppUninstall.Exits())
	assert.False(t, EventFirstRun.Exits())
	assert.False(t, EventNone.Exits())
	assert.Equal(t, "AppUpdate", EventAppUpdate.String())
}
