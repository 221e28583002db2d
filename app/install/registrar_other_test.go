//go:build !windows

package install

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistrarUsesAppName(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	r, ok := DefaultRegistrar("Converter").(FileRegistrar)
	require.True(t, ok)
	assert.Equal(t, "installs", filepath.Base(r.Dir))
	assert.Equal(t, "Converter", filepath.Base(filepath.Dir(r.Dir)))

	other := DefaultRegistrar("Viewer").(FileRegistrar)
	assert.NotEqual(t, r.Dir, other.Dir)
}
