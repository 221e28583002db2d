package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "config.json")

	s := New(path)
	id := s.GetID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.False(t, s.GetFirstTimeRun())

	s.SetFirstTimeRun(true)
	s.SetInstalledVersion("1.2.0")

	reloaded := New(path)
	assert.Equal(t, id, reloaded.GetID())
	assert.True(t, reloaded.GetFirstTimeRun())
	assert.Equal(t, "1.2.0", reloaded.GetInstalledVersion())
}

func TestStoreRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := New(path)
	id := s.GetID()
	assert.NotEmpty(t, id)
	assert.False(t, s.GetFirstTimeRun())

	assert.Equal(t, id, New(path).GetID())
}
