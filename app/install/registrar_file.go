package install

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileRegistrar stores uninstall entries as JSON documents in Dir. It is the
// registrar used where the OS has no uninstall registry.
type FileRegistrar struct {
	Dir string
}

func (r FileRegistrar) path(name string) string {
	return filepath.Join(r.Dir, name+".uninstall.json")
}

func (r FileRegistrar) WriteUninstallEntry(reg Registration) error {
	if reg.Name == "" {
		return errors.New("registration has no name")
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("create registry dir %s: %w", r.Dir, err)
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temporary file first, then rename for atomic operation
	target := r.path(reg.Name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (r FileRegistrar) RemoveUninstallEntry(name string) error {
	err := os.Remove(r.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ReadUninstallEntry returns a previously written entry.
func (r FileRegistrar) ReadUninstallEntry(name string) (Registration, error) {
	var reg Registration
	data, err := os.ReadFile(r.path(name))
	if err != nil {
		return reg, err
	}
	err = json.Unmarshal(data, &reg)
	return reg, err
}
