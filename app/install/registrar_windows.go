//go:build windows

package install

import (
	"errors"
	"time"

	"golang.org/x/sys/windows/registry"
)

const uninstallKeyBase = `Software\Microsoft\Windows\CurrentVersion\Uninstall\`

// DefaultRegistrar writes per-user entries under the Windows uninstall key.
// Entries are keyed by the registration name, so appName is not needed.
func DefaultRegistrar(string) Registrar {
	return registryRegistrar{root: registry.CURRENT_USER}
}

type registryRegistrar struct {
	root registry.Key
}

func (r registryRegistrar) WriteUninstallEntry(reg Registration) error {
	if reg.Name == "" {
		return errors.New("registration has no name")
	}
	key, _, err := registry.CreateKey(r.root, uninstallKeyBase+reg.Name, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer key.Close()

	values := map[string]string{
		"DisplayName":     reg.Name,
		"DisplayVersion":  reg.DisplayVersion,
		"UninstallString": reg.UninstallCommand,
		"InstallLocation": reg.InstallLocation,
		"DisplayIcon":     reg.DisplayIcon,
		"Publisher":       reg.Publisher,
		"InstallDate":     time.Now().Format("20060102"),
	}
	for name, value := range values {
		if err := key.SetStringValue(name, value); err != nil {
			return err
		}
	}
	if err := key.SetDWordValue("NoModify", 1); err != nil {
		return err
	}
	return key.SetDWordValue("NoRepair", 1)
}

func (r registryRegistrar) RemoveUninstallEntry(name string) error {
	err := registry.DeleteKey(r.root, uninstallKeyBase+name)
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return err
	}
	return nil
}
