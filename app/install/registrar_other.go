//go:build !windows

package install

import (
	"os"
	"path/filepath"
)

// DefaultRegistrar keeps uninstall entries under the user config dir of
// appName.
func DefaultRegistrar(appName string) Registrar {
	return FileRegistrar{Dir: registrarDir(appName)}
}

func registrarDir(appName string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appName, "installs")
}
