//go:build windows

package logging

import (
	"fmt"

	"github.com/gonutz/w32/v2"
)

func showOpenFailure(dir string) {
	w32.MessageBox(0, fmt.Sprintf("Could not open log directory automatically.\n\nPlease navigate to:\n%s", dir), "Error", w32.MB_OK|w32.MB_ICONERROR)
}
