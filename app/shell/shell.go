// Package shell is the minimal main window of the application: it reacts to
// tray menu callbacks until the user quits.
package shell

import (
	"fmt"
	"log/slog"

	"github.com/ReEnvision-AI/appshell/app/lifecycle"
	"github.com/ReEnvision-AI/appshell/app/tray/commontray"
	"github.com/ReEnvision-AI/appshell/version"
)

var (
	relaunch = lifecycle.Relaunch
	showLogs = lifecycle.ShowLogs
)

// Main runs the callback loop for w and returns after the tray was told to
// quit.
func Main(w commontray.Window) {
	if err := w.ChangeStatusText(fmt.Sprintf("Version %s", version.Version)); err != nil {
		slog.Debug("failed to set status text", "error", err)
	}

	callbacks := w.GetCallbacks()
	slog.Debug("starting callback loop")
	for {
		select {
		case <-callbacks.Quit:
			slog.Debug("quit called")
			w.Quit()
			return
		case <-callbacks.ShowLogs:
			showLogs()
		case <-callbacks.Update:
			if err := relaunch(); err != nil {
				slog.Warn(fmt.Sprintf("upgrade attempt failed: %s", err))
				continue
			}
			slog.Info("restarting to finish update")
			w.Quit()
			return
		}
	}
}
