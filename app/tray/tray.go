package tray

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"
	"github.com/ncruces/zenity"

	"github.com/ReEnvision-AI/appshell/app/tray/commontray"
)

type systemTray struct {
	callbacks commontray.Callbacks

	mu              sync.Mutex
	ready           bool
	status          *systray.MenuItem
	updateAvailable *systray.MenuItem
	update          *systray.MenuItem
	logs            *systray.MenuItem
	quit            *systray.MenuItem
	pendingVersion  string

	done     chan struct{}
	doneOnce sync.Once
}

// NewTray returns the system tray surface. Nothing is shown until Run.
func NewTray() (commontray.Window, error) {
	return &systemTray{
		callbacks: commontray.Callbacks{
			Quit:     make(chan struct{}, 1),
			Update:   make(chan struct{}, 1),
			ShowLogs: make(chan struct{}, 1),
		},
		done: make(chan struct{}),
	}, nil
}

func (t *systemTray) GetCallbacks() commontray.Callbacks {
	return t.callbacks
}

func (t *systemTray) Run(onReady func()) {
	systray.Run(func() {
		t.setup()
		go t.clickLoop(t.quit.ClickedCh, t.update.ClickedCh, t.logs.ClickedCh)
		onReady()
	}, t.onExit)
}

func (t *systemTray) onExit() {
	t.doneOnce.Do(func() { close(t.done) })
	slog.Debug("tray loop exited")
}

func (t *systemTray) setup() {
	systray.SetTitle(commontray.Title)
	systray.SetTooltip(commontray.Tooltip)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = systray.AddMenuItem(statusMenuTitle, "Current status")
	t.status.Disable()
	systray.AddSeparator()
	t.updateAvailable = systray.AddMenuItem("", "")
	t.updateAvailable.Disable()
	t.updateAvailable.Hide()
	t.update = systray.AddMenuItem(updateMenuTitle, "Restart to apply the downloaded update")
	t.update.Hide()
	t.logs = systray.AddMenuItem(diagLogsMenuTitle, "Open the log directory")
	systray.AddSeparator()
	t.quit = systray.AddMenuItem(quitMenuTitle, "Exit the application")
	t.ready = true

	if t.pendingVersion != "" {
		t.showUpdateLocked(t.pendingVersion)
	}
}

// clickLoop forwards menu clicks to the callbacks until the tray exits.
func (t *systemTray) clickLoop(quit, update, logs <-chan struct{}) {
	for {
		select {
		case <-quit:
			signal(t.callbacks.Quit)
		case <-update:
			signal(t.callbacks.Update)
		case <-logs:
			signal(t.callbacks.ShowLogs)
		case <-t.done:
			return
		}
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// UpdateAvailable reveals the restart entry. It may be called before the
// tray is ready, in which case the entry is shown as soon as it is.
func (t *systemTray) UpdateAvailable(ver string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		t.pendingVersion = ver
		return nil
	}
	t.showUpdateLocked(ver)
	return nil
}

func (t *systemTray) showUpdateLocked(ver string) {
	t.updateAvailable.SetTitle(fmt.Sprintf(updateAvailableMenuTitle, ver))
	t.updateAvailable.Show()
	t.update.Show()
	systray.SetTooltip(fmt.Sprintf("%s - %s", commontray.Tooltip, updateMenuTitle))
}

// ShowWelcome shows the one-time desktop notification for a new install.
// It does not need a running tray.
func ShowWelcome() error {
	return zenity.Notify(firstTimeMessage, zenity.Title(firstTimeTitle), zenity.InfoIcon)
}

func (t *systemTray) ChangeStatusText(text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		return fmt.Errorf("tray not ready")
	}
	t.status.SetTitle(text)
	return nil
}

func (t *systemTray) Quit() {
	systray.Quit()
}
