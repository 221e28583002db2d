package tray

const (
	firstTimeTitle   = "Converter is running"
	firstTimeMessage = "Click the tray icon to get started"

	statusMenuTitle          = "Starting..."
	quitMenuTitle            = "Quit Converter"
	updateAvailableMenuTitle = "Version %s is ready to install"
	updateMenuTitle          = "Restart to update"
	diagLogsMenuTitle        = "View logs"
)
