package commontray

var (
	Title   = "Converter"
	Tooltip = "Converter"
)

type Callbacks struct {
	Quit     chan struct{}
	Update   chan struct{}
	ShowLogs chan struct{}
}

// Window is the primary UI surface handed to the application entry point.
type Window interface {
	GetCallbacks() Callbacks
	// Run blocks on the UI loop. onReady is called once the surface is
	// visible and may be called from a goroutine other than the caller's.
	Run(onReady func())
	UpdateAvailable(ver string) error
	ChangeStatusText(text string) error
	Quit()
}
