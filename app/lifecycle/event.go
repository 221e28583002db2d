package lifecycle

import (
	"fmt"
	"io"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/pflag"
)

// Host lifecycle flags. The installer runs the executable with one of these
// and expects it to exit promptly.
const (
	flagInstall   = "squirrel-install"
	flagUpdated   = "squirrel-updated"
	flagUninstall = "squirrel-uninstall"
	flagObsolete  = "squirrel-obsolete"
	flagFirstRun  = "squirrel-firstrun"
)

type EventKind int

const (
	EventNone EventKind = iota
	EventInitialInstall
	EventAppUpdate
	EventAppUninstall
	EventFirstRun
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "None"
	case EventInitialInstall:
		return "InitialInstall"
	case EventAppUpdate:
		return "AppUpdate"
	case EventAppUninstall:
		return "AppUninstall"
	case EventFirstRun:
		return "FirstRun"
	default:
		return "Unknown"
	}
}

// Exits reports whether the process must exit after handling the event
// instead of starting the UI.
func (k EventKind) Exits() bool {
	switch k {
	case EventInitialInstall, EventAppUpdate, EventAppUninstall:
		return true
	default:
		return false
	}
}

// Event is the lifecycle signal the process was launched with. Version is
// set for install, update and uninstall.
type Event struct {
	Kind    EventKind
	Version *goversion.Version
}

func (e Event) String() string {
	if e.Version == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.Version)
}

// ParseEvent derives the lifecycle event from the process arguments,
// excluding the program name. Unknown flags and positional arguments are
// ignored. If a versioned flag carries an unparsable version, the event kind
// is still returned together with the error.
func ParseEvent(args []string) (Event, error) {
	fs := pflag.NewFlagSet("lifecycle", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)

	install := fs.String(flagInstall, "", "")
	updated := fs.String(flagUpdated, "", "")
	uninstall := fs.String(flagUninstall, "", "")
	fs.String(flagObsolete, "", "")
	firstRun := fs.Bool(flagFirstRun, false, "")

	if err := fs.Parse(args); err != nil {
		return Event{}, fmt.Errorf("invalid lifecycle arguments: %w", err)
	}

	var (
		kind EventKind
		raw  string
	)
	switch {
	case fs.Changed(flagUninstall):
		kind, raw = EventAppUninstall, *uninstall
	case fs.Changed(flagInstall):
		kind, raw = EventInitialInstall, *install
	case fs.Changed(flagUpdated):
		kind, raw = EventAppUpdate, *updated
	case *firstRun:
		return Event{Kind: EventFirstRun}, nil
	default:
		return Event{Kind: EventNone}, nil
	}

	v, err := goversion.NewVersion(raw)
	if err != nil {
		return Event{Kind: kind}, fmt.Errorf("invalid version for %s: %w", kind, err)
	}
	return Event{Kind: kind, Version: v}, nil
}
