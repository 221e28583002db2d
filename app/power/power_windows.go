package power

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// Flags for SetThreadExecutionState
const (
	esAwaymodeRequired uint32 = 0x00000040
	esContinuous       uint32 = 0x80000000
	esSystemRequired   uint32 = 0x00000001
)

var (
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	setThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")
)

func platformSetAwake(awake bool) error {
	flags := esContinuous
	if awake {
		flags |= esSystemRequired | esAwaymodeRequired
	}

	previousState, _, callErr := setThreadExecutionState.Call(uintptr(flags))
	if previousState == 0 {
		if callErr != nil && !errors.Is(callErr, windows.Errno(0)) {
			return fmt.Errorf("SetThreadExecutionState syscall failed: %w", callErr)
		}
		return errors.New("SetThreadExecutionState failed: returned NULL state")
	}
	return nil
}
