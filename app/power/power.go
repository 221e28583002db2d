// Package power keeps the system awake while long running work is in
// progress.
package power

import (
	"log/slog"
	"runtime"
	"sync"
)

var (
	mu    sync.Mutex
	holds int

	setAwake = platformSetAwake

	stateOnce sync.Once
	stateReqs chan stateRequest
)

type stateRequest struct {
	awake bool
	done  chan error
}

// applyState runs setAwake on a single locked OS thread. The Windows
// execution state belongs to the thread that set it, so the flag must be
// cleared from the same thread.
func applyState(awake bool) error {
	stateOnce.Do(func() {
		stateReqs = make(chan stateRequest)
		go stateLoop()
	})
	req := stateRequest{awake: awake, done: make(chan error, 1)}
	stateReqs <- req
	return <-req.done
}

func stateLoop() {
	runtime.LockOSThread()
	for req := range stateReqs {
		req.done <- setAwake(req.awake)
	}
}

// Hold prevents system sleep until the returned release func is called.
// Holds nest; sleep is allowed again when the last one is released. Failures
// to change the power state are logged and otherwise ignored. Hold and
// release may be called from any goroutine.
func Hold(reason string) (release func()) {
	mu.Lock()
	defer mu.Unlock()

	holds++
	if holds == 1 {
		if err := applyState(true); err != nil {
			slog.Warn("Failed to prevent system sleep", "reason", reason, "error", err)
		} else {
			slog.Debug("System sleep prevention activated", "reason", reason)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { drop(reason) })
	}
}

func drop(reason string) {
	mu.Lock()
	defer mu.Unlock()

	holds--
	if holds > 0 {
		return
	}
	holds = 0
	if err := applyState(false); err != nil {
		slog.Warn("Failed to allow system sleep", "reason", reason, "error", err)
		return
	}
	slog.Debug("System sleep prevention deactivated", "reason", reason)
}
