package channel

import "errors"

var (
	// ErrInvalidConfig is returned when a Config cannot identify a release source.
	ErrInvalidConfig = errors.New("invalid release channel config")

	// ErrUnreachable indicates the release source could not be contacted.
	ErrUnreachable = errors.New("release source unreachable")

	// ErrNotFound indicates the release source has no valid manifest.
	ErrNotFound = errors.New("release manifest not found")

	ErrDownloadFailed   = errors.New("release download failed")
	ErrChecksumMismatch = errors.New("release checksum mismatch")
	ErrApplyFailed      = errors.New("release apply failed")

	// ErrClosed is returned by operations on a handle that has been released.
	ErrClosed = errors.New("install manager handle closed")
)
