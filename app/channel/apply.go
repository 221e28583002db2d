package channel

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/inconshreveable/go-update"
)

// Apply replaces the configured executable with a staged release. The new
// version takes effect on the next launch; Apply never exits the process.
func (h *Handle) Apply(ctx context.Context, rel DownloadedRelease) error {
	if err := h.checkOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrApplyFailed, err)
	}
	if h.cfg.Executable == "" {
		return fmt.Errorf("%w: executable path unknown", ErrApplyFailed)
	}

	opts := update.Options{TargetPath: h.cfg.Executable}
	if rel.SHA256 != "" {
		sum, err := hex.DecodeString(rel.SHA256)
		if err != nil {
			return fmt.Errorf("%w: decode checksum: %w", ErrApplyFailed, err)
		}
		opts.Checksum = sum
	}
	if err := opts.CheckPermissions(); err != nil {
		return fmt.Errorf("%w: %w", ErrApplyFailed, err)
	}

	staged, err := os.Open(rel.Path)
	if err != nil {
		return fmt.Errorf("%w: open staged release: %w", ErrApplyFailed, err)
	}
	defer staged.Close()

	slog.Info("applying update", "version", rel.Version, "target", h.cfg.Executable)
	if err := update.Apply(staged, opts); err != nil {
		if rerr := update.RollbackError(err); rerr != nil {
			slog.Error("failed to rollback from bad update", "error", rerr)
		}
		return fmt.Errorf("%w: %w", ErrApplyFailed, err)
	}

	slog.Info("update applied, restart required", "version", rel.Version)
	return nil
}
