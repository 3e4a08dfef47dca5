package fileops

import (
	"context"
	"errors"
	"io/fs"

	"github.com/duopane/duopane/internal/stats"
)

// Move relocates src to dst, attempting an atomic same-volume rename
// first. An I/O-level rename failure is treated as a cross-volume
// boundary and triggers the fallback: full recursive copy with overwrite,
// then best-effort deletion of the source. A failed source deletion is
// logged and discarded — the move has already logically succeeded.
func (e *Engine) Move(ctx context.Context, src, dst string) error {
	const op = "move"

	src, dst, err := e.validatePair(op, src, dst)
	if err != nil {
		e.emitFailed(op, src, err)
		return err
	}
	for _, p := range []string{src, dst} {
		if err := e.guard.Check(p, op); err != nil {
			e.emitFailed(op, p, err)
			return err
		}
	}

	e.emitStarted(op, src)

	total, err := e.move(ctx, op, src, dst)
	if err != nil {
		e.emitFailed(op, src, err)
		return err
	}
	e.emitCompleted(op, total)
	return nil
}

func (e *Engine) move(ctx context.Context, op, src, dst string) (int64, error) {
	if err := e.checkCancel(ctx, op, src); err != nil {
		return 0, err
	}

	entry, err := e.store.Stat(src)
	if err != nil {
		return 0, e.translate(op, src, err)
	}

	// Total is computed up front: after a successful rename the source
	// is gone.
	total := entry.Size
	if entry.IsDir {
		if total, err = e.treeSize(src); err != nil {
			return 0, e.translate(op, src, err)
		}
	}

	renameErr := e.store.Move(src, dst)
	if renameErr == nil {
		return total, nil
	}
	if errors.Is(renameErr, fs.ErrPermission) {
		return 0, e.translate(op, src, renameErr)
	}

	// Cross-volume fallback: copy everything, overwrite forced on.
	collector := stats.NewCollector()
	collector.SetBytesTotal(total)

	if entry.IsDir {
		err = e.copyTree(ctx, op, src, dst, true, collector)
	} else {
		err = e.copyFile(op, src, dst, entry.Size, true, collector)
	}
	if err != nil {
		return 0, err
	}

	// Deliberate asymmetry versus Copy: the data is at the destination,
	// so a source that refuses to die does not fail the move.
	if err := e.store.RemoveAll(src); err != nil {
		e.log.Warn("source removal after cross-volume move failed",
			"op", op, "path", src, "error", err)
	}
	return total, nil
}
