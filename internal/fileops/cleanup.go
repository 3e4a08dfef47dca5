package fileops

import (
	"context"
	"errors"
	"strings"

	"github.com/duopane/duopane/internal/storage"
)

// Cleanup removes orphaned temp artifacts (files carrying TempSuffix)
// under dir, returning the number removed. Individual removals that fail
// — the file may still be held open — are logged and skipped, never
// aborting the scan.
func (e *Engine) Cleanup(ctx context.Context, dir string, recursive bool) (int, error) {
	const op = "cleanup"

	p, err := e.validatePath(op, dir)
	if err != nil {
		e.emitFailed(op, dir, err)
		return 0, err
	}
	if err := e.guard.Check(p, op); err != nil {
		e.emitFailed(op, p, err)
		return 0, err
	}

	e.emitStarted(op, p)

	removed, bytes, err := e.cleanup(ctx, op, p, recursive)
	if err != nil {
		e.emitFailed(op, p, err)
		return removed, err
	}
	e.emitCompleted(op, bytes)
	return removed, nil
}

func (e *Engine) cleanup(ctx context.Context, op, dir string, recursive bool) (int, int64, error) {
	var artifacts []storage.Entry
	collect := func(en storage.Entry) error {
		if err := e.checkCancel(ctx, op, en.Path); err != nil {
			return err
		}
		if !en.IsDir && strings.HasSuffix(en.Name, TempSuffix) {
			artifacts = append(artifacts, en)
		}
		return nil
	}

	if recursive {
		if err := e.store.Walk(dir, collect); err != nil {
			if errors.Is(err, ErrCancelled) {
				return 0, 0, err
			}
			return 0, 0, e.translate(op, dir, err)
		}
	} else {
		entries, err := e.store.List(dir)
		if err != nil {
			return 0, 0, e.translate(op, dir, err)
		}
		for _, en := range entries {
			if err := collect(en); err != nil {
				return 0, 0, err
			}
		}
	}

	var removed int
	var bytes int64
	for _, en := range artifacts {
		if err := e.checkCancel(ctx, op, en.Path); err != nil {
			return removed, bytes, err
		}
		if err := e.store.Remove(en.Path); err != nil {
			e.log.Debug("temp artifact removal failed", "path", en.Path, "error", err)
			continue
		}
		removed++
		bytes += en.Size
	}
	return removed, bytes, nil
}
