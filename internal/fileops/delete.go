package fileops

import (
	"context"
	"errors"
	"io/fs"
)

// Delete removes a file or directory tree. Deleting a missing path is a
// success (idempotence). A non-empty directory requires recursive.
func (e *Engine) Delete(ctx context.Context, path string, recursive bool) error {
	const op = "delete"

	p, err := e.validatePath(op, path)
	if err != nil {
		e.emitFailed(op, path, err)
		return err
	}
	if err := e.guard.Check(p, op); err != nil {
		e.emitFailed(op, p, err)
		return err
	}

	e.emitStarted(op, p)

	total, err := e.delete(ctx, op, p, recursive)
	if err != nil {
		e.emitFailed(op, p, err)
		return err
	}
	e.emitCompleted(op, total)
	return nil
}

func (e *Engine) delete(ctx context.Context, op, path string, recursive bool) (int64, error) {
	if err := e.checkCancel(ctx, op, path); err != nil {
		return 0, err
	}

	entry, err := e.store.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, e.translate(op, path, err)
	}

	if !entry.IsDir {
		if err := e.store.Remove(path); err != nil {
			return 0, e.translate(op, path, err)
		}
		return entry.Size, nil
	}

	children, err := e.store.List(path)
	if err != nil {
		return 0, e.translate(op, path, err)
	}
	if len(children) > 0 && !recursive {
		return 0, opErr(op, path, ErrCollision)
	}

	total, err := e.treeSize(path)
	if err != nil {
		total = 0 // size is informational only
	}

	if err := e.store.RemoveAll(path); err != nil {
		return 0, e.translate(op, path, err)
	}
	return total, nil
}
