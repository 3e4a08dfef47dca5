package fileops

import (
	"context"
	"path/filepath"
	"strings"
)

// Rename gives the node at path a new name within its directory. The
// storage rename relocates a directory's whole subtree as one unit.
func (e *Engine) Rename(ctx context.Context, path, newName string) error {
	const op = "rename"

	p, err := e.validatePath(op, path)
	if err != nil {
		e.emitFailed(op, path, err)
		return err
	}
	if err := validateName(op, newName, e.guard.Platform().InvalidChars); err != nil {
		e.emitFailed(op, p, err)
		return err
	}

	dst := filepath.Join(filepath.Dir(p), newName)
	if e.samePath(p, dst) {
		err := opErr(op, p, ErrInvalidArgument)
		e.emitFailed(op, p, err)
		return err
	}
	for _, target := range []string{p, dst} {
		if err := e.guard.Check(target, op); err != nil {
			e.emitFailed(op, target, err)
			return err
		}
	}

	e.emitStarted(op, p)

	total, err := e.rename(ctx, op, p, dst)
	if err != nil {
		e.emitFailed(op, p, err)
		return err
	}
	e.emitCompleted(op, total)
	return nil
}

func (e *Engine) rename(ctx context.Context, op, src, dst string) (int64, error) {
	if err := e.checkCancel(ctx, op, src); err != nil {
		return 0, err
	}

	entry, err := e.store.Stat(src)
	if err != nil {
		return 0, e.translate(op, src, err)
	}
	if e.store.Exists(dst) {
		return 0, opErr(op, dst, ErrCollision)
	}

	total := entry.Size
	if entry.IsDir {
		if total, err = e.treeSize(src); err != nil {
			total = 0
		}
	}

	if err := e.store.Move(src, dst); err != nil {
		return 0, e.translate(op, src, err)
	}
	return total, nil
}

// validateName rejects blank names, separators and platform-invalid
// characters in the new leaf name.
func validateName(op, name, invalidChars string) error {
	if strings.TrimSpace(name) == "" {
		return opErr(op, name, ErrInvalidArgument)
	}
	if strings.ContainsAny(name, invalidChars) || strings.ContainsAny(name, `/\`) {
		return opErr(op, name, ErrInvalidArgument)
	}
	return nil
}
