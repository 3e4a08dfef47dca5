package fileops

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/duopane/duopane/internal/stats"
)

// Copy copies a file or directory tree from src to dst. A single file is
// written through a temporary sibling and renamed into place, so dst is
// only ever observed fully written or untouched. A cancelled tree copy
// leaves exactly the files completed before the cancellation point, each
// byte-identical to its source.
func (e *Engine) Copy(ctx context.Context, src, dst string, overwrite bool) error {
	const op = "copy"

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

	total, err := e.copy(ctx, op, src, dst, overwrite)
	if err != nil {
		e.emitFailed(op, src, err)
		return err
	}
	e.emitCompleted(op, total)
	return nil
}

func (e *Engine) copy(ctx context.Context, op, src, dst string, overwrite bool) (int64, error) {
	if err := e.checkCancel(ctx, op, src); err != nil {
		return 0, err
	}

	entry, err := e.store.Stat(src)
	if err != nil {
		return 0, e.translate(op, src, err)
	}

	collector := stats.NewCollector()

	if !entry.IsDir {
		collector.SetBytesTotal(entry.Size)
		if err := e.copyFile(op, src, dst, entry.Size, overwrite, collector); err != nil {
			return 0, err
		}
		return entry.Size, nil
	}

	// Precompute the whole subtree size so progress has a denominator.
	size, err := e.treeSize(src)
	if err != nil {
		return 0, e.translate(op, src, err)
	}
	collector.SetBytesTotal(size)

	if err := e.copyTree(ctx, op, src, dst, overwrite, collector); err != nil {
		return 0, err
	}
	return size, nil
}

// copyTree copies depth-first: files in the current directory, then each
// subdirectory. Cancellation is checked before every file and descent.
func (e *Engine) copyTree(ctx context.Context, op, src, dst string, overwrite bool, c *stats.Collector) error {
	if !e.store.Exists(dst) {
		if err := e.store.MkdirAll(dst); err != nil {
			return e.translate(op, dst, err)
		}
	}

	entries, err := e.store.List(src)
	if err != nil {
		return e.translate(op, src, err)
	}

	for _, en := range entries {
		if en.IsDir {
			continue
		}
		if err := e.checkCancel(ctx, op, en.Path); err != nil {
			return err
		}
		target := filepath.Join(dst, en.Name)
		if err := e.copyFile(op, en.Path, target, en.Size, overwrite, c); err != nil {
			return err
		}
	}

	for _, en := range entries {
		if !en.IsDir {
			continue
		}
		if err := e.checkCancel(ctx, op, en.Path); err != nil {
			return err
		}
		if err := e.copyTree(ctx, op, en.Path, filepath.Join(dst, en.Name), overwrite, c); err != nil {
			return err
		}
	}
	return nil
}

// copyFile runs the atomic single-file protocol: copy into a temp
// sibling, verify its length against the source, then rename over the
// destination. The temp file is best-effort removed on every exit path.
func (e *Engine) copyFile(op, src, dst string, size int64, overwrite bool, c *stats.Collector) error {
	if !overwrite && e.store.Exists(dst) {
		return opErr(op, dst, ErrCollision)
	}

	tmp := tempPath(dst)
	RegisterTmp(tmp)
	defer func() {
		DeregisterTmp(tmp)
		_ = e.store.Remove(tmp) // no-op after a successful rename
	}()

	if err := e.store.CopyFile(src, tmp); err != nil {
		c.AddFilesFailed(1)
		return e.translate(op, src, err)
	}

	tmpEntry, err := e.store.Stat(tmp)
	if err != nil {
		c.AddFilesFailed(1)
		return e.translate(op, tmp, err)
	}
	if tmpEntry.Size != size {
		c.AddFilesFailed(1)
		return fmt.Errorf("%s %s: wrote %d bytes, source has %d", op, src, tmpEntry.Size, size)
	}

	if err := e.store.Move(tmp, dst); err != nil {
		c.AddFilesFailed(1)
		return e.translate(op, dst, err)
	}

	c.AddFilesProcessed(1)
	c.AddBytesProcessed(size)
	e.emitProgress(op, src, c)
	return nil
}

// tempPath builds the temporary sibling name for dst.
func tempPath(dst string) string {
	dir, base := filepath.Split(dst)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s%s", base, uuid.New().String()[:8], TempSuffix))
}
