package fileops

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/duopane/duopane/internal/storage"
)

// Mismatch records a single content divergence found by Verify.
type Mismatch struct {
	Path    string // relative to the verified roots
	SrcHash string
	DstHash string
}

// VerifyResult holds the outcome of a verification pass.
type VerifyResult struct {
	Mismatches []Mismatch
	Verified   int64
	Failed     int64
}

// Verify walks src and compares BLAKE3 digests against the corresponding
// files under dst. It is the deep counterpart to the length check the
// copy protocol performs in-line.
func (e *Engine) Verify(ctx context.Context, src, dst string) (VerifyResult, error) {
	const op = "verify"
	var result VerifyResult

	src, dst, err := e.validatePair(op, src, dst)
	if err != nil {
		return result, err
	}

	entry, err := e.store.Stat(src)
	if err != nil {
		return result, e.translate(op, src, err)
	}

	if !entry.IsDir {
		e.verifyOne(&result, src, dst, filepath.Base(src))
		return result, nil
	}

	err = e.store.Walk(src, func(en storage.Entry) error {
		if err := e.checkCancel(ctx, op, en.Path); err != nil {
			return err
		}
		if en.IsDir {
			return nil
		}
		rel, err := filepath.Rel(src, en.Path)
		if err != nil {
			return nil
		}
		e.verifyOne(&result, en.Path, filepath.Join(dst, rel), rel)
		return nil
	})
	return result, err
}

func (e *Engine) verifyOne(result *VerifyResult, srcPath, dstPath, rel string) {
	srcHash, srcErr := e.hashFile(srcPath)
	dstHash, dstErr := e.hashFile(dstPath)

	switch {
	case srcErr != nil:
		result.Failed++
		result.Mismatches = append(result.Mismatches, Mismatch{Path: rel, SrcHash: "error", DstHash: dstHash})
	case dstErr != nil:
		result.Failed++
		result.Mismatches = append(result.Mismatches, Mismatch{Path: rel, SrcHash: srcHash, DstHash: "error"})
	case srcHash != dstHash:
		result.Failed++
		result.Mismatches = append(result.Mismatches, Mismatch{Path: rel, SrcHash: srcHash, DstHash: dstHash})
	default:
		result.Verified++
	}
}

// hashFile computes the hex BLAKE3 digest of one stored file.
func (e *Engine) hashFile(path string) (string, error) {
	rc, err := e.store.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer rc.Close()

	h := blake3.New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, rc, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
