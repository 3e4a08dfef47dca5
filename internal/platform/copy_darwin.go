//go:build darwin

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// Copy tries clonefile first (CoW whole-file copy), then falls back to
// read/write on macOS.
func Copy(srcPath string, dst *os.File, srcSize int64) (CopyResult, error) {
	err := unix.Clonefile(srcPath, dst.Name(), 0)
	if err == nil {
		return CopyResult{BytesWritten: srcSize, Method: Clonefile}, nil
	}
	if !isFallbackCloneErr(err) {
		return CopyResult{}, err
	}

	return copyReadWrite(srcPath, dst)
}

func isFallbackCloneErr(err error) bool {
	switch err {
	case unix.ENOTSUP, unix.EXDEV, unix.EEXIST:
		return true
	}
	return false
}
