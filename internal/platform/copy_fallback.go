//go:build !linux && !darwin

package platform

import "os"

// Copy falls back to read/write on platforms without kernel offload.
func Copy(srcPath string, dst *os.File, _ int64) (CopyResult, error) {
	return copyReadWrite(srcPath, dst)
}
