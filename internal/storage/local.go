package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/duopane/duopane/internal/platform"
)

// Compile-time interface checks.
var (
	_ Storage = (*Local)(nil)
	_ Linker  = (*Local)(nil)
)

// Local is the Storage implementation backed by the real filesystem.
type Local struct{}

// NewLocal returns a Local storage.
func NewLocal() *Local { return &Local{} }

func (*Local) Stat(path string) (Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, err
	}
	return entryFromInfo(path, info), nil
}

func (*Local) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (*Local) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (*Local) List(path string) ([]Entry, error) {
	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		info, err := d.Info()
		if err != nil {
			continue // entry vanished between readdir and stat
		}
		entries = append(entries, entryFromInfo(filepath.Join(path, d.Name()), info))
	}
	return entries, nil
}

// Walk enumerates the subtree under root. fastwalk fans directory reads
// out to several goroutines, so fn invocations are serialized here.
func (*Local) Walk(root string, fn func(Entry) error) error {
	var mu sync.Mutex
	conf := fastwalk.Config{Follow: false}

	return fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}
		if p == root {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		return fn(entryFromInfo(p, info))
	})
}

func (*Local) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (*Local) CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := platform.Copy(src, out, info.Size()); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

func (*Local) Move(src, dst string) error {
	return os.Rename(src, dst)
}

func (*Local) Remove(path string) error {
	return os.Remove(path)
}

func (*Local) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Readlink implements the optional Linker capability.
func (*Local) Readlink(path string) (string, bool) {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return "", false
	}
	target, err := os.Readlink(path)
	if err != nil {
		return "", false
	}
	return target, true
}

func entryFromInfo(path string, info fs.FileInfo) Entry {
	size := info.Size()
	if info.IsDir() {
		size = 0
	}
	return Entry{
		Name:    info.Name(),
		Path:    path,
		Size:    size,
		IsDir:   info.IsDir(),
		ModTime: info.ModTime(),
	}
}
