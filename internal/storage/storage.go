// Package storage abstracts the filesystem primitives the mutation engine
// and search engine operate through. Implementations exist for the real
// local filesystem and for a purely in-memory tree used in tests.
package storage

import (
	"io"
	"time"
)

// Entry is a point-in-time snapshot of a single filesystem node. It is
// never updated after creation and can go stale.
type Entry struct {
	ModTime time.Time
	Name    string
	Path    string // absolute
	Size    int64  // 0 for directories
	IsDir   bool
}

// Storage provides the primitives the engines build on. All paths are
// absolute. Implementations return *fs.PathError (or errors wrapping
// fs.ErrNotExist / fs.ErrPermission / fs.ErrExist) so callers can classify
// failures with errors.Is.
type Storage interface {
	// Stat returns a snapshot of the node at path.
	Stat(path string) (Entry, error)

	// Exists reports whether path refers to an existing node.
	Exists(path string) bool

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error

	// List returns the immediate children of a directory.
	List(path string) ([]Entry, error)

	// Walk calls fn for every entry under root, recursively. The root
	// itself is not reported. Returning an error from fn stops the walk
	// and propagates that error.
	Walk(root string, fn func(Entry) error) error

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// CopyFile copies the raw bytes of a single file from src to dst,
	// creating or truncating dst.
	CopyFile(src, dst string) error

	// Move relocates a single node (file or whole directory) by rename.
	// An existing destination file is replaced. Fails with an I/O error
	// when src and dst are on different volumes.
	Move(src, dst string) error

	// Remove deletes a single file or empty directory.
	Remove(path string) error

	// RemoveAll deletes path and everything beneath it. A missing path
	// is not an error.
	RemoveAll(path string) error
}

// Linker is an optional capability: symlink-target lookup. The second
// return is false when path is not a symbolic link.
type Linker interface {
	Readlink(path string) (string, bool)
}
