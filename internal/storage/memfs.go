package storage

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// Compile-time interface checks.
var (
	_ Storage = (*MemFS)(nil)
	_ Linker  = (*MemFS)(nil)
)

// MemFS is an in-memory Storage for tests. Paths are slash-separated and
// absolute. Beyond the Storage contract it offers fault injection:
// forced move failures (to simulate a cross-volume boundary) and denied
// paths (to simulate filesystem permission errors).
type MemFS struct {
	mu      sync.Mutex
	nodes   map[string]*memNode
	links   map[string]string
	denied  map[string]struct{}
	moveErr error
}

type memNode struct {
	modTime time.Time
	data    []byte
	isDir   bool
}

// NewMemFS creates an empty in-memory filesystem containing only "/".
func NewMemFS() *MemFS {
	return &MemFS{
		nodes: map[string]*memNode{
			"/": {isDir: true, modTime: time.Now()},
		},
		links:  make(map[string]string),
		denied: make(map[string]struct{}),
	}
}

// WriteFile creates or replaces a file, creating parent directories.
func (m *MemFS) WriteFile(p string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	m.mkdirs(path.Dir(p))
	m.nodes[p] = &memNode{data: append([]byte(nil), data...), modTime: time.Now()}
}

// SetLink registers a symlink target for Readlink lookups.
func (m *MemFS) SetLink(p, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[clean(p)] = target
}

// FailMoves makes Move return err whenever source and destination sit
// under different top-level directories, simulating a volume boundary.
// Same-top-level renames (the temp-to-final rename in particular) keep
// working. Pass nil to restore normal behavior.
func (m *MemFS) FailMoves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveErr = err
}

// Deny makes mutations of p (and reads of its content) fail with a
// permission error.
func (m *MemFS) Deny(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied[clean(p)] = struct{}{}
}

func (m *MemFS) Stat(p string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	n, ok := m.nodes[p]
	if !ok {
		return Entry{}, pathErr("stat", p, fs.ErrNotExist)
	}
	return m.entry(p, n), nil
}

func (m *MemFS) Exists(p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.nodes[clean(p)]
	return ok
}

func (m *MemFS) MkdirAll(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if err := m.checkDenied("mkdir", p); err != nil {
		return err
	}
	m.mkdirs(p)
	return nil
}

func (m *MemFS) List(p string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	n, ok := m.nodes[p]
	if !ok {
		return nil, pathErr("list", p, fs.ErrNotExist)
	}
	if !n.isDir {
		return nil, pathErr("list", p, fs.ErrInvalid)
	}

	var entries []Entry
	for np, node := range m.nodes {
		if np != p && path.Dir(np) == p {
			entries = append(entries, m.entry(np, node))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (m *MemFS) Walk(root string, fn func(Entry) error) error {
	m.mu.Lock()
	root = clean(root)
	if _, ok := m.nodes[root]; !ok {
		m.mu.Unlock()
		return pathErr("walk", root, fs.ErrNotExist)
	}

	var entries []Entry
	for np, node := range m.nodes {
		if np != root && underRoot(np, root) {
			entries = append(entries, m.entry(np, node))
		}
	}
	m.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	for _, e := range entries {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemFS) Open(p string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	n, ok := m.nodes[p]
	if !ok {
		return nil, pathErr("open", p, fs.ErrNotExist)
	}
	if n.isDir {
		return nil, pathErr("open", p, fs.ErrInvalid)
	}
	if _, denied := m.denied[p]; denied {
		return nil, pathErr("open", p, fs.ErrPermission)
	}
	return io.NopCloser(bytes.NewReader(n.data)), nil
}

func (m *MemFS) CopyFile(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, dst = clean(src), clean(dst)

	n, ok := m.nodes[src]
	if !ok {
		return pathErr("copy", src, fs.ErrNotExist)
	}
	if n.isDir {
		return pathErr("copy", src, fs.ErrInvalid)
	}
	if err := m.checkDenied("copy", src); err != nil {
		return err
	}
	if err := m.checkDenied("copy", dst); err != nil {
		return err
	}

	m.mkdirs(path.Dir(dst))
	m.nodes[dst] = &memNode{data: append([]byte(nil), n.data...), modTime: time.Now()}
	return nil
}

func (m *MemFS) Move(src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, dst = clean(src), clean(dst)

	if m.moveErr != nil && topSegment(src) != topSegment(dst) {
		return pathErr("rename", src, m.moveErr)
	}
	n, ok := m.nodes[src]
	if !ok {
		return pathErr("rename", src, fs.ErrNotExist)
	}
	if err := m.checkDenied("rename", src); err != nil {
		return err
	}
	if err := m.checkDenied("rename", dst); err != nil {
		return err
	}

	m.mkdirs(path.Dir(dst))
	m.nodes[dst] = n
	delete(m.nodes, src)

	if n.isDir {
		prefix := src + "/"
		// Collect first: mutating the map while ranging over it skips keys.
		var children []string
		for np := range m.nodes {
			if strings.HasPrefix(np, prefix) {
				children = append(children, np)
			}
		}
		for _, np := range children {
			m.nodes[dst+"/"+strings.TrimPrefix(np, prefix)] = m.nodes[np]
			delete(m.nodes, np)
		}
	}
	return nil
}

func (m *MemFS) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)

	n, ok := m.nodes[p]
	if !ok {
		return pathErr("remove", p, fs.ErrNotExist)
	}
	if err := m.checkDenied("remove", p); err != nil {
		return err
	}
	if n.isDir {
		for np := range m.nodes {
			if np != p && path.Dir(np) == p {
				return pathErr("remove", p, fs.ErrInvalid) // directory not empty
			}
		}
	}
	delete(m.nodes, p)
	return nil
}

func (m *MemFS) RemoveAll(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)

	if _, ok := m.nodes[p]; !ok {
		return nil
	}
	if err := m.checkDenied("removeall", p); err != nil {
		return err
	}
	for np := range m.nodes {
		if np == p || underRoot(np, p) {
			if _, denied := m.denied[np]; denied {
				return pathErr("removeall", np, fs.ErrPermission)
			}
		}
	}
	for np := range m.nodes {
		if np == p || underRoot(np, p) {
			delete(m.nodes, np)
		}
	}
	return nil
}

// Readlink implements the optional Linker capability.
func (m *MemFS) Readlink(p string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.links[clean(p)]
	return target, ok
}

// mkdirs creates p and missing parents. Caller holds the lock.
func (m *MemFS) mkdirs(p string) {
	for p != "/" && p != "." {
		if _, ok := m.nodes[p]; !ok {
			m.nodes[p] = &memNode{isDir: true, modTime: time.Now()}
		}
		p = path.Dir(p)
	}
}

func (m *MemFS) checkDenied(op, p string) error {
	if _, ok := m.denied[p]; ok {
		return pathErr(op, p, fs.ErrPermission)
	}
	return nil
}

func (m *MemFS) entry(p string, n *memNode) Entry {
	size := int64(len(n.data))
	if n.isDir {
		size = 0
	}
	return Entry{
		Name:    path.Base(p),
		Path:    p,
		Size:    size,
		IsDir:   n.isDir,
		ModTime: n.modTime,
	}
}

func clean(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// topSegment returns the first path component, the simulated volume.
func topSegment(p string) string {
	rest := strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}

func underRoot(p, root string) bool {
	return strings.HasPrefix(p, root+"/") || root == "/" && p != "/"
}

func pathErr(op, p string, err error) error {
	return &fs.PathError{Op: op, Path: p, Err: err}
}
