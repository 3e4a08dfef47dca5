// Package pathres canonicalizes user-supplied paths: tilde expansion,
// lexical normalization, and symlink resolution that is safe against
// link cycles.
package pathres

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidPath is returned for blank input.
	ErrInvalidPath = errors.New("invalid path")

	// ErrCircularLink is returned when symlink resolution revisits a
	// path or exceeds the hop bound.
	ErrCircularLink = errors.New("circular symlink")
)

// maxLinkDepth bounds symlink hops. Chains longer than this are treated
// like cycles even when no path repeats.
const maxLinkDepth = 64

// CircularLinkError reports the path at which resolution gave up.
type CircularLinkError struct {
	Path string
}

func (e *CircularLinkError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Path, ErrCircularLink)
}

func (e *CircularLinkError) Is(target error) bool { return target == ErrCircularLink }

// ReadlinkFunc looks up a symlink target. The second return is false when
// the path is not a symbolic link.
type ReadlinkFunc func(path string) (string, bool)

// Resolver canonicalizes paths. The zero value is not usable; construct
// with New.
type Resolver struct {
	home            string
	readlink        ReadlinkFunc
	caseInsensitive bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHome overrides the home directory used for tilde expansion.
func WithHome(home string) Option {
	return func(r *Resolver) { r.home = home }
}

// WithReadlink injects the symlink-target lookup. Useful for tests and
// for storage backends with their own link namespace.
func WithReadlink(fn ReadlinkFunc) Option {
	return func(r *Resolver) { r.readlink = fn }
}

// WithCaseInsensitive switches cycle detection to case-folded comparison.
func WithCaseInsensitive(v bool) Option {
	return func(r *Resolver) { r.caseInsensitive = v }
}

// New creates a Resolver. Defaults: the invoking user's home directory
// and os.Readlink against the real filesystem.
func New(opts ...Option) *Resolver {
	r := &Resolver{readlink: osReadlink}
	if home, err := os.UserHomeDir(); err == nil {
		r.home = home
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the canonical absolute form of path: tilde expanded,
// lexically normalized, and with symlinks followed to a non-link target.
func (r *Resolver) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("resolve: %w", ErrInvalidPath)
	}

	path = r.expandTilde(path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, ErrInvalidPath)
	}
	current := filepath.Clean(abs)

	visited := make(map[string]struct{})
	for range maxLinkDepth {
		key := r.fold(current)
		if _, seen := visited[key]; seen {
			return "", &CircularLinkError{Path: current}
		}
		visited[key] = struct{}{}

		target, ok := r.readlink(current)
		if !ok {
			return current, nil
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		current = filepath.Clean(target)
	}

	return "", &CircularLinkError{Path: current}
}

// expandTilde expands a leading "~" or "~/" against the home directory.
// Other leading-tilde forms (e.g. "~otheruser") pass through untouched.
func (r *Resolver) expandTilde(path string) string {
	if r.home == "" {
		return path
	}
	if path == "~" {
		return r.home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(r.home, rest)
	}
	return path
}

func (r *Resolver) fold(path string) string {
	if r.caseInsensitive {
		return strings.ToLower(path)
	}
	return path
}

func osReadlink(path string) (string, bool) {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return "", false
	}
	target, err := os.Readlink(path)
	if err != nil {
		return "", false
	}
	return target, true
}
