// Package guard refuses destructive operations on system and user-root
// paths. It is consulted by the mutation engine before every write.
package guard

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrProtected is the sentinel for protected-path violations. It is never
// wrapped into another error kind by the engine.
var ErrProtected = errors.New("protected path")

// ProtectedError reports a refused mutation with its operation and path.
type ProtectedError struct {
	Op   string
	Path string
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, ErrProtected)
}

func (e *ProtectedError) Is(target error) bool { return target == ErrProtected }

// Guard holds the mutable protected-path set. The set is not internally
// locked: callers must serialize Add/Remove relative to in-flight
// operations.
type Guard struct {
	platform  Platform
	protected map[string]struct{} // keys are normalized and case-folded
}

// New seeds a Guard from the platform's system roots plus the invoking
// user's home directory and any extra paths.
func New(p Platform, extra ...string) *Guard {
	g := &Guard{
		platform:  p,
		protected: make(map[string]struct{}),
	}
	for _, root := range p.Roots {
		g.Add(root)
	}
	if home, err := os.UserHomeDir(); err == nil {
		g.Add(home)
	}
	for _, path := range extra {
		g.Add(path)
	}
	return g
}

// Platform returns the comparison rules this guard was built with.
func (g *Guard) Platform() Platform { return g.platform }

// Add marks a path as protected. Takes effect immediately.
func (g *Guard) Add(path string) {
	g.protected[g.fold(Normalize(path, g.platform.Separator))] = struct{}{}
}

// Remove unmarks a protected path. Unknown paths are ignored.
func (g *Guard) Remove(path string) {
	delete(g.protected, g.fold(Normalize(path, g.platform.Separator)))
}

// Check fails with a protected-path error when the normalized path is in
// the protected set. It has no side effects.
func (g *Guard) Check(path, op string) error {
	key := g.fold(Normalize(path, g.platform.Separator))
	if _, ok := g.protected[key]; ok {
		return &ProtectedError{Op: op, Path: path}
	}
	return nil
}

func (g *Guard) fold(path string) string {
	if g.platform.CaseInsensitive {
		return strings.ToLower(path)
	}
	return path
}

// Normalize strips trailing separators unless that would empty the path,
// preserving root markers such as "/" or a drive root.
func Normalize(path string, sep rune) string {
	trimmed := strings.TrimRight(path, string(sep))
	if trimmed == "" {
		return path
	}
	return trimmed
}
