package search

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"strings"

	"github.com/duopane/duopane/internal/fileops"
	"github.com/duopane/duopane/internal/guard"
	"github.com/duopane/duopane/internal/storage"
)

// Engine streams glob matches from a storage subtree. Matching case
// sensitivity follows the platform's path comparison convention.
type Engine struct {
	store    storage.Storage
	platform guard.Platform
}

// Option configures a search Engine.
type Option func(*Engine)

// WithPlatform overrides the detected platform's matching rules.
func WithPlatform(p guard.Platform) Option {
	return func(e *Engine) { e.platform = p }
}

// New creates a search Engine over store.
func New(store storage.Storage, opts ...Option) *Engine {
	e := &Engine{store: store, platform: guard.Detect()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns a one-shot, forward-only sequence of entries under root
// whose root-relative path matches pattern. Root existence and argument
// validity are checked up front; traversal errors and cancellation
// surface through the sequence's error value.
func (e *Engine) Search(ctx context.Context, root, pattern string) (iter.Seq2[storage.Entry, error], error) {
	const op = "search"

	if strings.TrimSpace(root) == "" || strings.TrimSpace(pattern) == "" {
		return nil, &fileops.OpError{Op: op, Path: root, Kind: fileops.ErrInvalidArgument}
	}
	root = filepath.Clean(root)
	if !e.store.Exists(root) {
		return nil, &fileops.OpError{Op: op, Path: root, Kind: fileops.ErrNotFound}
	}

	matcher, err := Compile(pattern, e.platform.CaseInsensitive)
	if err != nil {
		return nil, &fileops.OpError{Op: op, Path: pattern, Kind: fileops.ErrInvalidArgument, Err: err}
	}

	return func(yield func(storage.Entry, error) bool) {
		err := e.store.Walk(root, func(en storage.Entry) error {
			select {
			case <-ctx.Done():
				return &fileops.OpError{Op: op, Path: en.Path, Kind: fileops.ErrCancelled, Err: ctx.Err()}
			default:
			}

			rel, relErr := filepath.Rel(root, en.Path)
			if relErr != nil {
				return nil
			}
			if !matcher.Match(filepath.ToSlash(rel)) {
				return nil
			}
			if !yield(en, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield(storage.Entry{}, err)
		}
	}, nil
}

// errStop aborts the walk when the consumer stops ranging early.
var errStop = errors.New("search: consumer stopped")
