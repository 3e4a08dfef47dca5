// Package fileops is the mutation engine: delete, rename, copy, move and
// cleanup over an injected storage backend, with protected-path
// enforcement, progress reporting and cooperative cancellation.
//
// Operations block until done and honor ctx cancellation at defined safe
// points; callers wanting asynchrony run them in their own goroutine.
package fileops

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/duopane/duopane/internal/event"
	"github.com/duopane/duopane/internal/guard"
	"github.com/duopane/duopane/internal/stats"
	"github.com/duopane/duopane/internal/storage"
)

// TempSuffix marks in-progress copy artifacts. Cleanup scans for the
// same suffix, so the two stay in sync by construction.
const TempSuffix = ".dp-tmp"

// Progress is an immutable snapshot of one operation's progress.
type Progress struct {
	Op    string
	Path  string // path currently being processed
	Bytes int64  // bytes processed so far
	Total int64  // precomputed total
}

// Percent returns the completed percentage, 0 when the total is unknown.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return int(p.Bytes * 100 / p.Total)
}

// ProgressFunc receives Progress snapshots, independent of the event
// notifier.
type ProgressFunc func(Progress)

// Engine performs all write operations. Each call is independent and
// reentrant; the protected-path set is the only instance-wide mutable
// state and is not internally locked.
type Engine struct {
	store    storage.Storage
	guard    *guard.Guard
	events   *event.Notifier
	progress ProgressFunc
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithGuard replaces the default platform guard.
func WithGuard(g *guard.Guard) Option {
	return func(e *Engine) { e.guard = g }
}

// WithNotifier replaces the engine's event notifier.
func WithNotifier(n *event.Notifier) Option {
	return func(e *Engine) { e.events = n }
}

// WithProgress registers a direct progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithLogger sets the logger used for swallowed best-effort failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New creates an Engine over store. Without options it guards the
// detected platform's system roots and logs through slog.Default.
func New(store storage.Storage, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		events: event.NewNotifier(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.guard == nil {
		e.guard = guard.New(guard.Detect())
	}
	return e
}

// Events returns the notifier observers subscribe to.
func (e *Engine) Events() *event.Notifier { return e.events }

// AddProtectedPath marks a path as protected for subsequent operations.
// Callers must not race this against in-flight operations.
func (e *Engine) AddProtectedPath(path string) { e.guard.Add(path) }

// RemoveProtectedPath unmarks a protected path.
func (e *Engine) RemoveProtectedPath(path string) { e.guard.Remove(path) }

// validatePath rejects blank input and platform-invalid characters and
// returns the lexically normalized path.
func (e *Engine) validatePath(op, raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", opErr(op, raw, ErrInvalidArgument)
	}
	if strings.ContainsAny(raw, e.guard.Platform().InvalidChars) {
		return "", opErr(op, raw, ErrInvalidArgument)
	}
	return filepath.Clean(raw), nil
}

// validatePair additionally rejects equal source and destination.
func (e *Engine) validatePair(op, rawSrc, rawDst string) (src, dst string, err error) {
	if src, err = e.validatePath(op, rawSrc); err != nil {
		return "", "", err
	}
	if dst, err = e.validatePath(op, rawDst); err != nil {
		return "", "", err
	}
	if e.samePath(src, dst) {
		return "", "", opErr(op, src, ErrInvalidArgument)
	}
	return src, dst, nil
}

func (e *Engine) samePath(a, b string) bool {
	if e.guard.Platform().CaseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// checkCancel is the cooperative cancellation point.
func (e *Engine) checkCancel(ctx context.Context, op, path string) error {
	select {
	case <-ctx.Done():
		return &OpError{Op: op, Path: path, Kind: ErrCancelled, Err: ctx.Err()}
	default:
		return nil
	}
}

// translate classifies a storage-layer error into the engine taxonomy.
// Protected-path and cancellation errors never pass through here.
func (e *Engine) translate(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return &OpError{Op: op, Path: path, Kind: ErrPermission, Err: err}
	case errors.Is(err, fs.ErrNotExist):
		return &OpError{Op: op, Path: path, Kind: ErrNotFound, Err: err}
	default:
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
}

// treeSize sums file sizes under root for progress denominators.
func (e *Engine) treeSize(root string) (int64, error) {
	var total int64
	err := e.store.Walk(root, func(en storage.Entry) error {
		total += en.Size
		return nil
	})
	return total, err
}

func (e *Engine) emitStarted(op, path string) {
	e.events.Emit(event.Event{Type: event.OpStarted, Op: op, Path: path})
}

func (e *Engine) emitCompleted(op string, totalBytes int64) {
	e.events.Emit(event.Event{Type: event.OpCompleted, Op: op, Bytes: totalBytes})
}

// emitFailed precedes every error returned to the caller, cancellation
// included, so observers always see a failure signal.
func (e *Engine) emitFailed(op, path string, err error) {
	e.events.Emit(event.Event{Type: event.OpFailed, Op: op, Path: path, Err: err})
}

func (e *Engine) emitProgress(op, path string, c *stats.Collector) {
	bytes, total := c.BytesProcessed(), c.BytesTotal()
	e.events.Emit(event.Event{Type: event.OpProgress, Op: op, Path: path, Bytes: bytes, Total: total})
	if e.progress != nil {
		e.progress(Progress{Op: op, Path: path, Bytes: bytes, Total: total})
	}
}
