package fileops

import (
	"errors"
	"fmt"

	"github.com/duopane/duopane/internal/guard"
)

// Error kinds. Every failure the engine returns matches exactly one of
// these (or guard.ErrProtected / pathres.ErrCircularLink) via errors.Is.
var (
	// ErrInvalidArgument covers blank paths, platform-invalid characters
	// and equal source/destination.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound means the operation's source does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermission means the storage layer denied access on a path the
	// guard did not object to.
	ErrPermission = errors.New("permission denied")

	// ErrCollision covers an existing destination without overwrite and
	// a non-empty directory without the recursive flag.
	ErrCollision = errors.New("collision")

	// ErrCancelled is observed cooperative cancellation.
	ErrCancelled = errors.New("operation cancelled")

	// ErrProtected re-exports the guard's sentinel so engine callers
	// need only this package for error classification.
	ErrProtected = guard.ErrProtected
)

// OpError tags a failure with its operation name and the offending path.
type OpError struct {
	Kind error // one of the sentinels above
	Err  error // underlying cause, may be nil
	Op   string
	Path string
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
}

func (e *OpError) Is(target error) bool { return target == e.Kind }

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op, path string, kind error) *OpError {
	return &OpError{Op: op, Path: path, Kind: kind}
}
