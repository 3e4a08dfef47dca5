package fileops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duopane/duopane/internal/event"
	"github.com/duopane/duopane/internal/guard"
	"github.com/duopane/duopane/internal/storage"
)

// newTestEngine builds an engine over a fresh MemFS with a bare POSIX
// guard (no implicit home protection surprises).
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *storage.MemFS) {
	t.Helper()
	m := storage.NewMemFS()
	g := guard.New(guard.Posix())
	opts = append([]Option{WithGuard(g)}, opts...)
	return New(m, opts...), m
}

// recordEvents subscribes a recorder to the engine's notifier.
func recordEvents(e *Engine) *[]event.Event {
	var events []event.Event
	e.Events().Subscribe(func(ev event.Event) {
		events = append(events, ev)
	})
	return &events
}

func eventTypes(events []event.Event) []event.Type {
	types := make([]event.Type, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func TestValidateBlankPaths(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.Delete(ctx, "", false), ErrInvalidArgument)
	assert.ErrorIs(t, e.Delete(ctx, "   ", false), ErrInvalidArgument)
	assert.ErrorIs(t, e.Copy(ctx, "", "/dst", false), ErrInvalidArgument)
	assert.ErrorIs(t, e.Move(ctx, "/src", " "), ErrInvalidArgument)
}

func TestValidateEqualSourceAndDestination(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/f", []byte("x"))

	assert.ErrorIs(t, e.Copy(context.Background(), "/f", "/f", true), ErrInvalidArgument)
	assert.ErrorIs(t, e.Move(context.Background(), "/dir/../f", "/f"), ErrInvalidArgument)
}

func TestValidateInvalidCharacters(t *testing.T) {
	m := storage.NewMemFS()
	p := guard.Windows()
	e := New(m, WithGuard(guard.New(p)))

	err := e.Delete(context.Background(), `C:\data\bad|name`, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestProtectedPathRejectedBeforeIO(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/etc/passwd", []byte("root"))

	ctx := context.Background()
	assert.ErrorIs(t, e.Delete(ctx, "/etc", true), ErrProtected)
	assert.ErrorIs(t, e.Move(ctx, "/etc", "/elsewhere"), ErrProtected)
	assert.ErrorIs(t, e.Copy(ctx, "/somewhere", "/usr", true), ErrProtected)

	// Nothing was touched.
	assert.True(t, m.Exists("/etc/passwd"))
}

func TestProtectedErrorKeepsIdentity(t *testing.T) {
	e, _ := newTestEngine(t)

	err := e.Delete(context.Background(), "/etc", true)
	var perr *guard.ProtectedError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "delete", perr.Op)
}

func TestAddRemoveProtectedPath(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/data/keep", []byte("x"))

	e.AddProtectedPath("/data")
	assert.ErrorIs(t, e.Delete(context.Background(), "/data", true), ErrProtected)

	e.RemoveProtectedPath("/data")
	assert.NoError(t, e.Delete(context.Background(), "/data", true))
	assert.False(t, m.Exists("/data"))
}

func TestEventOrderOnSuccess(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/src.txt", []byte("hello"))
	events := recordEvents(e)

	require.NoError(t, e.Copy(context.Background(), "/src.txt", "/dst.txt", false))

	types := eventTypes(*events)
	require.GreaterOrEqual(t, len(types), 3)
	assert.Equal(t, event.OpStarted, types[0])
	assert.Equal(t, event.OpCompleted, types[len(types)-1])
	for _, typ := range types[1 : len(types)-1] {
		assert.Equal(t, event.OpProgress, typ)
	}

	completed := (*events)[len(*events)-1]
	assert.Equal(t, "copy", completed.Op)
	assert.Equal(t, int64(5), completed.Bytes)
}

func TestFailedEventPrecedesError(t *testing.T) {
	e, _ := newTestEngine(t)
	events := recordEvents(e)

	err := e.Copy(context.Background(), "/missing", "/dst", false)
	assert.ErrorIs(t, err, ErrNotFound)

	types := eventTypes(*events)
	require.Len(t, types, 2)
	assert.Equal(t, event.OpStarted, types[0])
	assert.Equal(t, event.OpFailed, types[1])
	assert.ErrorIs(t, (*events)[1].Err, ErrNotFound)
}

func TestProgressCallback(t *testing.T) {
	var snaps []Progress
	e, m := newTestEngine(t, WithProgress(func(p Progress) {
		snaps = append(snaps, p)
	}))
	m.WriteFile("/tree/a", []byte("aa"))
	m.WriteFile("/tree/b", []byte("bbbb"))

	require.NoError(t, e.Copy(context.Background(), "/tree", "/out", false))

	require.Len(t, snaps, 2)
	assert.Equal(t, int64(6), snaps[0].Total)
	assert.Equal(t, int64(6), snaps[1].Total)
	assert.Equal(t, int64(6), snaps[1].Bytes)
	assert.Equal(t, 100, snaps[1].Percent())
}

func TestProgressPercentZeroTotal(t *testing.T) {
	p := Progress{Bytes: 0, Total: 0}
	assert.Equal(t, 0, p.Percent())
}
