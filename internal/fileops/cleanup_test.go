package fileops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duopane/duopane/internal/event"
)

func TestCleanupRemovesTempArtifacts(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/work/.a.1b2c3d4e"+TempSuffix, []byte("stale"))
	m.WriteFile("/work/.b.deadbeef"+TempSuffix, []byte("older"))
	m.WriteFile("/work/real.txt", []byte("keep"))

	removed, err := e.Cleanup(context.Background(), "/work", false)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.True(t, m.Exists("/work/real.txt"))
	assert.Empty(t, tempArtifacts(t, m))
}

func TestCleanupNonRecursiveIgnoresSubdirs(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/work/.top.cafe0001"+TempSuffix, []byte("x"))
	m.WriteFile("/work/sub/.deep.cafe0002"+TempSuffix, []byte("y"))

	removed, err := e.Cleanup(context.Background(), "/work", false)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.True(t, m.Exists("/work/sub/.deep.cafe0002"+TempSuffix))
}

func TestCleanupRecursive(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/work/.top.cafe0001"+TempSuffix, []byte("x"))
	m.WriteFile("/work/sub/deep/.d.cafe0002"+TempSuffix, []byte("y"))

	removed, err := e.Cleanup(context.Background(), "/work", true)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Empty(t, tempArtifacts(t, m))
}

func TestCleanupSkipsFailedRemovals(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/work/.held.cafe0001"+TempSuffix, []byte("busy"))
	m.WriteFile("/work/.free.cafe0002"+TempSuffix, []byte("x"))
	m.Deny("/work/.held.cafe0001" + TempSuffix)

	removed, err := e.Cleanup(context.Background(), "/work", false)
	require.NoError(t, err, "a single stuck artifact must not abort the sweep")
	assert.Equal(t, 1, removed)
	assert.True(t, m.Exists("/work/.held.cafe0001"+TempSuffix))
	assert.False(t, m.Exists("/work/.free.cafe0002"+TempSuffix))
}

func TestCleanupIgnoresDirsWithSuffix(t *testing.T) {
	e, m := newTestEngine(t)
	require.NoError(t, m.MkdirAll("/work/odd"+TempSuffix))

	removed, err := e.Cleanup(context.Background(), "/work", true)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.True(t, m.Exists("/work/odd"+TempSuffix))
}

func TestCleanupMissingDir(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Cleanup(context.Background(), "/nowhere", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCleanupReportsBytesReclaimed(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/work/.a.cafe0001"+TempSuffix, []byte("12345"))
	events := recordEvents(e)

	_, err := e.Cleanup(context.Background(), "/work", false)
	require.NoError(t, err)

	completed := (*events)[len(*events)-1]
	require.Equal(t, event.OpCompleted, completed.Type)
	assert.Equal(t, int64(5), completed.Bytes)
}
