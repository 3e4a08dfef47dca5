package storage

import (
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemFSWriteAndStat(t *testing.T) {
	m := NewMemFS()
	m.WriteFile("/a/b/file.txt", []byte("abc"))

	e, err := m.Stat("/a/b/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "file.txt", e.Name)
	assert.Equal(t, int64(3), e.Size)
	assert.False(t, e.IsDir)

	// Parents are created implicitly.
	e, err = m.Stat("/a/b")
	require.NoError(t, err)
	assert.True(t, e.IsDir)

	_, err = m.Stat("/missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMemFSListAndWalk(t *testing.T) {
	m := NewMemFS()
	m.WriteFile("/root/a.txt", []byte("a"))
	m.WriteFile("/root/sub/b.txt", []byte("b"))

	entries, err := m.List("/root")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/root/a.txt", entries[0].Path)
	assert.Equal(t, "/root/sub", entries[1].Path)

	var walked []string
	require.NoError(t, m.Walk("/root", func(e Entry) error {
		walked = append(walked, e.Path)
		return nil
	}))
	assert.Equal(t, []string{"/root/a.txt", "/root/sub", "/root/sub/b.txt"}, walked)
}

func TestMemFSWalkStopsOnError(t *testing.T) {
	m := NewMemFS()
	m.WriteFile("/root/a", []byte("a"))
	m.WriteFile("/root/b", []byte("b"))

	boom := errors.New("boom")
	var count int
	err := m.Walk("/root", func(Entry) error {
		count++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count)
}

func TestMemFSCopyAndOpen(t *testing.T) {
	m := NewMemFS()
	m.WriteFile("/src.txt", []byte("payload"))

	require.NoError(t, m.CopyFile("/src.txt", "/dst.txt"))

	rc, err := m.Open("/dst.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("payload"), got)
}

func TestMemFSMoveDirectory(t *testing.T) {
	m := NewMemFS()
	m.WriteFile("/tree/sub/leaf.txt", []byte("x"))

	require.NoError(t, m.Move("/tree", "/moved"))

	assert.False(t, m.Exists("/tree"))
	assert.False(t, m.Exists("/tree/sub/leaf.txt"))
	assert.True(t, m.Exists("/moved/sub/leaf.txt"))
}

func TestMemFSFailMoves(t *testing.T) {
	m := NewMemFS()
	m.WriteFile("/f", []byte("x"))

	m.WriteFile("/vol/a", []byte("y"))

	xdev := errors.New("cross-device link")
	m.FailMoves(xdev)
	assert.ErrorIs(t, m.Move("/f", "/g"), xdev)
	assert.NoError(t, m.Move("/vol/a", "/vol/b"), "same top-level directory is one volume")

	m.FailMoves(nil)
	assert.NoError(t, m.Move("/f", "/g"))
}

func TestMemFSDeny(t *testing.T) {
	m := NewMemFS()
	m.WriteFile("/locked", []byte("x"))
	m.Deny("/locked")

	assert.ErrorIs(t, m.Remove("/locked"), fs.ErrPermission)
	assert.ErrorIs(t, m.CopyFile("/locked", "/out"), fs.ErrPermission)
}

func TestMemFSRemoveNonEmptyDir(t *testing.T) {
	m := NewMemFS()
	m.WriteFile("/d/child", []byte("x"))

	assert.Error(t, m.Remove("/d"))
	require.NoError(t, m.RemoveAll("/d"))
	assert.False(t, m.Exists("/d"))

	// RemoveAll on a missing path is fine.
	assert.NoError(t, m.RemoveAll("/d"))
}

func TestMemFSReadlink(t *testing.T) {
	m := NewMemFS()
	m.SetLink("/ln", "/target")

	got, ok := m.Readlink("/ln")
	assert.True(t, ok)
	assert.Equal(t, "/target", got)

	_, ok = m.Readlink("/other")
	assert.False(t, ok)
}
