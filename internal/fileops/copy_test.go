package fileops

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duopane/duopane/internal/storage"
)

// readAll reads a file's content out of a MemFS.
func readAll(t *testing.T, m *storage.MemFS, path string) []byte {
	t.Helper()
	r, err := m.Open(path)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return data
}

// tempArtifacts lists every TempSuffix file anywhere in the tree.
func tempArtifacts(t *testing.T, m *storage.MemFS) []string {
	t.Helper()
	var found []string
	err := m.Walk("/", func(en storage.Entry) error {
		if !en.IsDir && strings.HasSuffix(en.Name, TempSuffix) {
			found = append(found, en.Path)
		}
		return nil
	})
	require.NoError(t, err)
	return found
}

func TestCopyFile(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/docs/report.txt", []byte("quarterly numbers"))

	require.NoError(t, e.Copy(context.Background(), "/docs/report.txt", "/backup/report.txt", false))

	assert.Equal(t, []byte("quarterly numbers"), readAll(t, m, "/backup/report.txt"))
	assert.Equal(t, []byte("quarterly numbers"), readAll(t, m, "/docs/report.txt"))
	assert.Empty(t, tempArtifacts(t, m))
}

func TestCopyCollisionWithoutOverwrite(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/a.txt", []byte("new"))
	m.WriteFile("/b.txt", []byte("old"))

	err := e.Copy(context.Background(), "/a.txt", "/b.txt", false)
	assert.ErrorIs(t, err, ErrCollision)

	// Destination untouched, no temp residue.
	assert.Equal(t, []byte("old"), readAll(t, m, "/b.txt"))
	assert.Empty(t, tempArtifacts(t, m))
}

func TestCopyOverwriteReplaces(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/a.txt", []byte("new content"))
	m.WriteFile("/b.txt", []byte("old"))

	require.NoError(t, e.Copy(context.Background(), "/a.txt", "/b.txt", true))
	assert.Equal(t, []byte("new content"), readAll(t, m, "/b.txt"))
}

func TestCopyMissingSource(t *testing.T) {
	e, _ := newTestEngine(t)
	err := e.Copy(context.Background(), "/nope", "/dst", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCopyTree(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/proj/main.go", []byte("package main"))
	m.WriteFile("/proj/lib/util.go", []byte("package lib"))
	m.WriteFile("/proj/lib/deep/x.go", []byte("package deep"))

	require.NoError(t, e.Copy(context.Background(), "/proj", "/mirror", false))

	assert.Equal(t, []byte("package main"), readAll(t, m, "/mirror/main.go"))
	assert.Equal(t, []byte("package lib"), readAll(t, m, "/mirror/lib/util.go"))
	assert.Equal(t, []byte("package deep"), readAll(t, m, "/mirror/lib/deep/x.go"))
	assert.Empty(t, tempArtifacts(t, m))
}

func TestCopyPermissionDenied(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/secret.txt", []byte("top"))
	m.Deny("/secret.txt")

	err := e.Copy(context.Background(), "/secret.txt", "/leak.txt", false)
	assert.ErrorIs(t, err, ErrPermission)
	assert.False(t, m.Exists("/leak.txt"))
	assert.Empty(t, tempArtifacts(t, m))
}

func TestCopyCancellationLeavesCompletedFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var copied int
	e, m := newTestEngine(t, WithProgress(func(Progress) {
		copied++
		if copied == 1 {
			cancel()
		}
	}))
	m.WriteFile("/tree/a", []byte("first"))
	m.WriteFile("/tree/b", []byte("second"))
	m.WriteFile("/tree/c", []byte("third"))

	err := e.Copy(ctx, "/tree", "/out", false)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)

	// Exactly the file completed before cancellation, byte-identical.
	assert.Equal(t, []byte("first"), readAll(t, m, "/out/a"))
	assert.False(t, m.Exists("/out/b"))
	assert.False(t, m.Exists("/out/c"))
	assert.Empty(t, tempArtifacts(t, m))
}

func TestCopyCancelledBeforeStart(t *testing.T) {
	e, m := newTestEngine(t)
	m.WriteFile("/f", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Copy(ctx, "/f", "/g", false)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.False(t, m.Exists("/g"))
}
