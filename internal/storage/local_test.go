package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxLogoBytes = 2 << 20

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n")
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0}
	gifHeader  = []byte("GIF89a")
)

func TestSaveLogoRejectsOversizedBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, maxLogoBytes)

	_, err := store.SaveLogo("image/png", 3<<20, bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrTooLarge)

	assertNoFiles(t, dir)
}

func TestSaveLogoRejectsUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, maxLogoBytes)

	_, err := store.SaveLogo("application/pdf", 100, bytes.NewReader([]byte("%PDF")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	assertNoFiles(t, dir)
}

// A declared image type over a non-image body must be rejected: the
// sniffed content decides, not the client header.
func TestSaveLogoRejectsSpoofedContentType(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, maxLogoBytes)

	pdf := []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	_, err := store.SaveLogo("image/png", int64(len(pdf)), bytes.NewReader(pdf))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	assertNoFiles(t, dir)
}

func TestSaveLogoWritesFile(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, maxLogoBytes)

	content := append(append([]byte{}, pngHeader...), []byte("rest of the image")...)
	url, err := store.SaveLogo("image/png", int64(len(content)), bytes.NewReader(content))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/logos/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	onDisk := filepath.Join(dir, "logos", filepath.Base(url))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestSaveLogoJpegExtension(t *testing.T) {
	store := NewLocalStore(t.TempDir(), maxLogoBytes)

	url, err := store.SaveLogo("image/jpeg", int64(len(jpegHeader)), bytes.NewReader(jpegHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)
}

// A client can declare a small size and stream more; the capped copy must
// catch it and remove the partial file.
func TestSaveLogoRemovesFileWhenStreamExceedsLimit(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, 16)

	body := append(append([]byte{}, gifHeader...), bytes.Repeat([]byte("x"), 64)...)
	_, err := store.SaveLogo("image/gif", 10, bytes.NewReader(body))
	assert.ErrorIs(t, err, ErrTooLarge)

	assertNoFiles(t, filepath.Join(dir, "logos"))
}

func assertNoFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	for _, e := range entries {
		if !e.IsDir() {
			t.Fatalf("unexpected file on disk: %s", e.Name())
		}
		assertNoFiles(t, filepath.Join(dir, e.Name()))
	}
}
