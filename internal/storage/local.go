package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file exceeds the size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// LocalStore saves uploaded files under a base directory on local disk.
// Files are served by an external static-file mechanism; the store only
// returns the public path recorded on the owning row.
type LocalStore struct {
	baseDir  string
	maxBytes int64
}

func NewLocalStore(baseDir string, maxBytes int64) *LocalStore {
	return &LocalStore{baseDir: baseDir, maxBytes: maxBytes}
}

// SaveLogo validates the declared size and content type before touching
// the disk, then streams the file to uploads/logos under a generated
// unique name. The declared header is client-controlled, so the leading
// bytes are sniffed and the sniffed type decides the stored extension.
// A size lie in the declared header is still caught: the copy is capped
// and the partial file removed.
func (s *LocalStore) SaveLogo(contentType string, size int64, r io.Reader) (string, error) {
	if size > s.maxBytes {
		return "", ErrTooLarge
	}
	if _, ok := imageExtensions[contentType]; !ok {
		return "", ErrUnsupportedType
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("read logo header: %w", err)
	}
	head = head[:n]
	ext, ok := imageExtensions[http.DetectContentType(head)]
	if !ok {
		return "", ErrUnsupportedType
	}

	dir := filepath.Join(s.baseDir, "logos")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create logo file: %w", err)
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	written, err := io.Copy(f, io.LimitReader(body, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write logo file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(dst)
		return "", ErrTooLarge
	}

	return path.Join("/uploads/logos", name), nil
}
