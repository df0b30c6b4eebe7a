// Package ingress turns a client-submitted data URL into a stored image
// scoped to one request.
package ingress

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-scanner/constants"
	"github.com/joseph-ayodele/label-scanner/internal/common"
)

// StoredImage is the raw image persisted for the lifetime of one request.
type StoredImage struct {
	Path   string
	logger *slog.Logger
}

// Remove deletes the stored image. Safe to call more than once; callers
// defer it so the file goes away on every exit path.
func (s *StoredImage) Remove() {
	if s == nil || s.Path == "" {
		return
	}
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("ingress.remove_failed", "path", s.Path, "error", err)
	}
	s.Path = ""
}

// Decode extracts the raw bytes and MIME type from a data URL
// (data:<mime>;base64,<payload>). An empty value is a missing image; a
// value without a payload segment is invalid input.
func Decode(dataURL string) ([]byte, string, error) {
	if strings.TrimSpace(dataURL) == "" {
		return nil, "", common.ErrMissingImage
	}
	idx := strings.Index(dataURL, ",")
	if idx < 0 {
		return nil, "", fmt.Errorf("%w: data URL has no payload segment", common.ErrInvalidInput)
	}

	header, payload := dataURL[:idx], dataURL[idx+1:]
	mimeType := ""
	if rest, ok := strings.CutPrefix(header, "data:"); ok {
		mimeType, _, _ = strings.Cut(rest, ";")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode base64 image: %v", common.ErrInvalidInput, err)
	}
	if len(data) == 0 {
		return nil, "", common.ErrMissingImage
	}
	return data, mimeType, nil
}

// Store writes request images under a single upload directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates the upload directory if absent.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: upload dir is empty", common.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Save persists the bytes under a unique per-request name so concurrent
// requests never share a path.
func (s *Store) Save(data []byte, mimeType string) (*StoredImage, error) {
	name := uuid.New().String() + "." + constants.ExtFromMIME(mimeType)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write stored image: %w", err)
	}
	s.logger.Debug("ingress.stored", "path", path, "bytes", len(data))
	return &StoredImage{Path: path, logger: s.logger}, nil
}
