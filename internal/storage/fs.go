package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// FSStore writes artifacts below a directory of an afero filesystem
type FSStore struct {
	fs     afero.Fs
	dir    string
	prefix string
}

var _ ArtifactStore = (*FSStore)(nil)

func NewFSStore(fs afero.Fs, dir, prefix string) *FSStore {
	return &FSStore{fs: fs, dir: dir, prefix: prefix}
}

// SaveScreenshot writes the screenshot and returns its file path
func (s *FSStore) SaveScreenshot(ctx context.Context, sessionID, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := filepath.Join(s.dir, filepath.FromSlash(ScreenshotKey(s.prefix, sessionID, name)))
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return "", fmt.Errorf("writing screenshot: %w", err)
	}
	return p, nil
}
