package output

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Downloader stores an exported document and returns where it went.
type Downloader interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// FileDownloader writes exports into Dir on Fs.
type FileDownloader struct {
	Fs  afero.Fs
	Dir string
}

// NewFileDownloader returns a downloader on the OS filesystem.
func NewFileDownloader(dir string) *FileDownloader {
	return &FileDownloader{Fs: afero.NewOsFs(), Dir: dir}
}

func (d *FileDownloader) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fs := d.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
