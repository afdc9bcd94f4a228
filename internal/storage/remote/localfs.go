// internal/storage/remote/localfs.go
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/newthinker/ampsync/internal/core"
	"github.com/newthinker/ampsync/internal/partition"
	"go.uber.org/zap"
)

// LocalFS implements Store on a local directory tree, used in dev mode to
// stand in for S3 without network access or API spend.
type LocalFS struct {
	baseDir string
	prefix  string
	log     *zap.Logger
}

// NewLocalFS creates a dev store rooted at baseDir. Objects live under
// baseDir/prefix, mirroring the remote key layout.
func NewLocalFS(baseDir, prefix string, log *zap.Logger) (*LocalFS, error) {
	return &LocalFS{baseDir: baseDir, prefix: prefix, log: log}, nil
}

func (l *LocalFS) dir() string {
	return filepath.Join(l.baseDir, filepath.FromSlash(strings.TrimSuffix(l.prefix, "/")))
}

func (l *LocalFS) objectPath(hourKey string) string {
	return filepath.Join(l.dir(), hourKey+partition.Ext)
}

func (l *LocalFS) List(ctx context.Context) (map[string]struct{}, error) {
	entries, err := os.ReadDir(l.dir())
	if os.IsNotExist(err) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStore, fmt.Errorf("listing %s: %w", l.dir(), err))
	}

	keys := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), partition.Ext) {
			continue
		}
		keys[strings.TrimSuffix(e.Name(), partition.Ext)] = struct{}{}
	}
	l.log.Info("listed dev store partitions", zap.Int("count", len(keys)))
	return keys, nil
}

func (l *LocalFS) Put(ctx context.Context, hourKey, path string) error {
	if err := os.MkdirAll(l.dir(), 0755); err != nil {
		return core.WrapError(core.ErrStore, fmt.Errorf("creating %s: %w", l.dir(), err))
	}

	src, err := os.Open(path)
	if err != nil {
		return core.WrapError(core.ErrStore, fmt.Errorf("opening %s: %w", path, err))
	}
	defer src.Close()

	dst, err := os.Create(l.objectPath(hourKey))
	if err != nil {
		return core.WrapError(core.ErrStore, fmt.Errorf("creating %s: %w", l.objectPath(hourKey), err))
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return core.WrapError(core.ErrStore, fmt.Errorf("copying %s: %w", hourKey, err))
	}

	l.log.Info("copied partition to dev store", zap.String("key", hourKey))
	return nil
}

func (l *LocalFS) Delete(ctx context.Context, hourKey string) error {
	err := os.Remove(l.objectPath(hourKey))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return core.WrapError(core.ErrStore, fmt.Errorf("deleting %s: %w", hourKey, err))
	}
	return nil
}
