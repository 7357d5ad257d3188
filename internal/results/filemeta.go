package results

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hypotest/domain/core"
	"hypotest/internal/errors"
	"hypotest/ports"
)

const metaExt = ".meta"

// FileMetaStore keeps one JSON document per task in <dir>/<task>.meta
type FileMetaStore struct {
	dir string
}

// NewFileMetaStore creates a metadata store rooted at dir
func NewFileMetaStore(dir string) *FileMetaStore {
	return &FileMetaStore{dir: dir}
}

func (s *FileMetaStore) path(id core.TaskID) string {
	return filepath.Join(s.dir, id.String()+metaExt)
}

// Put writes the metadata atomically
func (s *FileMetaStore) Put(ctx context.Context, meta ports.ResultMeta) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode result metadata: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".meta-*")
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close metadata file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(meta.TaskID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store metadata file: %w", err)
	}
	return nil
}

// Get reads the metadata for id
func (s *FileMetaStore) Get(ctx context.Context, id core.TaskID) (*ports.ResultMeta, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, errors.NotFound("result metadata " + id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	var meta ports.ResultMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for %s: %w", id, err)
	}
	return &meta, nil
}

// DeleteBefore removes every .meta file created before cutoff. Files whose
// content cannot be decoded are judged by their modification time.
func (s *FileMetaStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to list result directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), metaExt) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		created, ok := s.createdAt(path, entry)
		if !ok || !created.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (s *FileMetaStore) createdAt(path string, entry os.DirEntry) (time.Time, bool) {
	if data, err := os.ReadFile(path); err == nil {
		var meta ports.ResultMeta
		if json.Unmarshal(data, &meta) == nil && !meta.CreatedAt.IsZero() {
			return meta.CreatedAt, true
		}
	}
	info, err := entry.Info()
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
