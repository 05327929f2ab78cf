package archive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docviz/docviz/pkg/errors"
)

// FileStore archives snapshots as JSON files, one per build id.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed snapshot store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create archive dir")
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the archive directory.
func (s *FileStore) Dir() string { return s.dir }

// Put archives a snapshot, overwriting any previous one for the same build.
func (s *FileStore) Put(ctx context.Context, snap Snapshot) error {
	if snap.BuildID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "snapshot has no build id")
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
	}
	if err := os.WriteFile(s.path(snap.BuildID), data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write snapshot")
	}
	return nil
}

// Get retrieves a snapshot by build id.
func (s *FileStore) Get(ctx context.Context, buildID string) (Snapshot, error) {
	data, err := os.ReadFile(s.path(buildID))
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, errors.New(errors.ErrCodeNotFound, "no snapshot for build %s", buildID)
		}
		return Snapshot{}, errors.Wrap(errors.ErrCodeInternal, err, "read snapshot")
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot %s", buildID)
	}
	return snap, nil
}

// List returns snapshot metadata, newest first. Unreadable entries are
// skipped rather than failing the listing.
func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read archive dir")
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		snap, err := s.Get(ctx, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			BuildID:   snap.BuildID,
			CreatedAt: snap.CreatedAt,
			Vertices:  snap.Vertices,
			Edges:     snap.Edges,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close(ctx context.Context) error { return nil }

func (s *FileStore) path(buildID string) string {
	return filepath.Join(s.dir, buildID+".json")
}

var _ Store = (*FileStore)(nil)
