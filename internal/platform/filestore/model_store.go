// Package filestore keeps trained forecast models as JSON files, one file per
// version under <root>/<model name>/.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/store"
)

const versionPrefix = "v"

// ModelStore implements store.ModelStore on the local filesystem.
type ModelStore struct {
	root   string
	mu     sync.Mutex
	logger *slog.Logger
}

var _ store.ModelStore = (*ModelStore)(nil)

// NewModelStore creates a store rooted at dir. The directory is created on
// first save.
func NewModelStore(dir string, logger *slog.Logger) *ModelStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelStore{
		root:   dir,
		logger: logger.With(slog.String("component", "file_model_store")),
	}
}

// Save implements store.ModelStore. The artifact is written to a temporary
// file and renamed into place.
func (s *ModelStore) Save(ctx context.Context, m *domain.TrainedModel) error {
	if err := m.Validate(); err != nil {
		return err
	}
	dir, err := s.modelDir(m.Name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return store.NewStoreError("forecast_model", "save", "mkdir failed", err)
	}

	path := filepath.Join(dir, fileName(m.Version))
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s v%d", store.ErrModelVersionExists, m.Name, m.Version)
	}

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model artifact: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return store.NewStoreError("forecast_model", "save", "write failed", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return store.NewStoreError("forecast_model", "save", "rename failed", err)
	}

	s.logger.Info("forecast model saved",
		slog.String("model_name", m.Name),
		slog.Int("version", m.Version),
		slog.String("path", path))
	return nil
}

// Load implements store.ModelStore.
func (s *ModelStore) Load(ctx context.Context, name string) (*domain.TrainedModel, error) {
	dir, err := s.modelDir(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrModelNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("forecast_model", "load", "read dir failed", err)
	}

	latest, latestFile := 0, ""
	for _, e := range entries {
		if v, ok := parseFileName(e.Name()); ok && v > latest {
			latest, latestFile = v, e.Name()
		}
	}
	if latestFile == "" {
		return nil, store.ErrModelNotFound
	}

	b, err := os.ReadFile(filepath.Join(dir, latestFile))
	if err != nil {
		return nil, store.NewStoreError("forecast_model", "load", "read failed", err)
	}
	var m domain.TrainedModel
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %w", latestFile, err)
	}
	return &m, nil
}

func (s *ModelStore) modelDir(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", domain.ErrModelNameEmpty
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", domain.NewInputError("model_name", "must not contain path separators")
	}
	return filepath.Join(s.root, name), nil
}

func fileName(version int) string {
	return fmt.Sprintf("%s%06d.json", versionPrefix, version)
}

func parseFileName(name string) (int, bool) {
	if !strings.HasPrefix(name, versionPrefix) || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, versionPrefix), ".json"))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
