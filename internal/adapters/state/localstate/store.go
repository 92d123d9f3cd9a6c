// Package localstate keeps the address to id mapping in a local JSON file.
package localstate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/core/ports"
	"github.com/olusolaa/webstack/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Store struct {
	path   string
	logger ports.Logger
	mu     sync.Mutex
}

func NewStore(path string, logger ports.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.WithFields(map[string]any{"component": "localstate", "state_file": path}),
	}
}

func (s *Store) Location() string { return s.path }

// Load returns a new state with a fresh lineage when the file does not
// exist yet.
func (s *Store) Load(ctx context.Context) (*domain.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Debugf(ctx, "No state file yet, starting empty state")
		return domain.NewState(uuid.NewString()), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStateReadError, "failed to read state file")
	}

	var st domain.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeStateParseError,
			fmt.Sprintf("state file %s is not valid JSON", s.path),
			"Restore the file from backup or remove it and run import.")
	}
	if st.Version > domain.StateVersion {
		return nil, errors.NewUserFacing(errors.CodeStateParseError,
			fmt.Sprintf("state file %s has version %d, newer than supported version %d", s.path, st.Version, domain.StateVersion),
			"Upgrade webstack.")
	}
	if st.Lineage == "" {
		st.Lineage = uuid.NewString()
	}
	if st.Outputs == nil {
		st.Outputs = map[string]string{}
	}
	s.logger.Debugf(ctx, "Loaded state serial %d with %d resources", st.Serial, len(st.Resources))
	return &st, nil
}

// Save bumps the serial and replaces the file atomically.
func (s *Store) Save(ctx context.Context, st *domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.Version = domain.StateVersion
	st.Serial++
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeStateWriteError, "failed to encode state")
	}
	raw = append(raw, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.CodeStateWriteError, "failed to create temporary state file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.CodeStateWriteError, "failed to write state")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.CodeStateWriteError, "failed to flush state")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.CodeStateWriteError, "failed to close state")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.Wrap(err, errors.CodeStateWriteError, "failed to set state file mode")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrap(err, errors.CodeStateWriteError, "failed to replace state file")
	}
	s.logger.Debugf(ctx, "Saved state serial %d", st.Serial)
	return nil
}
