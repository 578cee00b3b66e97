package mappingstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flowfolio/portfolio-server-go/internal/model"
)

// Store is the component-mapping document: a JSON array of
// {siteName, componentName, isActive, updatedAt} records.
//
// The set is small and admin-written, so the whole document is held in
// memory behind a mutex and flushed wholesale on every change. Writes are
// last-write-wins; concurrent admin edits are an accepted risk under the
// single-admin assumption.
type Store interface {
	List() []model.ComponentMapping
	FindActive(siteName string) (*model.ComponentMapping, bool)
	Save(params model.SaveMappingParams) (*model.ComponentMapping, error)
	Delete(siteName string) (bool, error)
}

type fileStore struct {
	path     string
	mu       sync.RWMutex
	mappings []model.ComponentMapping
	now      func() time.Time
}

// Open loads the mapping document at path, creating an empty store when the
// file does not exist yet.
func Open(path string) (Store, error) {
	s := &fileStore{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Info().Str("path", path).Msg("mapping file absent, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}

	if err := json.Unmarshal(data, &s.mappings); err != nil {
		return nil, fmt.Errorf("parse mapping file %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("count", len(s.mappings)).Msg("mapping file loaded")
	return s, nil
}

func (s *fileStore) List() []model.ComponentMapping {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ComponentMapping, len(s.mappings))
	copy(out, s.mappings)
	return out
}

func (s *fileStore) FindActive(siteName string) (*model.ComponentMapping, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.mappings {
		if s.mappings[i].SiteName == siteName && s.mappings[i].IsActive {
			m := s.mappings[i]
			return &m, true
		}
	}
	return nil, false
}

// Save replaces any existing mapping for the site wholesale. The previous
// record is superseded, not merged: at most one active mapping per siteName.
func (s *fileStore) Save(params model.SaveMappingParams) (*model.ComponentMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mapping := model.ComponentMapping{
		SiteName:      params.SiteName,
		ComponentName: params.ComponentName,
		IsActive:      true,
		UpdatedAt:     s.now(),
	}

	replaced := false
	for i := range s.mappings {
		if s.mappings[i].SiteName == params.SiteName {
			s.mappings[i] = mapping
			replaced = true
			break
		}
	}
	if !replaced {
		s.mappings = append(s.mappings, mapping)
	}

	// The in-memory record stays authoritative even when the document write
	// fails; persistence failure is reported but must not invalidate the
	// mapping for running resolutions.
	return &mapping, s.flush()
}

func (s *fileStore) Delete(siteName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.mappings {
		if s.mappings[i].SiteName == siteName {
			s.mappings = append(s.mappings[:i], s.mappings[i+1:]...)
			return true, s.flush()
		}
	}
	return false, nil
}

// flush writes the document atomically: temp file in the same directory,
// then rename. Callers hold the write lock.
func (s *fileStore) flush() error {
	data, err := json.MarshalIndent(s.mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mappings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mapping dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".mappings-*.json")
	if err != nil {
		return fmt.Errorf("create temp mapping file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write mapping file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close mapping file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace mapping file: %w", err)
	}
	return nil
}
