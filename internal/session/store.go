// Package session owns the single resident profile: durable persistence
// across restarts and the login/logout lifecycle around it.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/domain"
)

// Keys of the flat persisted record. A flat layout tolerates partial-read
// corruption: a missing key means "field absent", never a parse failure.
const (
	keyRole        = "role"
	keyBadgeNumber = "badge_number"
	keyEmail       = "email"
	keyManagerID   = "manager_id"
	keyDisplayName = "display_name"
	keyJobTitle    = "job_title"
	keyDepartment  = "department"
)

// FileStore persists exactly one profile as a flat key-value JSON file with
// replace-or-clear semantics. Operations never fail from the caller's point
// of view: a write error degrades to "log in again after restart" and is
// only logged. All operations are serialized, so a restore racing a clear
// sees either the full old record or nothing.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewFileStore builds a store persisting at path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Save persists every field needed to reconstruct the profile without a
// remote call. The previous record is replaced atomically.
func (s *FileStore) Save(profile *domain.Profile) {
	if profile == nil {
		return
	}

	record := map[string]string{
		keyRole:        string(profile.Role),
		keyDisplayName: profile.DisplayName,
		keyJobTitle:    profile.JobTitle,
		keyDepartment:  profile.Department,
	}
	switch profile.Role {
	case domain.RoleCollaborator:
		record[keyBadgeNumber] = profile.BadgeNumber
	case domain.RoleManager:
		record[keyEmail] = profile.Email
		record[keyManagerID] = profile.ManagerID
	}

	payload, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn("failed to encode session record", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAtomic(s.path, payload); err != nil {
		s.logger.Warn("failed to persist session record", zap.Error(err))
	}
}

// Restore reconstructs the persisted profile. Partial or corrupt state is
// treated as absent, not as an error.
func (s *FileStore) Restore() *domain.Profile {
	s.mu.Lock()
	payload, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		return nil
	}

	var record map[string]string
	if err := json.Unmarshal(payload, &record); err != nil {
		s.logger.Warn("discarding corrupt session record", zap.Error(err))
		return nil
	}

	profile := &domain.Profile{
		Role:        domain.Role(record[keyRole]),
		DisplayName: record[keyDisplayName],
		JobTitle:    record[keyJobTitle],
		Department:  record[keyDepartment],
	}

	switch profile.Role {
	case domain.RoleCollaborator:
		profile.BadgeNumber = record[keyBadgeNumber]
		if profile.BadgeNumber == "" {
			return nil
		}
		if profile.JobTitle == "" {
			profile.JobTitle = domain.DefaultCollaboratorJobTitle
		}
		if profile.Department == "" {
			profile.Department = domain.DefaultCollaboratorDepartment
		}
	case domain.RoleManager:
		profile.Email = record[keyEmail]
		profile.ManagerID = record[keyManagerID]
		if profile.Email == "" {
			return nil
		}
		if profile.JobTitle == "" {
			profile.JobTitle = domain.DefaultManagerJobTitle
		}
		if profile.Department == "" {
			profile.Department = domain.DefaultManagerDepartment
		}
	default:
		// No role marker, nothing to restore.
		return nil
	}

	return profile
}

// Clear removes the persisted record.
func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to clear session record", zap.Error(err))
	}
}

// writeAtomic replaces path via a temp file and rename so readers never see
// a half-written record.
func writeAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
