package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "session.json"), zap.NewNop())
}

func TestSaveRestoreCollaborator(t *testing.T) {
	store := newTestStore(t)
	store.Save(&domain.Profile{
		Role:        domain.RoleCollaborator,
		BadgeNumber: "QSS042",
		DisplayName: "Ana Souza",
		JobTitle:    "Field Technician",
		Department:  "Operations",
	})

	restored := store.Restore()
	require.NotNil(t, restored)
	require.Equal(t, domain.RoleCollaborator, restored.Role)
	require.Equal(t, "QSS042", restored.BadgeNumber)
	require.Equal(t, "Ana Souza", restored.DisplayName)
	require.Equal(t, "Field Technician", restored.JobTitle)
	require.Equal(t, "Operations", restored.Department)
	require.Empty(t, restored.Email)
}

func TestSaveRestoreManager(t *testing.T) {
	store := newTestStore(t)
	store.Save(&domain.Profile{
		Role:        domain.RoleManager,
		Email:       "manager@qssma.local",
		ManagerID:   "uid-1",
		DisplayName: "Carlos Lima",
	})

	restored := store.Restore()
	require.NotNil(t, restored)
	require.Equal(t, domain.RoleManager, restored.Role)
	require.Equal(t, "manager@qssma.local", restored.Email)
	require.Equal(t, "uid-1", restored.ManagerID)
	require.Equal(t, domain.DefaultManagerJobTitle, restored.JobTitle)
	require.Equal(t, domain.DefaultManagerDepartment, restored.Department)
}

func TestRestoreMissingFileYieldsNil(t *testing.T) {
	require.Nil(t, newTestStore(t).Restore())
}

func TestRestoreCorruptRecordYieldsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewFileStore(path, zap.NewNop())
	require.Nil(t, store.Restore())
}

func TestRestoreWithoutRequiredKeyYieldsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"role":"COLLABORATOR","display_name":"Ana"}`), 0o644))

	store := NewFileStore(path, zap.NewNop())
	require.Nil(t, store.Restore())
}

func TestRestoreUnknownRoleYieldsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"role":"INTERN","badge_number":"X"}`), 0o644))

	store := NewFileStore(path, zap.NewNop())
	require.Nil(t, store.Restore())
}

func TestSaveReplacesPreviousRecord(t *testing.T) {
	store := newTestStore(t)
	store.Save(&domain.Profile{Role: domain.RoleCollaborator, BadgeNumber: "QSS001"})
	store.Save(&domain.Profile{Role: domain.RoleManager, Email: "m@qssma.local", ManagerID: "uid-2"})

	restored := store.Restore()
	require.NotNil(t, restored)
	require.Equal(t, domain.RoleManager, restored.Role)
	require.Empty(t, restored.BadgeNumber)
}

func TestClearRemovesRecordAndIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	store.Save(&domain.Profile{Role: domain.RoleCollaborator, BadgeNumber: "QSS001"})

	store.Clear()
	require.Nil(t, store.Restore())
	store.Clear()
}
