package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/announce"
	"github.com/portal-qssma/portal-service/internal/directory"
	"github.com/portal-qssma/portal-service/internal/domain"
	"github.com/portal-qssma/portal-service/internal/identity"
	"github.com/portal-qssma/portal-service/internal/session"
	apperrors "github.com/portal-qssma/portal-service/pkg/util/errorutil"
)

type fixture struct {
	store *directory.MemoryStore
	auth  *directory.CredentialAuthenticator
	sync  *announce.Synchronizer
	sess  *session.Session
	path  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	store := directory.NewMemoryStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	store.SeedDocument(directory.CollectionCollaborators, "QSS001", map[string]any{
		"name":       "Ana Souza",
		"active":     true,
		"department": "Operations",
	}, now)

	hash, err := directory.HashPassword("manager123", 4)
	require.NoError(t, err)
	store.SeedDocument(directory.CollectionAccounts, "acct-1", map[string]any{
		"email":        "manager@qssma.local",
		"passwordHash": hash,
	}, now)
	store.SeedDocument(directory.CollectionManagers, "mgr-1", map[string]any{
		"name":   "Carlos Lima",
		"email":  "manager@qssma.local",
		"active": true,
	}, now)

	store.SeedDocument(directory.CollectionAnnouncements, "ann-1", map[string]any{
		"title":    "hard hats mandatory",
		"body":     "zone 3 included",
		"active":   true,
		"audience": domain.AudienceAll,
	}, now)

	tokens := directory.NewTokenManager("test-secret", 60)
	auth := directory.NewCredentialAuthenticator(store, nil, tokens, 5, time.Minute, logger)
	resolver := identity.NewResolver(store, auth, logger)
	synchronizer := announce.NewSynchronizer(store, logger)
	path := filepath.Join(t.TempDir(), "session.json")
	fileStore := session.NewFileStore(path, logger)

	return &fixture{
		store: store,
		auth:  auth,
		sync:  synchronizer,
		sess:  session.New(fileStore, resolver, synchronizer, auth, logger),
		path:  path,
	}
}

func TestCollaboratorLoginLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	profile, err := f.sess.LoginCollaborator(ctx, " qss001 ")
	require.NoError(t, err)
	require.Equal(t, "QSS001", profile.BadgeNumber)
	require.Equal(t, domain.RoleCollaborator, profile.Role)

	require.NotNil(t, f.sess.Current())
	require.Equal(t, announce.StateLive, f.sync.State())
	require.Equal(t, 1, f.sync.Count())

	f.sess.Logout(ctx)
	require.Nil(t, f.sess.Current())
	require.Equal(t, announce.StateStopped, f.sync.State())
	require.Equal(t, 0, f.sync.Count())
}

func TestManagerLoginLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	profile, err := f.sess.LoginManager(ctx, "manager@qssma.local", "manager123")
	require.NoError(t, err)
	require.Equal(t, domain.RoleManager, profile.Role)
	require.Equal(t, "Carlos Lima", profile.DisplayName)
	require.Equal(t, "acct-1", profile.ManagerID)

	live, err := f.auth.Authenticated(ctx, profile.ManagerID)
	require.NoError(t, err)
	require.True(t, live)

	f.sess.Logout(ctx)
	live, err = f.auth.Authenticated(ctx, profile.ManagerID)
	require.NoError(t, err)
	require.False(t, live)
}

func TestSecondLoginConflictsWhileResident(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sess.LoginCollaborator(ctx, "QSS001")
	require.NoError(t, err)

	_, err = f.sess.LoginManager(ctx, "manager@qssma.local", "manager123")
	require.True(t, apperrors.HasCode(err, apperrors.CodeSessionActive))

	_, err = f.sess.LoginCollaborator(ctx, "QSS001")
	require.True(t, apperrors.HasCode(err, apperrors.CodeSessionActive))
}

func TestFailedLoginLeavesSessionClean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sess.LoginCollaborator(ctx, "QSS999")
	require.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	require.Nil(t, f.sess.Current())
	require.Equal(t, announce.StateStopped, f.sync.State())

	// The slot is free after a failure; a valid login must succeed.
	_, err = f.sess.LoginCollaborator(ctx, "QSS001")
	require.NoError(t, err)
}

func TestRestoreResumesPersistedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sess.LoginCollaborator(ctx, "QSS001")
	require.NoError(t, err)

	// A second session over the same file simulates a process restart.
	logger := zap.NewNop()
	tokens := directory.NewTokenManager("test-secret", 60)
	auth := directory.NewCredentialAuthenticator(f.store, nil, tokens, 5, time.Minute, logger)
	resolver := identity.NewResolver(f.store, auth, logger)
	synchronizer := announce.NewSynchronizer(f.store, logger)
	rebooted := session.New(session.NewFileStore(f.path, logger), resolver, synchronizer, auth, logger)

	restored := rebooted.Restore(ctx)
	require.NotNil(t, restored)
	require.Equal(t, "QSS001", restored.BadgeNumber)
	require.Equal(t, announce.StateLive, synchronizer.State())
	require.Equal(t, 1, synchronizer.Count())
}

func TestRestoreWithoutRecordStaysLoggedOut(t *testing.T) {
	f := newFixture(t)
	require.Nil(t, f.sess.Restore(context.Background()))
	require.Equal(t, announce.StateStopped, f.sync.State())
}

func TestLogoutWhenLoggedOutIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.sess.Logout(context.Background())
	require.Nil(t, f.sess.Current())
}
