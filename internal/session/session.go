package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/announce"
	"github.com/portal-qssma/portal-service/internal/directory"
	"github.com/portal-qssma/portal-service/internal/domain"
	"github.com/portal-qssma/portal-service/internal/identity"
	apperrors "github.com/portal-qssma/portal-service/pkg/util/errorutil"
)

// Session coordinates the resident profile with the identity resolver, the
// durable store, and the announcement synchronizer. At most one profile is
// resident; switching roles requires an explicit logout first. All lifecycle
// calls are serialized, so a rapid double logout or a login racing a logout
// never interleaves partial state.
type Session struct {
	store    *FileStore
	resolver *identity.Resolver
	sync     *announce.Synchronizer
	auth     directory.Authenticator
	logger   *zap.Logger

	mu      sync.Mutex
	current *domain.Profile
}

// New builds a logged-out session.
func New(store *FileStore, resolver *identity.Resolver, sync *announce.Synchronizer, auth directory.Authenticator, logger *zap.Logger) *Session {
	return &Session{
		store:    store,
		resolver: resolver,
		sync:     sync,
		auth:     auth,
		logger:   logger,
	}
}

// Current returns the resident profile, or nil when logged out.
func (s *Session) Current() *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

// Restore loads a persisted profile on boot. The identity resolver is
// skipped; the synchronizer starts directly with the restored audience
// scope. A missing or corrupt record simply leaves the session logged out.
func (s *Session) Restore(ctx context.Context) *domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := s.store.Restore()
	if profile == nil {
		return nil
	}
	s.current = profile
	if err := s.sync.Start(ctx, profile.AudienceScope()); err != nil {
		s.logger.Warn("announcement sync not started on restore", zap.Error(err))
	}
	s.logger.Info("session restored",
		zap.String("role", string(profile.Role)),
		zap.String("display_name", profile.DisplayName))

	copied := *profile
	return &copied
}

// LoginCollaborator resolves a badge number and makes the resulting profile
// resident. Fails with SESSION_ACTIVE while another profile is resident.
func (s *Session) LoginCollaborator(ctx context.Context, badgeNumber string) (*domain.Profile, error) {
	return s.login(ctx, func() (*domain.Profile, error) {
		return s.resolver.ResolveCollaborator(ctx, badgeNumber)
	})
}

// LoginManager resolves manager credentials and makes the resulting profile
// resident.
func (s *Session) LoginManager(ctx context.Context, email, password string) (*domain.Profile, error) {
	return s.login(ctx, func() (*domain.Profile, error) {
		return s.resolver.ResolveManager(ctx, email, password)
	})
}

func (s *Session) login(ctx context.Context, resolve func() (*domain.Profile, error)) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil, apperrors.NewSessionActive()
	}

	profile, err := resolve()
	if err != nil {
		return nil, err
	}

	s.store.Save(profile)
	s.current = profile
	if err := s.sync.Start(ctx, profile.AudienceScope()); err != nil {
		s.logger.Warn("announcement sync not started", zap.Error(err))
	}
	s.logger.Info("session opened",
		zap.String("role", string(profile.Role)),
		zap.String("display_name", profile.DisplayName))

	copied := *profile
	return &copied, nil
}

// Logout stops the announcement subscription, clears the persisted record,
// and for managers undoes the authentication side effect. A no-op when
// already logged out.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}

	s.sync.Stop()
	s.store.Clear()
	if s.current.Role == domain.RoleManager && s.current.ManagerID != "" {
		if err := s.auth.Deauthenticate(ctx, s.current.ManagerID); err != nil {
			s.logger.Warn("failed to deauthenticate manager", zap.Error(err))
		}
	}
	s.logger.Info("session closed", zap.String("role", string(s.current.Role)))
	s.current = nil
}
