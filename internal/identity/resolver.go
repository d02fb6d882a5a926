// Package identity turns user-supplied credentials into validated profiles.
package identity

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/portal-qssma/portal-service/internal/directory"
	"github.com/portal-qssma/portal-service/internal/domain"
	apperrors "github.com/portal-qssma/portal-service/pkg/util/errorutil"
)

// Resolver validates badge numbers and manager credentials against the
// directory service. It never returns a partial profile: either the lookup
// fully succeeds or a typed failure is returned and no state is left behind.
type Resolver struct {
	store  directory.Store
	auth   directory.Authenticator
	logger *zap.Logger
}

// NewResolver builds a resolver.
func NewResolver(store directory.Store, auth directory.Authenticator, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, auth: auth, logger: logger}
}

// ResolveCollaborator looks up a collaborator by badge number. Input is
// trimmed and uppercased before the lookup, so " qss001 " and "QSS001"
// resolve identically. Missing display fields receive the documented
// placeholder defaults.
func (r *Resolver) ResolveCollaborator(ctx context.Context, badgeNumber string) (*domain.Profile, error) {
	badge := strings.ToUpper(strings.TrimSpace(badgeNumber))
	if badge == "" {
		return nil, apperrors.NewValidationError("badge number required", nil)
	}

	doc, err := r.store.FindOne(ctx, directory.CollectionCollaborators, badge)
	if err != nil {
		if errors.Is(err, directory.ErrNoDocument) {
			return nil, apperrors.NewNotFound("collaborator", map[string]any{"badge_number": badge})
		}
		return nil, apperrors.NewConnectionError(err)
	}
	if !doc.Bool("active") {
		return nil, apperrors.NewInactive("collaborator")
	}

	return &domain.Profile{
		Role:        domain.RoleCollaborator,
		BadgeNumber: badge,
		DisplayName: doc.String("name"),
		JobTitle:    orDefault(doc.String("jobTitle"), domain.DefaultCollaboratorJobTitle),
		Department:  orDefault(doc.String("department"), domain.DefaultCollaboratorDepartment),
	}, nil
}

// ResolveManager authenticates the credential pair, then looks up the
// manager record for the authenticated identity. When authentication
// succeeds but no manager record exists, the sign-in is undone before
// NotAuthorized is returned, so no authenticated session dangles without a
// profile.
func (r *Resolver) ResolveManager(ctx context.Context, email, password string) (*domain.Profile, error) {
	identity, err := r.auth.Authenticate(ctx, email, password)
	if err != nil {
		return nil, mapAuthError(err)
	}

	docs, err := r.store.FindMany(ctx, directory.CollectionManagers,
		[]directory.Filter{directory.Eq("email", identity.Email)}, directory.OrderBy{})
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	if len(docs) == 0 {
		if derr := r.auth.Deauthenticate(ctx, identity.UID); derr != nil {
			r.logger.Warn("failed to undo authentication", zap.String("uid", identity.UID), zap.Error(derr))
		}
		return nil, apperrors.NewNotAuthorized("no manager record for authenticated identity")
	}

	record := docs[0]
	return &domain.Profile{
		Role:        domain.RoleManager,
		Email:       identity.Email,
		ManagerID:   identity.UID,
		DisplayName: record.String("name"),
		JobTitle:    orDefault(record.String("jobTitle"), domain.DefaultManagerJobTitle),
		Department:  orDefault(record.String("department"), domain.DefaultManagerDepartment),
	}, nil
}

// mapAuthError keeps the typed authenticator failures and folds anything
// unmapped into a connection error.
func mapAuthError(err error) error {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidCredential, apperrors.CodeRateLimited, apperrors.CodeConnectionError:
		return err
	default:
		return apperrors.NewConnectionError(err)
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
