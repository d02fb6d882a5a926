package directory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/portal-qssma/portal-service/pkg/util/errorutil"
)

// CredentialAuthenticator verifies manager credentials against the accounts
// collection, issues identity tokens, and keeps an authenticated-session
// marker so a later lookup failure can undo the sign-in. Consecutive
// failures per email are throttled.
//
// Session markers and failure counters live in redis; when no client is
// provided they fall back to process-local maps, which is enough for tests
// and DSN-less dev runs.
type CredentialAuthenticator struct {
	store       Store
	rdb         *redis.Client
	tokens      *TokenManager
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger

	mu            sync.Mutex
	localFailures map[string]int
	localSessions map[string]bool
}

// NewCredentialAuthenticator builds the authenticator. rdb may be nil.
func NewCredentialAuthenticator(store Store, rdb *redis.Client, tokens *TokenManager, maxAttempts int, window time.Duration, logger *zap.Logger) *CredentialAuthenticator {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &CredentialAuthenticator{
		store:         store,
		rdb:           rdb,
		tokens:        tokens,
		maxAttempts:   maxAttempts,
		window:        window,
		logger:        logger,
		localFailures: make(map[string]int),
		localSessions: make(map[string]bool),
	}
}

// Authenticate verifies the credential pair and returns a signed identity.
func (a *CredentialAuthenticator) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewInvalidCredential()
	}

	if a.throttled(ctx, email) {
		return nil, apperrors.NewRateLimited("too many failed attempts; try again later")
	}

	docs, err := a.store.FindMany(ctx, CollectionAccounts, []Filter{Eq("email", email)}, OrderBy{})
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	if len(docs) == 0 {
		a.recordFailure(ctx, email)
		return nil, apperrors.NewInvalidCredential()
	}

	account := docs[0]
	if err := bcrypt.CompareHashAndPassword([]byte(account.String("passwordHash")), []byte(password)); err != nil {
		a.recordFailure(ctx, email)
		return nil, apperrors.NewInvalidCredential()
	}
	a.clearFailures(ctx, email)

	token, expiresAt, err := a.tokens.Generate(account.ID, email)
	if err != nil {
		return nil, apperrors.NewConnectionError(err)
	}
	if err := a.markSession(ctx, account.ID, time.Until(expiresAt)); err != nil {
		return nil, apperrors.NewConnectionError(err)
	}

	return &Identity{UID: account.ID, Email: email, Token: token}, nil
}

// Deauthenticate removes the authenticated-session marker for the identity.
func (a *CredentialAuthenticator) Deauthenticate(ctx context.Context, uid string) error {
	if a.rdb == nil {
		a.mu.Lock()
		delete(a.localSessions, uid)
		a.mu.Unlock()
		return nil
	}
	return a.rdb.Del(ctx, sessionKey(uid)).Err()
}

// Authenticated reports whether the identity still has a live session.
func (a *CredentialAuthenticator) Authenticated(ctx context.Context, uid string) (bool, error) {
	if a.rdb == nil {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.localSessions[uid], nil
	}
	n, err := a.rdb.Exists(ctx, sessionKey(uid)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (a *CredentialAuthenticator) markSession(ctx context.Context, uid string, ttl time.Duration) error {
	if a.rdb == nil {
		a.mu.Lock()
		a.localSessions[uid] = true
		a.mu.Unlock()
		return nil
	}
	return a.rdb.Set(ctx, sessionKey(uid), "1", ttl).Err()
}

func (a *CredentialAuthenticator) throttled(ctx context.Context, email string) bool {
	if a.rdb == nil {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.localFailures[email] >= a.maxAttempts
	}
	count, err := a.rdb.Get(ctx, failureKey(email)).Int()
	if err != nil {
		if err != redis.Nil {
			a.logger.Warn("failure counter unavailable", zap.Error(err))
		}
		return false
	}
	return count >= a.maxAttempts
}

func (a *CredentialAuthenticator) recordFailure(ctx context.Context, email string) {
	if a.rdb == nil {
		a.mu.Lock()
		a.localFailures[email]++
		a.mu.Unlock()
		return
	}
	key := failureKey(email)
	if err := a.rdb.Incr(ctx, key).Err(); err != nil {
		a.logger.Warn("failed to record login failure", zap.Error(err))
		return
	}
	_ = a.rdb.Expire(ctx, key, a.window).Err()
}

func (a *CredentialAuthenticator) clearFailures(ctx context.Context, email string) {
	if a.rdb == nil {
		a.mu.Lock()
		delete(a.localFailures, email)
		a.mu.Unlock()
		return
	}
	_ = a.rdb.Del(ctx, failureKey(email)).Err()
}

func sessionKey(uid string) string {
	return "auth:session:" + uid
}

func failureKey(email string) string {
	return "auth:failures:" + email
}

// HashPassword hashes an account password with the configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
