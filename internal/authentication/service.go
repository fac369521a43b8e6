package authentication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mehmetcc/credential-session-service/internal/account"
	"github.com/mehmetcc/credential-session-service/internal/apperr"
	"github.com/mehmetcc/credential-session-service/internal/security/password"
	"github.com/mehmetcc/credential-session-service/internal/security/token"
)

var (
	ErrInvalidCredentials  = fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthenticated)
	ErrInvalidRefreshToken = fmt.Errorf("invalid or expired refresh token: %w", apperr.ErrUnauthenticated)
	ErrWeakPassword        = fmt.Errorf("password does not satisfy policy: %w", apperr.ErrInvalidArgument)
)

var tracer = otel.Tracer("github.com/mehmetcc/credential-session-service/internal/authentication")

// dummyPassword is hashed once so that logins for unknown emails spend the
// same bcrypt time as logins with a wrong password.
const dummyPassword = "credential-session-service-dummy-password-1"

// TokenPair is what every successful register, login and refresh returns.
type TokenPair struct {
	AccessToken        string           `json:"access_token"`
	RefreshToken       string           `json:"refresh_token"`
	AccessTokenExpiry  time.Time        `json:"access_token_expiry"`
	RefreshTokenExpiry time.Time        `json:"refresh_token_expiry"`
	User               *account.Account `json:"user"`
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthenticationService owns the session lifecycle of every account: at most
// one live refresh token per account, replaced on every login and refresh and
// cleared on revoke.
type AuthenticationService interface {
	Register(ctx context.Context, input RegisterInput) (*TokenPair, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) (bool, error)
}

type Option func(*authenticationService)

// WithClock replaces time.Now as the source of the current instant.
func WithClock(now func() time.Time) Option {
	return func(a *authenticationService) {
		a.now = now
	}
}

func WithMetrics(m *Metrics) Option {
	return func(a *authenticationService) {
		a.metrics = m
	}
}

type authenticationService struct {
	accounts   account.Repository
	sessions   SessionRepository
	hasher     password.Hasher
	policy     password.Policy
	codec      *token.Codec
	refreshTTL time.Duration
	logger     *zap.Logger
	metrics    *Metrics
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthenticationService(
	accounts account.Repository,
	sessions SessionRepository,
	hasher password.Hasher,
	policy password.Policy,
	codec *token.Codec,
	logger *zap.Logger,
	opts ...Option,
) AuthenticationService {
	a := &authenticationService{
		accounts:   accounts,
		sessions:   sessions,
		hasher:     hasher,
		policy:     policy,
		codec:      codec,
		refreshTTL: codec.Settings().RefreshTTL,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *authenticationService) Register(ctx context.Context, input RegisterInput) (pair *TokenPair, err error) {
	ctx, span := tracer.Start(ctx, "authentication.Register")
	defer func() { a.finish(span, "register", err) }()

	if err := a.policy.Check(input.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	_, err = a.accounts.ReadByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, account.ErrEmailAlreadyExists
	case !errors.Is(err, account.ErrAccountNotFound):
		a.logger.Error("failed to check email before registration", zap.Error(err))
		return nil, err
	}

	hashed, err := a.hasher.Hash(input.Password)
	if err != nil {
		a.logger.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	refresh, refreshExpiry, err := a.newRefreshToken()
	if err != nil {
		return nil, err
	}
	acc := account.NewAccount(input.Email, hashed, input.FirstName, input.LastName)
	acc.SetSession(refresh, refreshExpiry)
	if err := a.accounts.Create(ctx, acc); err != nil {
		if !errors.Is(err, account.ErrEmailAlreadyExists) {
			a.logger.Error("failed to create account", zap.Error(err))
		}
		return nil, err
	}

	// the subject must be the id the store just assigned
	return a.pairFor(acc, refresh, refreshExpiry)
}

func (a *authenticationService) Login(ctx context.Context, email, plaintext string) (pair *TokenPair, err error) {
	ctx, span := tracer.Start(ctx, "authentication.Login")
	defer func() { a.finish(span, "login", err) }()

	acc, err := a.accounts.ReadByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			a.hasher.Verify(plaintext, a.dummyPasswordHash())
			return nil, ErrInvalidCredentials
		}
		a.logger.Error("failed to load account for login", zap.Error(err))
		return nil, err
	}
	if !a.hasher.Verify(plaintext, acc.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	refresh, refreshExpiry, err := a.newRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := a.sessions.Issue(ctx, acc.ID, refresh, refreshExpiry); err != nil {
		if errors.Is(err, ErrRecordNotFoundByGivenID) {
			return nil, ErrInvalidCredentials
		}
		a.logger.Error("failed to store session", zap.Uint("id", acc.ID), zap.Error(err))
		return nil, err
	}
	if acc, err = a.reload(ctx, acc.ID, ErrInvalidCredentials); err != nil {
		return nil, err
	}

	return a.pairFor(acc, refresh, refreshExpiry)
}

// Refresh exchanges a live refresh token for a brand-new pair. The presented
// token is dead afterwards even though this call succeeded with it.
func (a *authenticationService) Refresh(ctx context.Context, refreshToken string) (pair *TokenPair, err error) {
	ctx, span := tracer.Start(ctx, "authentication.Refresh")
	defer func() { a.finish(span, "refresh", err) }()

	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	acc, err := a.sessions.ReadByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRecordNotFoundByGivenToken) {
			return nil, ErrInvalidRefreshToken
		}
		a.logger.Error("failed to look up refresh token", zap.Error(err))
		return nil, err
	}
	if !acc.SessionActive(a.now()) {
		return nil, ErrInvalidRefreshToken
	}

	refresh, refreshExpiry, err := a.newRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := a.sessions.Rotate(ctx, refreshToken, refresh, refreshExpiry); err != nil {
		if errors.Is(err, ErrRecordNotFoundByGivenToken) {
			return nil, ErrInvalidRefreshToken
		}
		a.logger.Error("failed to rotate refresh token", zap.Uint("id", acc.ID), zap.Error(err))
		return nil, err
	}
	if acc, err = a.reload(ctx, acc.ID, ErrInvalidRefreshToken); err != nil {
		return nil, err
	}

	return a.pairFor(acc, refresh, refreshExpiry)
}

// Revoke ends the session holding refreshToken. An unknown token is not an
// error; it just reports false.
func (a *authenticationService) Revoke(ctx context.Context, refreshToken string) (revoked bool, err error) {
	ctx, span := tracer.Start(ctx, "authentication.Revoke")
	defer func() { a.finish(span, "revoke", err) }()

	if refreshToken == "" {
		return false, nil
	}
	revoked, err = a.sessions.Revoke(ctx, refreshToken)
	if err != nil {
		a.logger.Error("failed to revoke refresh token", zap.Error(err))
		return false, err
	}
	return revoked, nil
}

func (a *authenticationService) finish(span trace.Span, operation string, err error) {
	a.metrics.observe(operation, err)
	if err != nil && !apperr.IsDomain(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, operation+" failed")
	}
	span.End()
}

// reload returns the stored row after a session write so the returned
// profile carries the updated_at the store assigned. A row deleted in the
// meantime surfaces as gone.
func (a *authenticationService) reload(ctx context.Context, id uint, gone error) (*account.Account, error) {
	acc, err := a.accounts.ReadByID(ctx, id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, gone
		}
		a.logger.Error("failed to reload account", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return acc, nil
}

func (a *authenticationService) newRefreshToken() (string, time.Time, error) {
	refresh, err := token.NewRefreshToken()
	if err != nil {
		a.logger.Error("failed to generate refresh token", zap.Error(err))
		return "", time.Time{}, err
	}
	return refresh, a.now().Add(a.refreshTTL), nil
}

func (a *authenticationService) pairFor(acc *account.Account, refresh string, refreshExpiry time.Time) (*TokenPair, error) {
	access, accessExpiry, err := a.codec.Issue(acc.ID, acc.Email)
	if err != nil {
		a.logger.Error("failed to issue access token", zap.Uint("id", acc.ID), zap.Error(err))
		return nil, err
	}
	return &TokenPair{
		AccessToken:        access,
		RefreshToken:       refresh,
		AccessTokenExpiry:  accessExpiry,
		RefreshTokenExpiry: refreshExpiry,
		User:               acc,
	}, nil
}

func (a *authenticationService) dummyPasswordHash() string {
	a.dummyOnce.Do(func() {
		hashed, err := a.hasher.Hash(dummyPassword)
		if err != nil {
			a.logger.Warn("failed to prepare dummy password hash", zap.Error(err))
			return
		}
		a.dummyHash = hashed
	})
	return a.dummyHash
}
