// Package token issues and checks the two halves of a session: short-lived
// signed access tokens and opaque refresh tokens.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mehmetcc/credential-session-service/internal/apperr"
)

var (
	ErrInvalidToken   = fmt.Errorf("invalid access token: %w", apperr.ErrUnauthenticated)
	ErrMissingSecret  = errors.New("token signing secret is required")
	ErrSigningFailed  = errors.New("could not sign access token")
	ErrInvalidSubject = fmt.Errorf("%w: bad subject", ErrInvalidToken)
)

// Settings is the immutable signing configuration shared by the codec and the
// session service.
type Settings struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AccessClaims is the payload of an access token. The user id travels as the
// registered subject.
type AccessClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and validates access tokens for one issuer/audience pair.
type Codec struct {
	settings Settings
	now      func() time.Time
}

// NewCodec fails when no secret is configured; a codec without one would
// sign tokens anybody can forge.
func NewCodec(settings Settings, now func() time.Time) (*Codec, error) {
	if len(settings.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if now == nil {
		now = time.Now
	}
	return &Codec{settings: settings, now: now}, nil
}

func (c *Codec) Settings() Settings {
	return c.settings
}

// Issue signs an access token for userID and returns it with its expiry.
func (c *Codec) Issue(userID uint, email string) (string, time.Time, error) {
	return IssueAccessToken(
		userID,
		email,
		c.settings.Issuer,
		c.settings.Audience,
		c.settings.Secret,
		c.settings.AccessTTL,
		c.now(),
	)
}

// Validate returns the user id carried by a token. Every failure (bad
// signature, wrong issuer or audience, expiry, malformed subject) is
// reported as ErrInvalidToken.
func (c *Codec) Validate(tokenString string) (uint, error) {
	claims, err := ParseAccessToken(
		tokenString,
		c.settings.Issuer,
		c.settings.Audience,
		c.settings.Secret,
		c.now,
	)
	if err != nil {
		return 0, err
	}
	return SubjectID(claims)
}

func IssueAccessToken(
	userID uint,
	email, issuer, audience string,
	secret []byte,
	ttl time.Duration,
	now time.Time,
) (string, time.Time, error) {
	claims := AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// ParseAccessToken verifies signature, algorithm, issuer, audience and expiry
// with no leeway: a token is dead from its exp second onwards.
func ParseAccessToken(
	tokenString, issuer, audience string,
	secret []byte,
	now func() time.Time,
) (*AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	token, err := parser.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims, ok := token.Claims.(*AccessClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

func SubjectID(claims *AccessClaims) (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidSubject
	}
	return uint(id), nil
}
