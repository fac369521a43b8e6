package authentication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mehmetcc/credential-session-service/internal/account"
)

var (
	ErrRecordNotFoundByGivenToken = errors.New("record not found by given token")
	ErrRecordNotFoundByGivenID    = errors.New("record not found by given id")
	ErrUnresponsiveDatabase       = errors.New("error occurred during writing session columns")
)

// SessionRepository reads and writes the session half of an account record:
// the current refresh token and its expiry, always as a pair.
type SessionRepository interface {
	ReadByToken(ctx context.Context, token string) (*account.Account, error)
	Issue(ctx context.Context, accountID uint, token string, expiresAt time.Time) error
	Rotate(ctx context.Context, oldToken, newToken string, newExpiry time.Time) error
	Revoke(ctx context.Context, token string) (bool, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) ReadByToken(ctx context.Context, token string) (*account.Account, error) {
	var record account.Account
	err := r.db.WithContext(ctx).
		Where("refresh_token = ?", token).
		First(&record).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFoundByGivenToken
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresponsiveDatabase, err)
	}
	return &record, nil
}

// Issue overwrites whatever session the account held, so a new login ends
// the previous one.
func (r *sessionRepository) Issue(ctx context.Context, accountID uint, token string, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&account.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"refresh_token":             token,
			"refresh_token_expiry_time": expiresAt,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnresponsiveDatabase, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFoundByGivenID
	}
	return nil
}

// Rotate swaps oldToken for newToken only while oldToken is still the stored
// value. Of two concurrent rotations of the same token exactly one wins; the
// other gets ErrRecordNotFoundByGivenToken.
func (r *sessionRepository) Rotate(
	ctx context.Context,
	oldToken, newToken string,
	newExpiry time.Time,
) error {
	res := r.db.
		WithContext(ctx).
		Model(&account.Account{}).
		Where("refresh_token = ?", oldToken).
		Updates(map[string]interface{}{
			"refresh_token":             newToken,
			"refresh_token_expiry_time": newExpiry,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrUnresponsiveDatabase, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFoundByGivenToken
	}
	return nil
}

// Revoke clears the session holding token. It reports false when no account
// holds it.
func (r *sessionRepository) Revoke(ctx context.Context, token string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&account.Account{}).
		Where("refresh_token = ?", token).
		Updates(map[string]interface{}{
			"refresh_token":             nil,
			"refresh_token_expiry_time": nil,
		})
	if res.Error != nil {
		return false, fmt.Errorf("%w: %v", ErrUnresponsiveDatabase, res.Error)
	}
	return res.RowsAffected > 0, nil
}
