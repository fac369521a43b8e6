package account

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mehmetcc/credential-session-service/internal/apperr"
)

var ErrNotAccountOwner = fmt.Errorf("accounts can only be changed by their owner: %w", apperr.ErrForbidden)

// UpdateAccountInput carries a partial profile update. Empty fields are left
// unchanged, never cleared.
type UpdateAccountInput struct {
	Email     string
	FirstName string
	LastName  string
}

// Service is the profile gateway. Every call comes from an authenticated
// caller; actingID is the subject of the caller's verified access token.
type Service interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	ReadAccountByID(ctx context.Context, id uint) (*Account, bool, error)
	ReadCurrentAccount(ctx context.Context, actingID uint) (*Account, bool, error)
	UpdateAccount(ctx context.Context, actingID, targetID uint, input UpdateAccountInput) (*Account, error)
	DeleteAccount(ctx context.Context, actingID, targetID uint) (bool, error)
}

type accountService struct {
	repo   Repository
	logger *zap.Logger
}

func NewAccountService(repo Repository, logger *zap.Logger) Service {
	return &accountService{
		repo:   repo,
		logger: logger,
	}
}

// AuthorizeSelf allows an operation only when the caller targets its own
// account.
func AuthorizeSelf(actingID, targetID uint) error {
	if actingID == 0 || actingID != targetID {
		return ErrNotAccountOwner
	}
	return nil
}

/** READ */

// ListAccounts returns every profile. Any authenticated caller may list;
// there is no role model to narrow it.
func (s *accountService) ListAccounts(ctx context.Context) ([]Account, error) {
	accounts, err := s.repo.ReadAll(ctx)
	if err != nil {
		s.logger.Error("failed to list accounts", zap.Error(err))
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) ReadAccountByID(ctx context.Context, id uint) (*Account, bool, error) {
	account, err := s.repo.ReadByID(ctx, id)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("failed to get account by ID", zap.Uint("id", id), zap.Error(err))
		return nil, false, err
	}
	return account, true, nil
}

func (s *accountService) ReadCurrentAccount(ctx context.Context, actingID uint) (*Account, bool, error) {
	if actingID == 0 {
		return nil, false, nil
	}
	return s.ReadAccountByID(ctx, actingID)
}

/** UPDATE */
func (s *accountService) UpdateAccount(ctx context.Context, actingID, targetID uint, input UpdateAccountInput) (*Account, error) {
	if err := AuthorizeSelf(actingID, targetID); err != nil {
		s.logger.Warn("rejected account update", zap.Uint("acting_id", actingID), zap.Uint("target_id", targetID))
		return nil, err
	}

	account, err := s.repo.ReadByID(ctx, targetID)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			s.logger.Error("failed to load account for update", zap.Uint("id", targetID), zap.Error(err))
		}
		return nil, err
	}

	if input.Email != "" && input.Email != account.Email {
		taken, err := s.repo.EmailTaken(ctx, input.Email, account.ID)
		if err != nil {
			s.logger.Error("failed to check email uniqueness", zap.Uint("id", targetID), zap.Error(err))
			return nil, err
		}
		if taken {
			return nil, ErrEmailAlreadyExists
		}
		account.Email = input.Email
	}
	if input.FirstName != "" {
		account.FirstName = input.FirstName
	}
	if input.LastName != "" {
		account.LastName = input.LastName
	}

	if err := s.repo.UpdateProfile(ctx, account); err != nil {
		if !apperr.IsDomain(err) {
			s.logger.Error("failed to update account in repository", zap.Uint("id", targetID), zap.Error(err))
		}
		return nil, err
	}
	return account, nil
}

/** DELETE */
func (s *accountService) DeleteAccount(ctx context.Context, actingID, targetID uint) (bool, error) {
	if err := AuthorizeSelf(actingID, targetID); err != nil {
		s.logger.Warn("rejected account deletion", zap.Uint("acting_id", actingID), zap.Uint("target_id", targetID))
		return false, err
	}

	deleted, err := s.repo.Delete(ctx, targetID)
	if err != nil {
		s.logger.Error("failed to delete account", zap.Uint("id", targetID), zap.Error(err))
		return false, err
	}
	return deleted, nil
}
