package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/mehmetcc/credential-session-service/internal/apperr"
)

const uniqueViolationCode = "23505"

var (
	ErrEmailAlreadyExists   = fmt.Errorf("email already exists: %w", apperr.ErrConflict)
	ErrAccountNotFound      = fmt.Errorf("account not found: %w", apperr.ErrNotFound)
	ErrUnresponsiveDatabase = errors.New("error occurred during accessing accounts table")
)

// Repository is the credential store: one record per user, looked up by id,
// by email or listed in full. Session columns are written through the
// session repository of the authentication package.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	ReadByID(ctx context.Context, id uint) (*Account, error)
	ReadByEmail(ctx context.Context, email string) (*Account, error)
	ReadAll(ctx context.Context) ([]Account, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	UpdateProfile(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) Repository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *Account) error {
	err := r.db.WithContext(ctx).Create(account).Error
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("%w: %v", ErrUnresponsiveDatabase, err)
	}
	return nil
}

func (r *accountRepository) ReadByID(ctx context.Context, id uint) (*Account, error) {
	var account Account
	err := r.db.WithContext(ctx).
		First(&account, id).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresponsiveDatabase, err)
	}
	return &account, nil
}

func (r *accountRepository) ReadByEmail(ctx context.Context, email string) (*Account, error) {
	var account Account
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&account).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresponsiveDatabase, err)
	}
	return &account, nil
}

func (r *accountRepository) ReadAll(ctx context.Context) ([]Account, error) {
	accounts := make([]Account, 0)
	if err := r.db.WithContext(ctx).
		Order("id").
		Find(&accounts).
		Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresponsiveDatabase, err)
	}
	return accounts, nil
}

func (r *accountRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("email = ?", email).
		Where("id <> ?", exceptID).
		Count(&count).
		Error; err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnresponsiveDatabase, err)
	}
	return count > 0, nil
}

// UpdateProfile writes the profile columns only. Session columns are left to
// the session repository so a profile edit never resurrects a rotated token.
func (r *accountRepository) UpdateProfile(ctx context.Context, account *Account) error {
	res := r.db.WithContext(ctx).
		Model(account).
		Select("email", "first_name", "last_name").
		Updates(account)
	if res.Error != nil {
		if IsUniqueViolation(res.Error) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("%w: %v", ErrUnresponsiveDatabase, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&Account{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("%w: %v", ErrUnresponsiveDatabase, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// IsUniqueViolation recognises a duplicate key from either supported driver.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
