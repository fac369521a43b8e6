package account

import (
	"time"
)

// Account is the user credential record, the only persisted entity.
// RefreshToken and RefreshTokenExpiryTime are set and cleared together; both
// are non-nil exactly while the account holds a live session.
// swagger:model Account
type Account struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	FirstName string    `json:"first_name" gorm:"size:100;not null"`
	LastName  string    `json:"last_name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
	// Password hash (hidden from JSON)
	PasswordHash string `json:"-" gorm:"size:500;not null"`
	// Current refresh token (hidden from JSON)
	RefreshToken           *string    `json:"-" gorm:"size:500;index"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
}

// NewAccount initializes an Account holding an already hashed password.
func NewAccount(email, passwordHash, firstName, lastName string) *Account {
	return &Account{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
	}
}

// SetSession stores a refresh token and its expiry as one unit.
func (a *Account) SetSession(refreshToken string, expiresAt time.Time) {
	a.RefreshToken = &refreshToken
	a.RefreshTokenExpiryTime = &expiresAt
}

func (a *Account) ClearSession() {
	a.RefreshToken = nil
	a.RefreshTokenExpiryTime = nil
}

// SessionActive reports whether the stored refresh token is still usable at
// now. The expiry instant itself already counts as expired.
func (a *Account) SessionActive(now time.Time) bool {
	if a.RefreshToken == nil || a.RefreshTokenExpiryTime == nil {
		return false
	}
	return a.RefreshTokenExpiryTime.After(now)
}
