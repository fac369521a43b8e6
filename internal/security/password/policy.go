package password

import (
	"errors"
	"fmt"
)

const DefaultMinimumLength = 6

// MaximumBytes is the longest input bcrypt accepts.
const MaximumBytes = 72

var (
	ErrPasswordTooShort    = errors.New("password too short")
	ErrPasswordMissingChar = errors.New("password must contain at least one letter and one digit")
	ErrPasswordTooLong     = fmt.Errorf("password longer than %d bytes", MaximumBytes)
)

// Policy is the minimum shape a new password must have.
type Policy struct {
	MinLength int
}

func NewPolicy(minLength int) Policy {
	if minLength <= 0 {
		minLength = DefaultMinimumLength
	}
	return Policy{MinLength: minLength}
}

func (p Policy) Check(password string) error {
	if !p.checkLength(password) {
		return fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, p.MinLength)
	}
	if len(password) > MaximumBytes {
		return ErrPasswordTooLong
	}
	if !checkLetterAndDigit(password) {
		return ErrPasswordMissingChar
	}
	return nil
}

func (p Policy) checkLength(password string) bool {
	return len([]rune(password)) >= p.MinLength
}

func checkLetterAndDigit(password string) bool {
	hasLetter := false
	hasDigit := false
	for _, c := range password {
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
			hasLetter = true
		}
		if '0' <= c && c <= '9' {
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
