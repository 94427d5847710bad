package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"lastochka/messenger/internal/apperr"
)

const passwordPunctuation = "!@#$%^&*()_+-=[]{}|;':\",.<>?/`~"

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword применяет парольную политику. Каждый отказ несёт свой
// код причины password-policy/<reason>.
func ValidatePassword(password, username, email string) error {
	// Длина считается в символах: многобайтный пароль короче от этого не станет.
	if utf8.RuneCountInString(password) < 8 {
		return apperr.PasswordPolicy("too-short")
	}

	var hasDigit, hasLetter, hasPunct bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
		case strings.ContainsRune(passwordPunctuation, r):
			hasPunct = true
		}
	}

	if !hasDigit {
		return apperr.PasswordPolicy("no-digit")
	}
	if !hasLetter {
		return apperr.PasswordPolicy("no-letter")
	}
	if !hasPunct {
		return apperr.PasswordPolicy("no-punctuation")
	}
	if strings.EqualFold(password, email) {
		return apperr.PasswordPolicy("equals-email")
	}
	if strings.EqualFold(password, username) {
		return apperr.PasswordPolicy("equals-username")
	}

	return nil
}
