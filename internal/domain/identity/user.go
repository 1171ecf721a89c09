package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/debttrack/backend/internal/domain/shared"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for credential hashing
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltLen      = 16
)

// User represents a registered account. PasswordHash holds the derived
// credential as "hex(salt).hex(hash)" in a single column; it must be stripped
// before a user ever leaves the domain services.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
}

// NewUser validates the input and derives the stored credential from a fresh
// random salt.
func NewUser(email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, shared.NewValidationError("Password is required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		Email:        email,
		PasswordHash: hash,
	}, nil
}

// VerifyPassword recomputes the hash with the stored salt and compares in
// constant time. It returns false for any malformed stored value rather than
// leaking why the match failed.
func (u *User) VerifyPassword(password string) bool {
	saltHex, hashHex, ok := strings.Cut(u.PasswordHash, ".")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	stored, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	derived, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, len(stored))
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(stored, derived) == 1
}

// NormalizeEmail applies the canonical form used at registration, so lookups
// and stored emails always compare equal.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("Email is required")
	}
	if len(email) > 200 {
		return shared.NewValidationError("Email cannot exceed 200 characters")
	}

	emailRegex := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	if !emailRegex.MatchString(email) {
		return shared.NewValidationError("Invalid email format")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(salt) + "." + hex.EncodeToString(hash), nil
}
