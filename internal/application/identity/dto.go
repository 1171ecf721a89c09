package identity

import (
	"time"
)

// RegisterInput contains the credentials for a new account
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput contains login credentials
type LoginInput struct {
	Email    string
	Password string
}

// UserResult is the externally visible shape of an account. The credential
// hash never leaves the service.
type UserResult struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// LoginResult contains the outcome of a successful login
type LoginResult struct {
	User        UserResult `json:"user"`
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
}
