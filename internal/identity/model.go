package identity

import "time"

// User is an account in the credential store.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	TokenVersion int
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// Credentials request structure.
type Credentials struct {
	Username string
	Password string
}
