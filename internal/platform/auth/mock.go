package auth

import (
	"context"
)

// MockVerifier resolves tokens from a fixed table. Unknown tokens fall back
// to User when set, otherwise they are invalid. Error wins over both.
type MockVerifier struct {
	Users map[string]*User
	User  *User
	Error error
}

func (m *MockVerifier) Verify(_ context.Context, token string) (*User, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	if u, ok := m.Users[token]; ok {
		return u, nil
	}
	if m.User != nil {
		return m.User, nil
	}
	return nil, ErrInvalidToken
}

// TestUser returns the default test caller.
func TestUser() *User {
	return &User{
		UID:           "alice-uid",
		Email:         "alice@example.com",
		EmailVerified: true,
	}
}

var _ Verifier = (*MockVerifier)(nil)
