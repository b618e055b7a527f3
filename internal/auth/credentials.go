package auth

import "errors"

var ErrInvalidCredentials = errors.New("invalid username or password")

// CredentialVerifier checks a username/password pair. The demo deployment
// accepts anything non-empty; hardening is a drop-in replacement of this
// interface rather than a rewrite of the token flow.
type CredentialVerifier interface {
	Verify(username, password string) error
}

// DemoVerifier accepts any non-empty username/password pair.
type DemoVerifier struct{}

func (DemoVerifier) Verify(username, password string) error {
	if username == "" || password == "" {
		return ErrInvalidCredentials
	}
	return nil
}

// StaticVerifier checks passwords against a fixed map of username ->
// bcrypt hash loaded from configuration.
type StaticVerifier struct {
	users map[string]string
}

func NewStaticVerifier(users map[string]string) *StaticVerifier {
	return &StaticVerifier{users: users}
}

func (v *StaticVerifier) Verify(username, password string) error {
	hash, ok := v.users[username]
	if !ok {
		return ErrInvalidCredentials
	}
	if err := ComparePassword(hash, password); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
