package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProvider           = errors.New("identity provider error")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
)

// SessionCookie is the name of the cookie carrying the identity provider's access token.
const SessionCookie = "access_token"

// Session is what the identity provider hands back after a successful sign-in.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	User         User
}

// User is the identity provider's account record. The provider owns it;
// this system only reads it and patches Metadata.
type User struct {
	ID       string
	Email    string
	Metadata map[string]any
}
