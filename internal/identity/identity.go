// Package identity exposes the user on whose behalf reviews run.
package identity

//go:generate mockgen -source=identity.go -destination=../mocks/identity/mock_identity.go -package=mock_identity

// Provider reports the active user. ok is false when nobody is signed in.
type Provider interface {
	ActiveUserID() (userID string, ok bool)
}

// Static is a Provider with a fixed user. The zero value is unauthenticated.
type Static string

// ActiveUserID implements Provider.
func (s Static) ActiveUserID() (string, bool) {
	return string(s), s != ""
}
