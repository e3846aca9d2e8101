package guess

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// SecretVerifier checks a normalized guess against the round's one-way
// secret hash. The comparison is deliberately behind an interface: it
// is slow cryptographic work, it runs outside the room lock, and tests
// need to control exactly when competing verifications complete.
type SecretVerifier interface {
	Verify(ctx context.Context, secretHash, guess string) (bool, error)
}

// BcryptVerifier is the production verifier. The host's content
// collaborator hashes the secret word with bcrypt before it ever
// reaches the server.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a BcryptVerifier
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

var _ SecretVerifier = (*BcryptVerifier)(nil)

// Verify compares the guess against the bcrypt hash
func (v *BcryptVerifier) Verify(_ context.Context, secretHash, guess string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(guess))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
