package password

import "golang.org/x/crypto/bcrypt"

// Cost is tuned for roughly 100ms per hash on commodity hardware.
const Cost = 12

// Hash returns a salted bcrypt digest of the plaintext.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the digest. A malformed digest
// is a mismatch, never an error.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
