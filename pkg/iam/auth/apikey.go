package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// APIKeyVerifier checks a presented key against a bcrypt hash
type APIKeyVerifier struct {
	hash   []byte
	scopes []string
}

func NewAPIKeyVerifier(hash string, scopes []string) *APIKeyVerifier {
	if hash == "" {
		return nil
	}
	return &APIKeyVerifier{hash: []byte(hash), scopes: scopes}
}

func (v *APIKeyVerifier) Verify(key string) bool {
	if v == nil || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(key)) == nil
}

// HashAPIKey produces the value expected in ADMIN_API_KEY_HASH
func HashAPIKey(key string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
