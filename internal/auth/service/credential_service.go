package service

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/allisson/tokenauth/internal/errors"
)

// bcryptPrefixes identify hashes written by bcrypt-based systems.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// credentialService implements CredentialService using Argon2id for new hashes.
// Existing bcrypt hashes are still accepted on verification.
type credentialService struct {
	hasher    *pwdhash.PasswordHasher
	dummyHash string
}

// NewCredentialService creates a new CredentialService using Argon2id hashing.
// Uses the Moderate policy for a balance between security and performance.
func NewCredentialService() CredentialService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	s := &credentialService{hasher: hasher}

	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		panic(err)
	}
	dummyHash, err := s.HashSecret(base64.RawURLEncoding.EncodeToString(randomBytes))
	if err != nil {
		panic(err)
	}
	s.dummyHash = dummyHash

	return s
}

// HashSecret hashes a raw secret using Argon2id.
func (s *credentialService) HashSecret(rawSecret string) (string, error) {
	hashedSecret, err := s.hasher.Hash([]byte(rawSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hashedSecret, nil
}

// VerifySecret performs a constant-time comparison between a raw secret and its hash.
func (s *credentialService) VerifySecret(rawSecret string, hashedSecret string) bool {
	if hashedSecret == "" {
		return false
	}

	if isBcryptHash(hashedSecret) {
		return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(rawSecret)) == nil
	}

	ok, err := s.hasher.Verify([]byte(rawSecret), hashedSecret)
	if err != nil {
		return false
	}
	return ok
}

// VerifyUnknown spends one Argon2id verification and always returns false.
func (s *credentialService) VerifyUnknown(rawSecret string) bool {
	_ = s.VerifySecret(rawSecret, s.dummyHash)
	return false
}

func isBcryptHash(hashedSecret string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(hashedSecret, prefix) {
			return true
		}
	}
	return false
}
