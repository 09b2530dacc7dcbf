package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/cuddly-waffle/account-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SaltBytes is the amount of entropy in a generated salt.
	SaltBytes = 16

	// DefaultBcryptCost is the minimum work factor accepted for hashing.
	DefaultBcryptCost = 10

	// MaxPasswordBytes bounds the plaintext accepted for hashing.
	MaxPasswordBytes = 1024
)

// PasswordCrypto hashes and verifies salted, peppered passwords.
type PasswordCrypto interface {
	// GenerateSalt returns a fresh random salt as a fixed-length hex string.
	GenerateSalt() (string, error)

	// HashPassword hashes plaintext with a fresh salt and returns both.
	HashPassword(plaintext string) (domain.Credential, error)

	// CompareHash reports whether plaintext reproduces hash under salt.
	// A mismatch returns (false, nil); only a corrupt hash returns an error.
	CompareHash(plaintext, salt, hash string) (bool, error)
}

// BcryptCrypto implements PasswordCrypto using bcrypt over
// HMAC-SHA256(pepper, salt+password).
type BcryptCrypto struct {
	pepper string
	cost   int
}

var _ PasswordCrypto = (*BcryptCrypto)(nil)

// NewPasswordCrypto creates a BcryptCrypto. A cost outside
// [DefaultBcryptCost, bcrypt.MaxCost] falls back to DefaultBcryptCost.
func NewPasswordCrypto(pepper string, cost int) *BcryptCrypto {
	if cost < DefaultBcryptCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptCrypto{pepper: pepper, cost: cost}
}

// GenerateSalt returns SaltBytes random bytes rendered as hex.
func (c *BcryptCrypto) GenerateSalt() (string, error) {
	buf := make([]byte, SaltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword generates a new salt and hashes plaintext with it.
func (c *BcryptCrypto) HashPassword(plaintext string) (domain.Credential, error) {
	if plaintext == "" {
		return domain.Credential{}, ErrEmptyPassword
	}

	salt, err := c.GenerateSalt()
	if err != nil {
		return domain.Credential{}, err
	}

	return c.hashWithSalt(plaintext, salt)
}

func (c *BcryptCrypto) hashWithSalt(plaintext, salt string) (domain.Credential, error) {
	if len(plaintext) > MaxPasswordBytes {
		return domain.Credential{}, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword(c.material(plaintext, salt), c.cost)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("failed to hash password: %w", err)
	}

	return domain.Credential{PasswordHash: string(hash), Salt: salt}, nil
}

// CompareHash recomputes salt+plaintext+pepper and checks it against hash in
// constant time.
func (c *BcryptCrypto) CompareHash(plaintext, salt, hash string) (bool, error) {
	if len(plaintext) > MaxPasswordBytes {
		// Could never have been hashed, so it cannot match.
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), c.material(plaintext, salt))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

// material binds salt, plaintext and pepper into a fixed 44-byte bcrypt
// input, so neither the pepper length nor the password length runs into
// bcrypt's 72-byte limit.
func (c *BcryptCrypto) material(plaintext, salt string) []byte {
	mac := hmac.New(sha256.New, []byte(c.pepper))
	mac.Write([]byte(salt + plaintext))
	sum := mac.Sum(nil)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum)
	return out
}
