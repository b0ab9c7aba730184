package securedata

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// DeriveKey stretches password and salt into a length-byte key with PBKDF2.
// The result is deterministic for identical inputs, and length may exceed
// the PRF output size.
func DeriveKey(password, salt []byte, iterations, length int, prf PRFAlgorithm) ([]byte, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("%w: iterations must be at least 1, got %d", ErrKeyDerivation, iterations)
	}
	if length < 1 {
		return nil, fmt.Errorf("%w: key length must be at least 1, got %d", ErrKeyDerivation, length)
	}
	hashFunc := prf.Hash()
	if hashFunc == nil {
		return nil, fmt.Errorf("%w: unsupported PRF algorithm: %v", ErrKeyDerivation, prf)
	}

	return pbkdf2.Key(password, salt, iterations, length, hashFunc), nil
}

// PasswordKeyProvider derives envelope keys from one password using the
// iteration count and PRF of a Spec.
type PasswordKeyProvider struct {
	password   []byte
	iterations int
	prf        PRFAlgorithm
	random     io.Reader
}

// NewPasswordKeyProvider creates a key provider for password under spec.
// A nil random reader selects crypto/rand.
func NewPasswordKeyProvider(password []byte, spec Spec, random io.Reader) *PasswordKeyProvider {
	if random == nil {
		random = rand.Reader
	}
	return &PasswordKeyProvider{
		password:   password,
		iterations: spec.KeyDerivationIterations,
		prf:        spec.PRFAlgorithm,
		random:     random,
	}
}

// DeriveKey derives a length-byte key from the password and salt
func (p *PasswordKeyProvider) DeriveKey(salt []byte, length int) ([]byte, error) {
	return DeriveKey(p.password, salt, p.iterations, length, p.prf)
}

// GenerateSalt generates a new random salt of n bytes
func (p *PasswordKeyProvider) GenerateSalt(n int) ([]byte, error) {
	return randomBytes(p.random, n)
}

// randomBytes reads exactly n bytes from r. A failing or short source is an
// error; the buffer is never handed out partially filled.
func randomBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomGeneration, err)
	}
	return buf, nil
}
