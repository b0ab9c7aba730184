package securedata

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Codec encodes and decodes password-protected envelopes for one Spec
type Codec struct {
	spec   Spec
	random io.Reader
}

// CodecOption configures a Codec
type CodecOption func(*Codec)

// WithRandom replaces crypto/rand as the source of salts and IVs
func WithRandom(r io.Reader) CodecOption {
	return func(c *Codec) {
		c.random = r
	}
}

// NewCodec creates a Codec after validating spec
func NewCodec(spec Spec, opts ...CodecOption) (*Codec, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spec: %w", err)
	}
	c := &Codec{spec: spec, random: rand.Reader}
	for _, opt := range opts {
		opt(c)
	}
	if c.random == nil {
		c.random = rand.Reader
	}
	return c, nil
}

// Spec returns the codec's spec
func (c *Codec) Spec() Spec {
	return c.spec
}

// Encode encrypts data under password and returns
// salt || hmacSalt || iv || ciphertext || mac. Data that would produce no
// ciphertext (empty input under RC4 or NoPadding) is rejected, since Decode
// cannot accept such an envelope.
func (c *Codec) Encode(data, password []byte) ([]byte, error) {
	spec := c.spec
	if spec.CiphertextSize(len(data)) == 0 {
		return nil, NewEncryptionError("encrypt", spec.Algorithm, ErrEmptyCiphertext)
	}
	keys := NewPasswordKeyProvider(password, spec, c.random)

	salt, err := keys.GenerateSalt(spec.SaltLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	key, err := keys.DeriveKey(salt, spec.Algorithm.MinKeySize())
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	iv, err := randomBytes(c.random, spec.Algorithm.BlockSize())
	if err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	ciphertext, err := Encrypt(data, key, iv, spec.Algorithm, spec.BlockCipherMode, spec.Padding)
	if err != nil {
		return nil, err
	}

	hmacSalt, err := keys.GenerateSalt(spec.HMACSaltLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate hmac salt: %w", err)
	}
	hmacKey, err := keys.DeriveKey(hmacSalt, spec.HMACKeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive hmac key: %w", err)
	}

	mac, err := ComputeMAC(hmacKey, ciphertext, spec.MACAlgorithm)
	if err != nil {
		return nil, NewEncryptionError("encrypt", spec.Algorithm, err)
	}

	env := &Envelope{
		Salt:       salt,
		HMACSalt:   hmacSalt,
		IV:         iv,
		Ciphertext: ciphertext,
		MAC:        mac,
	}
	return env.Bytes(), nil
}

// Decode verifies and decrypts an envelope produced by Encode with the same
// Spec. The MAC is checked before any decryption, and no plaintext is
// returned on any failure.
func (c *Codec) Decode(envelope, password []byte) ([]byte, error) {
	spec := c.spec

	env, err := ParseEnvelope(envelope, spec)
	if err != nil {
		return nil, err
	}

	keys := NewPasswordKeyProvider(password, spec, c.random)

	hmacKey, err := keys.DeriveKey(env.HMACSalt, spec.HMACKeyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive hmac key: %w", err)
	}
	ok, err := VerifyMAC(hmacKey, env.Ciphertext, env.MAC, spec.MACAlgorithm)
	if err != nil {
		return nil, NewEncryptionError("decrypt", spec.Algorithm, err)
	}
	if !ok {
		return nil, NewAuthenticationError("mac mismatch")
	}

	key, err := keys.DeriveKey(env.Salt, spec.Algorithm.MinKeySize())
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return Decrypt(env.Ciphertext, key, env.IV, spec.Algorithm, spec.BlockCipherMode, spec.Padding)
}

// Encode encrypts data under password with a one-shot Codec
func Encode(data, password []byte, spec Spec) ([]byte, error) {
	c, err := NewCodec(spec)
	if err != nil {
		return nil, err
	}
	return c.Encode(data, password)
}

// Decode decrypts envelope under password with a one-shot Codec
func Decode(envelope, password []byte, spec Spec) ([]byte, error) {
	c, err := NewCodec(spec)
	if err != nil {
		return nil, err
	}
	return c.Decode(envelope, password)
}

// EncryptString encodes the UTF-8 bytes of s with DefaultSpec
func EncryptString(s, password string) ([]byte, error) {
	return Encode([]byte(s), []byte(password), DefaultSpec())
}

// DecryptString decodes an envelope made by EncryptString
func DecryptString(envelope []byte, password string) (string, error) {
	plaintext, err := Decode(envelope, []byte(password), DefaultSpec())
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
