package securedata

import (
	"errors"
	"fmt"
)

// Error types represent different categories of errors

// ValidationError represents a configuration or parameter validation error
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// EncryptionError represents an encryption or decryption failure in the cipher
type EncryptionError struct {
	Operation string // "encrypt" or "decrypt"
	Algorithm string // Cipher name, if known
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *EncryptionError) Error() string {
	if e.Algorithm != "" {
		return fmt.Sprintf("%s error: %s: %s", e.Operation, e.Algorithm, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Operation, e.Message)
}

func (e *EncryptionError) Unwrap() error {
	return e.Err
}

// IOError represents a file system I/O error
type IOError struct {
	Operation string // "read", "write", "rename", "open", "close", etc.
	Path      string // File path
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("io error: %s %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("io error: %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is lets every IOError match ErrPersistence
func (e *IOError) Is(target error) bool {
	return target == ErrPersistence
}

// CorruptionError represents an envelope whose layout does not match its Spec
type CorruptionError struct {
	Length  int    // Envelope length
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corruption error: %d-byte envelope: %s", e.Length, e.Message)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// AuthenticationError represents a MAC verification failure
type AuthenticationError struct {
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Common sentinel errors
var (
	ErrInvalidKey         = errors.New("invalid encryption key")
	ErrInvalidIV          = errors.New("invalid initialization vector")
	ErrInvalidPadding     = errors.New("invalid padding")
	ErrInvalidBlockLength = errors.New("input is not a multiple of the block size")
	ErrUnsupportedCipher  = errors.New("unsupported cipher")
	ErrAuthFailed         = errors.New("authentication failed - data may be corrupted, tampered or the password is wrong")
	ErrMalformedEnvelope  = errors.New("malformed envelope")
	ErrEmptyCiphertext    = errors.New("plaintext produces no ciphertext")
	ErrRandomGeneration   = errors.New("secure random generation failed")
	ErrKeyDerivation      = errors.New("key derivation failed")
	ErrSerialization      = errors.New("document serialization failed")
	ErrPersistence        = errors.New("document persistence failed")
	ErrNilConfig          = errors.New("config cannot be nil")
	ErrNilFileSystem      = errors.New("file system cannot be nil")
	ErrInvalidSize        = errors.New("invalid size parameter")
)

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewEncryptionError creates a new encryption error
func NewEncryptionError(operation string, alg Algorithm, err error) error {
	return &EncryptionError{
		Operation: operation,
		Algorithm: alg.String(),
		Message:   err.Error(),
		Err:       err,
	}
}

// NewIOError creates a new I/O error
func NewIOError(operation, path string, err error) error {
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   err.Error(),
		Err:       err,
	}
}

// NewCorruptionError creates a new corruption error wrapping ErrMalformedEnvelope
func NewCorruptionError(length int, message string) error {
	return &CorruptionError{
		Length:  length,
		Message: message,
		Err:     ErrMalformedEnvelope,
	}
}

// NewAuthenticationError creates a new authentication error wrapping ErrAuthFailed
func NewAuthenticationError(message string) error {
	return &AuthenticationError{
		Message: message,
		Err:     ErrAuthFailed,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsEncryptionError checks if an error is an encryption error
func IsEncryptionError(err error) bool {
	var ee *EncryptionError
	return errors.As(err, &ee)
}

// IsIOError checks if an error is an I/O error
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}

// IsCorruptionError checks if an error is a corruption error
func IsCorruptionError(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsDecryptionFailure reports whether err is any of the ways Decode can
// refuse to return plaintext: a malformed envelope, a MAC mismatch or a
// cipher error during decryption.
func IsDecryptionFailure(err error) bool {
	if IsCorruptionError(err) || IsAuthenticationError(err) {
		return true
	}
	var ee *EncryptionError
	return errors.As(err, &ee) && ee.Operation == "decrypt"
}
