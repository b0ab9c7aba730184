package securedata

import (
	"fmt"
)

// Input validation helpers

// ValidateSize checks if a size parameter is valid
func ValidateSize(size int, name string, minSize, maxSize int) error {
	if size < 0 {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: "size cannot be negative",
			Err:     ErrInvalidSize,
		}
	}
	if minSize >= 0 && size < minSize {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: fmt.Sprintf("size too small: got %d, minimum is %d", size, minSize),
			Err:     ErrInvalidSize,
		}
	}
	if maxSize > 0 && size > maxSize {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: fmt.Sprintf("size too large: got %d, maximum is %d", size, maxSize),
			Err:     ErrInvalidSize,
		}
	}
	return nil
}

// ValidateKey checks that a key fits the algorithm's key size range
func ValidateKey(key []byte, alg Algorithm) error {
	if key == nil {
		return &ValidationError{
			Field:   "key",
			Message: "key cannot be nil",
			Err:     ErrInvalidKey,
		}
	}
	if len(key) < alg.MinKeySize() || len(key) > alg.MaxKeySize() {
		msg := fmt.Sprintf("invalid key size: got %d bytes, expected %d to %d bytes for %s",
			len(key), alg.MinKeySize(), alg.MaxKeySize(), alg)
		if alg.MinKeySize() == alg.MaxKeySize() {
			msg = fmt.Sprintf("invalid key size: got %d bytes, expected %d bytes for %s",
				len(key), alg.MinKeySize(), alg)
		}
		return &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: msg,
			Err:     ErrInvalidKey,
		}
	}
	return nil
}

// ValidateIV checks that a non-nil IV matches the algorithm's block size
func ValidateIV(iv []byte, alg Algorithm) error {
	if iv == nil {
		return nil
	}
	if len(iv) != alg.BlockSize() {
		return &ValidationError{
			Field:   "iv",
			Value:   len(iv),
			Message: fmt.Sprintf("invalid iv size: got %d bytes, expected %d bytes for %s", len(iv), alg.BlockSize(), alg),
			Err:     ErrInvalidIV,
		}
	}
	return nil
}

// ValidateFilePath checks if a file path is valid (not empty)
func ValidateFilePath(path string) error {
	if path == "" {
		return &ValidationError{
			Field:   "path",
			Message: "file path cannot be empty",
		}
	}
	return nil
}
