package securedata

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// Algorithm represents the symmetric cipher used inside an envelope
type Algorithm uint8

const (
	// AES128 uses AES with a 128-bit key
	AES128 Algorithm = iota
	// AES192 uses AES with a 192-bit key
	AES192
	// AES256 uses AES with a 256-bit key
	AES256
	// DES uses single DES (legacy)
	DES
	// TripleDES uses DES-EDE3
	TripleDES
	// CAST uses CAST-128
	CAST
	// RC4 uses the RC4 stream cipher (legacy)
	RC4
	// RC2 uses RC2 with effective key bits equal to the key length
	RC2
	// Blowfish uses Blowfish
	Blowfish
)

type algorithmInfo struct {
	name       string
	blockSize  int
	minKeySize int
	maxKeySize int
	stream     bool
}

// The RC4 block size is the IV width reserved in the envelope; RC4 itself
// never reads the IV.
var algorithms = map[Algorithm]algorithmInfo{
	AES128:    {"aes-128", 16, 16, 16, false},
	AES192:    {"aes-192", 16, 24, 24, false},
	AES256:    {"aes-256", 16, 32, 32, false},
	DES:       {"des", 8, 8, 8, false},
	TripleDES: {"3des", 8, 24, 24, false},
	CAST:      {"cast", 8, 16, 16, false},
	RC4:       {"rc4", 8, 1, 256, true},
	RC2:       {"rc2", 8, 1, 128, false},
	Blowfish:  {"blowfish", 8, 8, 56, false},
}

// String returns the string representation of the algorithm
func (a Algorithm) String() string {
	if info, ok := algorithms[a]; ok {
		return info.name
	}
	return "unknown"
}

// Valid reports whether a is one of the enumerated algorithms
func (a Algorithm) Valid() bool {
	_, ok := algorithms[a]
	return ok
}

// BlockSize returns the cipher block size in bytes, which is also the IV length
func (a Algorithm) BlockSize() int {
	return algorithms[a].blockSize
}

// MinKeySize returns the smallest accepted key size in bytes
func (a Algorithm) MinKeySize() int {
	return algorithms[a].minKeySize
}

// MaxKeySize returns the largest accepted key size in bytes
func (a Algorithm) MaxKeySize() int {
	return algorithms[a].maxKeySize
}

// IsStream reports whether the algorithm is a stream cipher
func (a Algorithm) IsStream() bool {
	return algorithms[a].stream
}

// ParseAlgorithm returns the algorithm whose String form is name
func ParseAlgorithm(name string) (Algorithm, error) {
	for a, info := range algorithms {
		if info.name == name {
			return a, nil
		}
	}
	return 0, &ValidationError{Field: "algorithm", Value: name, Message: "unsupported algorithm", Err: ErrUnsupportedCipher}
}

// BlockMode represents the block cipher chaining mode
type BlockMode uint8

const (
	// CBC chains blocks with the previous ciphertext block
	CBC BlockMode = iota
	// ECB encrypts every block independently and ignores the IV
	ECB
)

// String returns the string representation of the block mode
func (m BlockMode) String() string {
	switch m {
	case CBC:
		return "cbc"
	case ECB:
		return "ecb"
	default:
		return "unknown"
	}
}

// Padding represents the plaintext padding scheme
type Padding uint8

const (
	// PKCS7 pads to a multiple of the block size with bytes equal to the pad length
	PKCS7 Padding = iota
	// NoPadding requires the plaintext to already be block aligned
	NoPadding
)

// String returns the string representation of the padding scheme
func (p Padding) String() string {
	switch p {
	case PKCS7:
		return "pkcs7"
	case NoPadding:
		return "none"
	default:
		return "unknown"
	}
}

// PRFAlgorithm represents the pseudo-random function used by PBKDF2
type PRFAlgorithm uint8

const (
	// PRFHMACSHA1 uses HMAC-SHA1
	PRFHMACSHA1 PRFAlgorithm = iota
	// PRFHMACSHA224 uses HMAC-SHA224
	PRFHMACSHA224
	// PRFHMACSHA256 uses HMAC-SHA256
	PRFHMACSHA256
	// PRFHMACSHA384 uses HMAC-SHA384
	PRFHMACSHA384
	// PRFHMACSHA512 uses HMAC-SHA512
	PRFHMACSHA512
)

// String returns the string representation of the PRF
func (p PRFAlgorithm) String() string {
	switch p {
	case PRFHMACSHA1:
		return "hmac-sha1"
	case PRFHMACSHA224:
		return "hmac-sha224"
	case PRFHMACSHA256:
		return "hmac-sha256"
	case PRFHMACSHA384:
		return "hmac-sha384"
	case PRFHMACSHA512:
		return "hmac-sha512"
	default:
		return "unknown"
	}
}

// Hash returns the hash constructor backing the PRF, or nil if unknown
func (p PRFAlgorithm) Hash() func() hash.Hash {
	switch p {
	case PRFHMACSHA1:
		return sha1.New
	case PRFHMACSHA224:
		return sha256.New224
	case PRFHMACSHA256:
		return sha256.New
	case PRFHMACSHA384:
		return sha512.New384
	case PRFHMACSHA512:
		return sha512.New
	default:
		return nil
	}
}

// MACAlgorithm represents the HMAC used to authenticate the ciphertext
type MACAlgorithm uint8

const (
	// HMACMD5 produces a 16-byte tag
	HMACMD5 MACAlgorithm = iota
	// HMACSHA1 produces a 20-byte tag
	HMACSHA1
	// HMACSHA224 produces a 28-byte tag
	HMACSHA224
	// HMACSHA256 produces a 32-byte tag
	HMACSHA256
	// HMACSHA384 produces a 48-byte tag
	HMACSHA384
	// HMACSHA512 produces a 64-byte tag
	HMACSHA512
)

// String returns the string representation of the MAC algorithm
func (m MACAlgorithm) String() string {
	switch m {
	case HMACMD5:
		return "hmac-md5"
	case HMACSHA1:
		return "hmac-sha1"
	case HMACSHA224:
		return "hmac-sha224"
	case HMACSHA256:
		return "hmac-sha256"
	case HMACSHA384:
		return "hmac-sha384"
	case HMACSHA512:
		return "hmac-sha512"
	default:
		return "unknown"
	}
}

// Size returns the fixed tag length in bytes, or 0 if unknown
func (m MACAlgorithm) Size() int {
	switch m {
	case HMACMD5:
		return md5.Size
	case HMACSHA1:
		return sha1.Size
	case HMACSHA224:
		return sha256.Size224
	case HMACSHA256:
		return sha256.Size
	case HMACSHA384:
		return sha512.Size384
	case HMACSHA512:
		return sha512.Size
	default:
		return 0
	}
}

// Hash returns the hash constructor backing the MAC, or nil if unknown
func (m MACAlgorithm) Hash() func() hash.Hash {
	switch m {
	case HMACMD5:
		return md5.New
	case HMACSHA1:
		return sha1.New
	case HMACSHA224:
		return sha256.New224
	case HMACSHA256:
		return sha256.New
	case HMACSHA384:
		return sha512.New384
	case HMACSHA512:
		return sha512.New
	default:
		return nil
	}
}
