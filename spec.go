package securedata

import "fmt"

const (
	// DefaultSaltLength is the key derivation salt length in bytes
	DefaultSaltLength = 16

	// DefaultHMACSaltLength is the MAC key derivation salt length in bytes
	DefaultHMACSaltLength = 16

	// DefaultHMACKeyLength is the derived MAC key length in bytes
	DefaultHMACKeyLength = 16

	// DefaultIterations is the PBKDF2 iteration count for standalone envelopes
	DefaultIterations = 10000

	// DocumentIterations is the PBKDF2 iteration count used for documents.
	// Documents are saved often and locally, so the cost is kept small.
	DocumentIterations = 128
)

// Spec describes every parameter of an envelope. Both the encoding and the
// decoding side must use the same Spec; nothing of it is stored in the envelope.
//
// Spec is a value type. The With* methods return a modified copy.
type Spec struct {
	Algorithm               Algorithm
	BlockCipherMode         BlockMode
	Padding                 Padding
	SaltLength              int
	HMACSaltLength          int
	HMACKeyLength           int
	KeyDerivationIterations int
	PRFAlgorithm            PRFAlgorithm
	MACAlgorithm            MACAlgorithm
}

// DefaultSpec returns AES-256-CBC with PKCS7 padding, 10000 PBKDF2-HMAC-SHA1
// iterations and an HMAC-SHA256 tag.
func DefaultSpec() Spec {
	return Spec{
		Algorithm:               AES256,
		BlockCipherMode:         CBC,
		Padding:                 PKCS7,
		SaltLength:              DefaultSaltLength,
		HMACSaltLength:          DefaultHMACSaltLength,
		HMACKeyLength:           DefaultHMACKeyLength,
		KeyDerivationIterations: DefaultIterations,
		PRFAlgorithm:            PRFHMACSHA1,
		MACAlgorithm:            HMACSHA256,
	}
}

// DocumentSpec returns DefaultSpec with DocumentIterations
func DocumentSpec() Spec {
	return DefaultSpec().WithIterations(DocumentIterations)
}

// WithAlgorithm returns a copy of s using algorithm a
func (s Spec) WithAlgorithm(a Algorithm) Spec {
	s.Algorithm = a
	return s
}

// WithBlockCipherMode returns a copy of s using mode m
func (s Spec) WithBlockCipherMode(m BlockMode) Spec {
	s.BlockCipherMode = m
	return s
}

// WithPadding returns a copy of s using padding p
func (s Spec) WithPadding(p Padding) Spec {
	s.Padding = p
	return s
}

// WithSaltLength returns a copy of s with a key salt of n bytes
func (s Spec) WithSaltLength(n int) Spec {
	s.SaltLength = n
	return s
}

// WithHMACSaltLength returns a copy of s with a MAC key salt of n bytes
func (s Spec) WithHMACSaltLength(n int) Spec {
	s.HMACSaltLength = n
	return s
}

// WithHMACKeyLength returns a copy of s deriving an n-byte MAC key
func (s Spec) WithHMACKeyLength(n int) Spec {
	s.HMACKeyLength = n
	return s
}

// WithIterations returns a copy of s with n PBKDF2 iterations
func (s Spec) WithIterations(n int) Spec {
	s.KeyDerivationIterations = n
	return s
}

// WithPRFAlgorithm returns a copy of s using PRF p
func (s Spec) WithPRFAlgorithm(p PRFAlgorithm) Spec {
	s.PRFAlgorithm = p
	return s
}

// WithMACAlgorithm returns a copy of s using MAC m
func (s Spec) WithMACAlgorithm(m MACAlgorithm) Spec {
	s.MACAlgorithm = m
	return s
}

// Validate checks that every field holds a supported value
func (s Spec) Validate() error {
	if !s.Algorithm.Valid() {
		return &ValidationError{Field: "algorithm", Value: s.Algorithm, Message: "unsupported algorithm", Err: ErrUnsupportedCipher}
	}
	if s.BlockCipherMode != CBC && s.BlockCipherMode != ECB {
		return NewValidationError("block_cipher_mode", s.BlockCipherMode, "unsupported block cipher mode")
	}
	if s.Padding != PKCS7 && s.Padding != NoPadding {
		return NewValidationError("padding", s.Padding, "unsupported padding")
	}
	if err := ValidateSize(s.SaltLength, "salt_length", 1, 0); err != nil {
		return err
	}
	if err := ValidateSize(s.HMACSaltLength, "hmac_salt_length", 1, 0); err != nil {
		return err
	}
	if err := ValidateSize(s.HMACKeyLength, "hmac_key_length", 1, 0); err != nil {
		return err
	}
	if err := ValidateSize(s.KeyDerivationIterations, "key_derivation_iterations", 1, 0); err != nil {
		return err
	}
	if s.PRFAlgorithm.Hash() == nil {
		return NewValidationError("prf_algorithm", s.PRFAlgorithm, "unsupported PRF algorithm")
	}
	if s.MACAlgorithm.Hash() == nil {
		return NewValidationError("mac_algorithm", s.MACAlgorithm, "unsupported MAC algorithm")
	}
	return nil
}

// FixedOverhead returns the number of envelope bytes that do not depend on
// the plaintext: both salts, the IV and the MAC.
func (s Spec) FixedOverhead() int {
	return s.SaltLength + s.HMACSaltLength + s.Algorithm.BlockSize() + s.MACAlgorithm.Size()
}

// CiphertextSize returns the ciphertext length produced for n plaintext bytes
func (s Spec) CiphertextSize(n int) int {
	if s.Algorithm.IsStream() || s.Padding == NoPadding {
		return n
	}
	bs := s.Algorithm.BlockSize()
	return bs * (n/bs + 1)
}

// EnvelopeSize returns the total envelope length for n plaintext bytes
func (s Spec) EnvelopeSize(n int) int {
	return s.FixedOverhead() + s.CiphertextSize(n)
}

// String returns a compact description such as "aes-256-cbc-pkcs7/hmac-sha1x10000/hmac-sha256"
func (s Spec) String() string {
	return fmt.Sprintf("%s-%s-%s/%sx%d/%s", s.Algorithm, s.BlockCipherMode, s.Padding,
		s.PRFAlgorithm, s.KeyDerivationIterations, s.MACAlgorithm)
}
