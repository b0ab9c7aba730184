package securedata

import (
	"fmt"
	"io"
)

// Envelope layout (no magic, no version, no stored lengths; every length
// comes from the Spec shared by both ends):
//
//	┌──────────────────────────────┐
//	│ salt       [SaltLength]      │ <- PBKDF2 salt for the cipher key
//	│ hmacSalt   [HMACSaltLength]  │ <- PBKDF2 salt for the MAC key
//	│ iv         [BlockSize]       │
//	│ ciphertext [variable, >= 1]  │
//	│ mac        [MAC size]        │ <- HMAC over ciphertext only
//	└──────────────────────────────┘

// Envelope holds the five regions of an encoded message
type Envelope struct {
	Salt       []byte // Salt for cipher key derivation
	HMACSalt   []byte // Salt for MAC key derivation
	IV         []byte // Initialization vector
	Ciphertext []byte // Encrypted payload
	MAC        []byte // Tag over Ciphertext
}

// EnvelopeLayout records where each region of an envelope starts
type EnvelopeLayout struct {
	SaltOffset       int
	HMACSaltOffset   int
	IVOffset         int
	CiphertextOffset int
	CiphertextLength int
	MACOffset        int
	Total            int
}

// ParseLayout computes region boundaries for a total-byte envelope under
// spec. It fails with a CorruptionError when the ciphertext would be empty
// or the regions do not tile the envelope exactly.
func ParseLayout(spec Spec, total int) (EnvelopeLayout, error) {
	l := EnvelopeLayout{Total: total}
	l.SaltOffset = 0
	l.HMACSaltOffset = l.SaltOffset + spec.SaltLength
	l.IVOffset = l.HMACSaltOffset + spec.HMACSaltLength
	l.CiphertextOffset = l.IVOffset + spec.Algorithm.BlockSize()
	l.CiphertextLength = total - spec.FixedOverhead()
	l.MACOffset = l.CiphertextOffset + l.CiphertextLength

	if l.CiphertextLength <= 0 {
		return l, NewCorruptionError(total, fmt.Sprintf("need more than %d bytes for %s", spec.FixedOverhead(), spec))
	}
	if l.MACOffset+spec.MACAlgorithm.Size() != total {
		return l, NewCorruptionError(total, "regions do not tile the envelope")
	}
	return l, nil
}

// ParseEnvelope slices data into its regions. The returned slices alias data.
func ParseEnvelope(data []byte, spec Spec) (*Envelope, error) {
	l, err := ParseLayout(spec, len(data))
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Salt:       data[l.SaltOffset:l.HMACSaltOffset],
		HMACSalt:   data[l.HMACSaltOffset:l.IVOffset],
		IV:         data[l.IVOffset:l.CiphertextOffset],
		Ciphertext: data[l.CiphertextOffset:l.MACOffset],
		MAC:        data[l.MACOffset:],
	}, nil
}

// Size returns the total size of the envelope in bytes
func (e *Envelope) Size() int {
	return len(e.Salt) + len(e.HMACSalt) + len(e.IV) + len(e.Ciphertext) + len(e.MAC)
}

// Bytes concatenates the regions in wire order
func (e *Envelope) Bytes() []byte {
	out := make([]byte, 0, e.Size())
	out = append(out, e.Salt...)
	out = append(out, e.HMACSalt...)
	out = append(out, e.IV...)
	out = append(out, e.Ciphertext...)
	out = append(out, e.MAC...)
	return out
}

// WriteTo writes the envelope to the given writer
func (e *Envelope) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.Bytes())
	return int64(n), err
}
