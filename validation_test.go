package securedata

import (
	"errors"
	"strings"
	"testing"
)

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
		errMsg  string
	}{
		{
			name: "default spec",
			spec: DefaultSpec(),
		},
		{
			name: "document spec",
			spec: DocumentSpec(),
		},
		{
			name:    "unsupported algorithm",
			spec:    DefaultSpec().WithAlgorithm(Algorithm(99)),
			wantErr: true,
			errMsg:  "unsupported algorithm",
		},
		{
			name:    "unsupported mode",
			spec:    DefaultSpec().WithBlockCipherMode(BlockMode(7)),
			wantErr: true,
			errMsg:  "unsupported block cipher mode",
		},
		{
			name:    "unsupported padding",
			spec:    DefaultSpec().WithPadding(Padding(7)),
			wantErr: true,
			errMsg:  "unsupported padding",
		},
		{
			name:    "zero salt length",
			spec:    DefaultSpec().WithSaltLength(0),
			wantErr: true,
			errMsg:  "salt_length",
		},
		{
			name:    "negative hmac salt length",
			spec:    DefaultSpec().WithHMACSaltLength(-1),
			wantErr: true,
			errMsg:  "size cannot be negative",
		},
		{
			name:    "zero hmac key length",
			spec:    DefaultSpec().WithHMACKeyLength(0),
			wantErr: true,
			errMsg:  "hmac_key_length",
		},
		{
			name:    "zero iterations",
			spec:    DefaultSpec().WithIterations(0),
			wantErr: true,
			errMsg:  "key_derivation_iterations",
		},
		{
			name:    "unsupported prf",
			spec:    DefaultSpec().WithPRFAlgorithm(PRFAlgorithm(42)),
			wantErr: true,
			errMsg:  "unsupported PRF algorithm",
		},
		{
			name:    "unsupported mac",
			spec:    DefaultSpec().WithMACAlgorithm(MACAlgorithm(42)),
			wantErr: true,
			errMsg:  "unsupported MAC algorithm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.errMsg)
					return
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %q, want error containing %q", err.Error(), tt.errMsg)
				}
				if !IsValidationError(err) {
					t.Errorf("Validate() error = %T, want *ValidationError", err)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		minSize int
		maxSize int
		wantErr bool
	}{
		{"negative", -1, 0, 0, true},
		{"zero allowed", 0, 0, 0, false},
		{"below minimum", 4, 8, 0, true},
		{"at minimum", 8, 8, 0, false},
		{"above maximum", 65, 1, 64, true},
		{"at maximum", 64, 1, 64, false},
		{"no maximum", 1 << 20, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSize(tt.size, "size", tt.minSize, tt.maxSize)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSize) {
				t.Errorf("ValidateSize() error should wrap ErrInvalidSize, got %v", err)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		alg     Algorithm
		wantErr bool
	}{
		{"nil key", nil, AES128, true},
		{"aes-128 exact", make([]byte, 16), AES128, false},
		{"aes-128 short", make([]byte, 15), AES128, true},
		{"aes-256 long", make([]byte, 33), AES256, true},
		{"des exact", make([]byte, 8), DES, false},
		{"3des exact", make([]byte, 24), TripleDES, false},
		{"3des short", make([]byte, 16), TripleDES, true},
		{"cast exact", make([]byte, 16), CAST, false},
		{"cast short", make([]byte, 5), CAST, true},
		{"rc4 one byte", make([]byte, 1), RC4, false},
		{"rc4 max", make([]byte, 256), RC4, false},
		{"rc4 empty", []byte{}, RC4, true},
		{"rc2 max", make([]byte, 128), RC2, false},
		{"rc2 too long", make([]byte, 129), RC2, true},
		{"blowfish min", make([]byte, 8), Blowfish, false},
		{"blowfish max", make([]byte, 56), Blowfish, false},
		{"blowfish short", make([]byte, 7), Blowfish, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key, tt.alg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidKey) {
				t.Errorf("ValidateKey() error should wrap ErrInvalidKey, got %v", err)
			}
		})
	}
}

func TestValidateIV(t *testing.T) {
	tests := []struct {
		name    string
		iv      []byte
		alg     Algorithm
		wantErr bool
	}{
		{"nil iv", nil, AES256, false},
		{"aes block", make([]byte, 16), AES256, false},
		{"aes short", make([]byte, 8), AES256, true},
		{"des block", make([]byte, 8), DES, false},
		{"des long", make([]byte, 16), DES, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIV(tt.iv, tt.alg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIV() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidIV) {
				t.Errorf("ValidateIV() error should wrap ErrInvalidIV, got %v", err)
			}
		})
	}
}

func TestValidateFilePath(t *testing.T) {
	if err := ValidateFilePath(""); err == nil {
		t.Error("ValidateFilePath(\"\") expected error")
	}
	if err := ValidateFilePath("/app/data"); err != nil {
		t.Errorf("ValidateFilePath() unexpected error: %v", err)
	}
}
