package securedata

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/rc4"
	"fmt"

	"github.com/dgryski/go-rc2"
	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/cast5"
)

// CipherEngine provides symmetric encryption/decryption bound to one key
type CipherEngine interface {
	// Encrypt encrypts plaintext with the given IV. A nil IV is treated as
	// all zero bytes.
	Encrypt(iv, plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext with the given IV
	Decrypt(iv, ciphertext []byte) ([]byte, error)

	// BlockSize returns the IV size in bytes
	BlockSize() int
}

// blockEngine implements CipherEngine for the block ciphers
type blockEngine struct {
	alg     Algorithm
	block   cipher.Block
	mode    BlockMode
	padding Padding
}

// streamEngine implements CipherEngine for RC4. The keystream is restarted
// for every call, so mode, padding and IV do not apply.
type streamEngine struct {
	alg Algorithm
	key []byte
}

// NewCipherEngine creates a cipher engine for alg keyed with key.
// The key must lie within the algorithm's key size range; it is never
// truncated or padded.
func NewCipherEngine(alg Algorithm, mode BlockMode, padding Padding, key []byte) (CipherEngine, error) {
	if !alg.Valid() {
		return nil, ErrUnsupportedCipher
	}
	if err := ValidateKey(key, alg); err != nil {
		return nil, err
	}
	if mode != CBC && mode != ECB {
		return nil, fmt.Errorf("%w: block cipher mode %v", ErrUnsupportedCipher, mode)
	}
	if padding != PKCS7 && padding != NoPadding {
		return nil, fmt.Errorf("%w: padding %v", ErrUnsupportedCipher, padding)
	}

	if alg.IsStream() {
		keyCopy := make([]byte, len(key))
		copy(keyCopy, key)
		return &streamEngine{alg: alg, key: keyCopy}, nil
	}

	block, err := newBlockCipher(alg, key)
	if err != nil {
		return nil, err
	}

	return &blockEngine{alg: alg, block: block, mode: mode, padding: padding}, nil
}

func newBlockCipher(alg Algorithm, key []byte) (cipher.Block, error) {
	switch alg {
	case AES128, AES192, AES256:
		return aes.NewCipher(key)
	case DES:
		return des.NewCipher(key)
	case TripleDES:
		return des.NewTripleDESCipher(key)
	case CAST:
		return cast5.NewCipher(key)
	case RC2:
		return rc2.New(key, len(key)*8)
	case Blowfish:
		return blowfish.NewCipher(key)
	default:
		return nil, ErrUnsupportedCipher
	}
}

// BlockSize returns the cipher block size
func (e *blockEngine) BlockSize() int {
	return e.alg.BlockSize()
}

// Encrypt pads (if configured) and encrypts plaintext
func (e *blockEngine) Encrypt(iv, plaintext []byte) ([]byte, error) {
	bs := e.block.BlockSize()

	// Worst case output is one full block of padding
	out := make([]byte, len(plaintext), len(plaintext)+bs)
	copy(out, plaintext)

	if e.padding == PKCS7 {
		out = pkcs7Pad(out, bs)
	} else if len(out)%bs != 0 {
		return nil, fmt.Errorf("%w: %d bytes with block size %d", ErrInvalidBlockLength, len(out), bs)
	}

	mode, err := e.blockMode(iv, true)
	if err != nil {
		return nil, err
	}
	mode.CryptBlocks(out, out)

	return out, nil
}

// Decrypt decrypts ciphertext and removes padding (if configured)
func (e *blockEngine) Decrypt(iv, ciphertext []byte) ([]byte, error) {
	bs := e.block.BlockSize()
	if len(ciphertext)%bs != 0 {
		return nil, fmt.Errorf("%w: %d bytes with block size %d", ErrInvalidBlockLength, len(ciphertext), bs)
	}
	if e.padding == PKCS7 && len(ciphertext) == 0 {
		return nil, fmt.Errorf("%w: empty ciphertext", ErrInvalidPadding)
	}

	mode, err := e.blockMode(iv, false)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(ciphertext))
	mode.CryptBlocks(out, ciphertext)

	if e.padding == PKCS7 {
		return pkcs7Unpad(out, bs)
	}
	return out, nil
}

func (e *blockEngine) blockMode(iv []byte, encrypt bool) (cipher.BlockMode, error) {
	if e.mode == ECB {
		if encrypt {
			return newECBEncrypter(e.block), nil
		}
		return newECBDecrypter(e.block), nil
	}

	if err := ValidateIV(iv, e.alg); err != nil {
		return nil, err
	}
	if iv == nil {
		iv = make([]byte, e.block.BlockSize())
	}
	if encrypt {
		return cipher.NewCBCEncrypter(e.block, iv), nil
	}
	return cipher.NewCBCDecrypter(e.block, iv), nil
}

// BlockSize returns the IV width reserved for the stream cipher
func (e *streamEngine) BlockSize() int {
	return e.alg.BlockSize()
}

// Encrypt XORs plaintext with a fresh keystream
func (e *streamEngine) Encrypt(_, plaintext []byte) ([]byte, error) {
	return e.xor(plaintext)
}

// Decrypt XORs ciphertext with a fresh keystream
func (e *streamEngine) Decrypt(_, ciphertext []byte) ([]byte, error) {
	return e.xor(ciphertext)
}

func (e *streamEngine) xor(in []byte) ([]byte, error) {
	c, err := rc4.NewCipher(e.key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	c.XORKeyStream(out, in)
	return out, nil
}

// Encrypt encrypts plaintext with a one-shot cipher engine
func Encrypt(plaintext, key, iv []byte, alg Algorithm, mode BlockMode, padding Padding) ([]byte, error) {
	engine, err := NewCipherEngine(alg, mode, padding, key)
	if err != nil {
		return nil, NewEncryptionError("encrypt", alg, err)
	}
	ciphertext, err := engine.Encrypt(iv, plaintext)
	if err != nil {
		return nil, NewEncryptionError("encrypt", alg, err)
	}
	return ciphertext, nil
}

// Decrypt decrypts ciphertext with a one-shot cipher engine
func Decrypt(ciphertext, key, iv []byte, alg Algorithm, mode BlockMode, padding Padding) ([]byte, error) {
	engine, err := NewCipherEngine(alg, mode, padding, key)
	if err != nil {
		return nil, NewEncryptionError("decrypt", alg, err)
	}
	plaintext, err := engine.Decrypt(iv, ciphertext)
	if err != nil {
		return nil, NewEncryptionError("decrypt", alg, err)
	}
	return plaintext, nil
}
