package securedata

import (
	"crypto/cipher"
	"fmt"
)

// ecb implements cipher.BlockMode by applying the block cipher to each
// block independently.
type ecb struct {
	block   cipher.Block
	encrypt bool
}

func newECBEncrypter(b cipher.Block) cipher.BlockMode {
	return &ecb{block: b, encrypt: true}
}

func newECBDecrypter(b cipher.Block) cipher.BlockMode {
	return &ecb{block: b, encrypt: false}
}

func (m *ecb) BlockSize() int {
	return m.block.BlockSize()
}

func (m *ecb) CryptBlocks(dst, src []byte) {
	bs := m.block.BlockSize()
	if len(src)%bs != 0 {
		panic("securedata: ecb input not full blocks")
	}
	if len(dst) < len(src) {
		panic("securedata: ecb output smaller than input")
	}
	for len(src) > 0 {
		if m.encrypt {
			m.block.Encrypt(dst[:bs], src[:bs])
		} else {
			m.block.Decrypt(dst[:bs], src[:bs])
		}
		src = src[bs:]
		dst = dst[bs:]
	}
}

// pkcs7Pad appends 1..blockSize bytes, each equal to the pad length
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	for i := 0; i < n; i++ {
		data = append(data, byte(n))
	}
	return data
}

// pkcs7Unpad validates and strips PKCS7 padding
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes with block size %d", ErrInvalidPadding, len(data), blockSize)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: pad length %d", ErrInvalidPadding, n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: inconsistent pad bytes", ErrInvalidPadding)
		}
	}
	return data[:len(data)-n], nil
}
