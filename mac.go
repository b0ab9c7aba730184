package securedata

import (
	"crypto/hmac"
	"fmt"
)

// ComputeMAC returns the HMAC of message under key. The tag length is
// always alg.Size().
func ComputeMAC(key, message []byte, alg MACAlgorithm) ([]byte, error) {
	hashFunc := alg.Hash()
	if hashFunc == nil {
		return nil, fmt.Errorf("unsupported MAC algorithm: %v", alg)
	}
	mac := hmac.New(hashFunc, key)
	mac.Write(message)
	return mac.Sum(nil), nil
}

// VerifyMAC recomputes the HMAC of message and compares it with tag in
// constant time.
func VerifyMAC(key, message, tag []byte, alg MACAlgorithm) (bool, error) {
	expected, err := ComputeMAC(key, message, alg)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, tag), nil
}
