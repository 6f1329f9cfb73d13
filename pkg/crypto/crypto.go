// Package crypto wraps the symmetric primitives used by the management-key
// mutual authentication and the handling rules for credential material.
package crypto

import (
	"crypto/des" //nolint:gosec // TDES is the PIV management-key algorithm.
	"fmt"
	"io"
)

// ChallengeLen is the length of witness and challenge blocks in the
// management-key mutual authentication, one TDES block.
const ChallengeLen = 8

// ManagementKeyLen is the length of a Triple-DES management key.
const ManagementKeyLen = 24

// TDES is a Triple-DES block cipher operating in ECB on single
// ChallengeLen-sized blocks, as the PIV mutual authentication requires.
type TDES struct {
	key [ManagementKeyLen]byte
}

// NewTDES validates the key length and returns the cipher wrapper.
func NewTDES(key []byte) (*TDES, error) {
	if len(key) != ManagementKeyLen {
		return nil, fmt.Errorf("crypto: management key must be %d bytes, got %d", ManagementKeyLen, len(key))
	}
	t := &TDES{}
	copy(t.key[:], key)
	return t, nil
}

// EncryptBlock encrypts one 8-byte block.
func (t *TDES) EncryptBlock(plaintext []byte) ([]byte, error) {
	block, err := des.NewTripleDESCipher(t.key[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: creating TDES cipher: %w", err)
	}
	if len(plaintext) != block.BlockSize() {
		return nil, fmt.Errorf("crypto: plaintext must be %d bytes, got %d", block.BlockSize(), len(plaintext))
	}
	out := make([]byte, block.BlockSize())
	block.Encrypt(out, plaintext)
	return out, nil
}

// DecryptBlock decrypts one 8-byte block.
func (t *TDES) DecryptBlock(ciphertext []byte) ([]byte, error) {
	block, err := des.NewTripleDESCipher(t.key[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: creating TDES cipher: %w", err)
	}
	if len(ciphertext) != block.BlockSize() {
		return nil, fmt.Errorf("crypto: ciphertext must be %d bytes, got %d", block.BlockSize(), len(ciphertext))
	}
	out := make([]byte, block.BlockSize())
	block.Decrypt(out, ciphertext)
	return out, nil
}

// Close zeroes the key material.
func (t *TDES) Close() {
	Zeroize(t.key[:])
}

// Challenge reads a fresh random challenge block from r.
func Challenge(r io.Reader) ([]byte, error) {
	challenge := make([]byte, ChallengeLen)
	if _, err := io.ReadFull(r, challenge); err != nil {
		return nil, fmt.Errorf("crypto: reading random challenge: %w", err)
	}
	return challenge, nil
}

// Zeroize overwrites buf with zero bytes. Every buffer holding a PIN, PUK or
// key must pass through here on all exit paths.
func Zeroize(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
