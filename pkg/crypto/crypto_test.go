package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, 3)

func TestNewTDES_KeyLength(t *testing.T) {
	_, err := NewTDES(testKey[:16])
	assert.Error(t, err)

	tdes, err := NewTDES(testKey)
	require.NoError(t, err)
	tdes.Close()
}

func TestTDES_RoundTrip(t *testing.T) {
	tdes, err := NewTDES(testKey)
	require.NoError(t, err)
	defer tdes.Close()

	plaintext := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x11, 0x22, 0x33}
	ciphertext, err := tdes.EncryptBlock(plaintext)
	require.NoError(t, err)
	assert.Len(t, ciphertext, ChallengeLen)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := tdes.DecryptBlock(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestTDES_BlockSizeEnforced(t *testing.T) {
	tdes, err := NewTDES(testKey)
	require.NoError(t, err)
	defer tdes.Close()

	_, err = tdes.EncryptBlock([]byte{0x01})
	assert.Error(t, err)
	_, err = tdes.DecryptBlock(make([]byte, 16))
	assert.Error(t, err)
}

func TestChallenge(t *testing.T) {
	challenge, err := Challenge(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9}))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, challenge)

	_, err = Challenge(bytes.NewReader([]byte{1, 2, 3}))
	assert.Error(t, err)
}

func TestZeroize(t *testing.T) {
	buf := []byte{0x31, 0x32, 0x33, 0x34}
	Zeroize(buf)
	assert.Equal(t, make([]byte, 4), buf)
}
