package commands

import (
	"bytes"
	"crypto/des"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scard/pivcard/pkg/bertlv"
	"github.com/go-scard/pivcard/pkg/iso7816"
	"github.com/go-scard/pivcard/pkg/options"
	"github.com/go-scard/pivcard/pkg/pivtypes"
)

func tdesEncrypt(t *testing.T, key, plaintext []byte) []byte {
	block, err := des.NewTripleDESCipher(key)
	require.NoError(t, err)
	out := make([]byte, 8)
	block.Encrypt(out, plaintext)
	return out
}

// scriptMutualAuth plays the card side of the management-key handshake with
// cardKey: it reveals an encrypted witness, then answers the client's
// challenge with its encryption. The challenge is known in advance because
// the client's randomness is fixed to it.
func scriptMutualAuth(t *testing.T, ft *fakeTransport, cardKey, witness, challenge []byte) {
	ft.respond(bertlv.Encode(pivtypes.TagDynAuth,
		bertlv.Encode(pivtypes.TagAuthWitness, tdesEncrypt(t, cardKey, witness))))
	ft.respond(bertlv.Encode(pivtypes.TagDynAuth,
		bertlv.Encode(pivtypes.TagAuthResponse, tdesEncrypt(t, cardKey, challenge))))
}

func TestAuthenticateManagementKey(t *testing.T) {
	key := pivtypes.DefaultManagementKey[:]
	witness := []byte{0x10, 0x20, 0x30, 0x40, 0x50, 0x60, 0x70, 0x80}
	challenge := []byte{0xa1, 0xa2, 0xa3, 0xa4, 0xa5, 0xa6, 0xa7, 0xa8}

	ft := newFakeTransport(t)
	scriptMutualAuth(t, ft, key, witness, challenge)
	cl := NewClient(options.WithRand(bytes.NewReader(challenge)))

	require.NoError(t, cl.AuthenticateManagementKey(ft, key))
	require.Len(t, ft.requests, 2)

	// First exchange requests a witness with an empty 0x80 entry.
	first := ft.requests[0]
	assert.Equal(t, pivtypes.InsAuthenticate, first.Ins)
	assert.Equal(t, pivtypes.AlgTDES, first.P1)
	assert.Equal(t, byte(pivtypes.SlotCardManagement), first.P2)
	assert.Equal(t, bertlv.Encode(pivtypes.TagDynAuth, bertlv.Encode(pivtypes.TagAuthWitness, nil)), first.Data)

	// Second exchange proves we decrypted the witness and adds our challenge.
	inner, err := bertlv.UnwrapValue(pivtypes.TagDynAuth, ft.requests[1].Data)
	require.NoError(t, err)
	m, err := bertlv.ParseMap(inner)
	require.NoError(t, err)
	assert.Equal(t, witness, m.Lookup(pivtypes.TagAuthWitness).MustGet())
	assert.Equal(t, challenge, m.Lookup(pivtypes.TagAuthChallenge).MustGet())
}

func TestAuthenticateManagementKey_WrongKey(t *testing.T) {
	cardKey := pivtypes.DefaultManagementKey[:]
	wrongKey := bytes.Repeat([]byte{0x42}, 24)
	witness := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	challenge := []byte{9, 10, 11, 12, 13, 14, 15, 16}

	ft := newFakeTransport(t)
	scriptMutualAuth(t, ft, cardKey, witness, challenge)
	cl := NewClient(options.WithRand(bytes.NewReader(challenge)))

	// The mismatch only becomes visible at the final comparison.
	err := cl.AuthenticateManagementKey(ft, wrongKey)
	assert.ErrorIs(t, err, ErrBadResponse)
	assert.Len(t, ft.requests, 2)
}

func TestAuthenticateManagementKey_BadKeyLength(t *testing.T) {
	ft := newFakeTransport(t)
	cl := NewClient()

	err := cl.AuthenticateManagementKey(ft, []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, ft.requests)
}

func TestSetManagementKey(t *testing.T) {
	key := bytes.Repeat([]byte{0xab}, 24)
	ft := newFakeTransport(t).respond(nil)
	cl := NewClient()

	require.NoError(t, cl.SetManagementKey(ft, key, false))

	require.Len(t, ft.requests, 1)
	req := ft.requests[0]
	assert.Equal(t, pivtypes.InsSetManagementKey, req.Ins)
	assert.Equal(t, byte(0xff), req.P1)
	assert.Equal(t, byte(0xff), req.P2)

	want := append([]byte{pivtypes.AlgTDES}, bertlv.Encode(int(pivtypes.SlotCardManagement), key)...)
	assert.Equal(t, want, req.Data)
}

func TestSetManagementKey_RequireTouch(t *testing.T) {
	ft := newFakeTransport(t).respond(nil)
	cl := NewClient()

	require.NoError(t, cl.SetManagementKey(ft, bytes.Repeat([]byte{0xab}, 24), true))
	assert.Equal(t, byte(0xfe), ft.requests[0].P2)
}

func TestUsePrivateKey_Sign(t *testing.T) {
	digest := bytes.Repeat([]byte{0x5a}, 32)
	signature := []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02}

	ft := newFakeTransport(t).respond(
		bertlv.Encode(pivtypes.TagDynAuth, bertlv.Encode(pivtypes.TagAuthResponse, signature)))
	cl := NewClient()

	got, err := cl.UsePrivateKey(ft, pivtypes.SlotSignature, pivtypes.ECCP256, digest, false)
	require.NoError(t, err)
	assert.Equal(t, signature, got)

	req := ft.requests[0]
	assert.Equal(t, pivtypes.InsAuthenticate, req.Ins)
	assert.Equal(t, byte(pivtypes.ECCP256), req.P1)
	assert.Equal(t, byte(pivtypes.SlotSignature), req.P2)

	inner, err := bertlv.UnwrapValue(pivtypes.TagDynAuth, req.Data)
	require.NoError(t, err)
	m, err := bertlv.ParseMap(inner)
	require.NoError(t, err)
	// The empty response entry asks the card to fill it in.
	assert.Equal(t, []int{pivtypes.TagAuthResponse, pivtypes.TagAuthChallenge}, m.Tags())
	assert.Equal(t, digest, m.Lookup(pivtypes.TagAuthChallenge).MustGet())
}

func TestUsePrivateKey_Exponentiation(t *testing.T) {
	point := append([]byte{0x04}, bytes.Repeat([]byte{0x11}, 64)...)
	ft := newFakeTransport(t).respond(
		bertlv.Encode(pivtypes.TagDynAuth, bertlv.Encode(pivtypes.TagAuthResponse, bytes.Repeat([]byte{0x22}, 32))))
	cl := NewClient()

	_, err := cl.UsePrivateKey(ft, pivtypes.SlotKeyManagement, pivtypes.ECCP256, point, true)
	require.NoError(t, err)

	inner, err := bertlv.UnwrapValue(pivtypes.TagDynAuth, ft.requests[0].Data)
	require.NoError(t, err)
	m, err := bertlv.ParseMap(inner)
	require.NoError(t, err)
	assert.Equal(t, point, m.Lookup(pivtypes.TagAuthExponent).MustGet())
}

func TestUsePrivateKey_EmptySlotHint(t *testing.T) {
	ft := newFakeTransport(t).failStatus(iso7816.SWIncorrectValues)
	cl := NewClient()

	_, err := cl.UsePrivateKey(ft, pivtypes.SlotAuthentication, pivtypes.RSA2048, bytes.Repeat([]byte{0}, 256), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "make sure a RSA2048 key is present in slot 9A")

	code, ok := iso7816.StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, iso7816.SWIncorrectValues, code)
}
