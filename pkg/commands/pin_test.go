package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scard/pivcard/pkg/pivtypes"
)

func TestEncodePIN(t *testing.T) {
	padded, err := encodePIN("1234")
	require.NoError(t, err)
	assert.Equal(t, []byte{'1', '2', '3', '4', 0xff, 0xff, 0xff, 0xff}, padded)

	full, err := encodePIN("12345678")
	require.NoError(t, err)
	assert.Equal(t, []byte("12345678"), full)

	empty, err := encodePIN("")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, empty)

	_, err = encodePIN("123456789")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestVerifyPIN(t *testing.T) {
	ft := newFakeTransport(t).respond(nil)
	cl := NewClient()

	require.NoError(t, cl.VerifyPIN(ft, versionNew, pivtypes.P2PIN, "123456"))

	require.Len(t, ft.requests, 1)
	req := ft.requests[0]
	assert.Equal(t, pivtypes.InsVerify, req.Ins)
	assert.Equal(t, pivtypes.P2PIN, req.P2)
	assert.Equal(t, []byte{'1', '2', '3', '4', '5', '6', 0xff, 0xff}, req.Data)
}

func TestVerifyPIN_TooLongIsLocal(t *testing.T) {
	ft := newFakeTransport(t)
	cl := NewClient()

	err := cl.VerifyPIN(ft, versionNew, pivtypes.P2PIN, "123456789")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, ft.requests, "an oversized PIN must never reach the card")
}

func TestVerifyPIN_WrongPIN(t *testing.T) {
	ft := newFakeTransport(t).failStatus(0x63c2)
	cl := NewClient()

	err := cl.VerifyPIN(ft, versionNew, pivtypes.P2PIN, "000000")

	var pinErr *InvalidPINError
	require.ErrorAs(t, err, &pinErr)
	assert.Equal(t, 2, pinErr.Retries)
}

func TestChangeReference(t *testing.T) {
	ft := newFakeTransport(t).respond(nil)
	cl := NewClient()

	err := cl.ChangeReference(ft, versionNew, pivtypes.InsChangeReference, pivtypes.P2PUK, "12345678", "87654321")
	require.NoError(t, err)

	require.Len(t, ft.requests, 1)
	req := ft.requests[0]
	assert.Equal(t, pivtypes.InsChangeReference, req.Ins)
	assert.Equal(t, pivtypes.P2PUK, req.P2)
	assert.Equal(t, append([]byte("12345678"), []byte("87654321")...), req.Data)
}

func TestPINRetries(t *testing.T) {
	ft := newFakeTransport(t).failStatus(0x63c3)
	cl := NewClient()

	retries, verified, err := cl.PINRetries(ft, versionNew)
	require.NoError(t, err)
	assert.False(t, verified)
	assert.Equal(t, 3, retries)

	// The probe carries no data; it must not consume an attempt.
	require.Len(t, ft.requests, 1)
	assert.Empty(t, ft.requests[0].Data)
}

func TestPINRetries_AlreadyVerified(t *testing.T) {
	ft := newFakeTransport(t).respond(nil)
	cl := NewClient()

	_, verified, err := cl.PINRetries(ft, versionNew)
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestSetPINRetries(t *testing.T) {
	ft := newFakeTransport(t).respond(nil)
	cl := NewClient()

	require.NoError(t, cl.SetPINRetries(ft, 5, 7))

	require.Len(t, ft.requests, 1)
	req := ft.requests[0]
	assert.Equal(t, pivtypes.InsSetPINRetries, req.Ins)
	assert.Equal(t, byte(5), req.P1)
	assert.Equal(t, byte(7), req.P2)
}

func TestSetPINRetries_Range(t *testing.T) {
	ft := newFakeTransport(t)
	cl := NewClient()

	assert.ErrorIs(t, cl.SetPINRetries(ft, 0, 3), ErrInvalidArgument)
	assert.ErrorIs(t, cl.SetPINRetries(ft, 3, 256), ErrInvalidArgument)
	assert.Empty(t, ft.requests)
}
