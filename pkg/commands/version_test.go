package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scard/pivcard/pkg/pivtypes"
)

func TestGetVersion(t *testing.T) {
	ft := newFakeTransport(t).respond([]byte{5, 4, 3})
	cl := NewClient()

	version, err := cl.GetVersion(ft)
	require.NoError(t, err)
	assert.Equal(t, pivtypes.Version{Major: 5, Minor: 4, Patch: 3}, version)
	assert.Equal(t, pivtypes.InsGetVersion, ft.requests[0].Ins)
}

func TestGetVersion_Truncated(t *testing.T) {
	ft := newFakeTransport(t).respond([]byte{5})
	cl := NewClient()

	_, err := cl.GetVersion(ft)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestGetSerial(t *testing.T) {
	ft := newFakeTransport(t).respond([]byte{0x00, 0xbc, 0x61, 0x4e})
	cl := NewClient()

	serial, err := cl.GetSerial(ft)
	require.NoError(t, err)
	assert.Equal(t, uint32(12345678), serial)
	assert.Equal(t, pivtypes.InsGetSerial, ft.requests[0].Ins)
}

func TestGetSerial_BadLength(t *testing.T) {
	ft := newFakeTransport(t).respond([]byte{0x01, 0x02})
	cl := NewClient()

	_, err := cl.GetSerial(ft)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestResetApplet(t *testing.T) {
	ft := newFakeTransport(t).respond(nil)
	cl := NewClient()

	require.NoError(t, cl.ResetApplet(ft))
	assert.Equal(t, pivtypes.InsReset, ft.requests[0].Ins)
}
