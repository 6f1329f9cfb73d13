package commands

import (
	"encoding/binary"
	"fmt"

	"github.com/go-scard/pivcard/pkg/iso7816"
	"github.com/go-scard/pivcard/pkg/pivtypes"
)

// GetVersion reads the firmware version triple.
func (cl *Client) GetVersion(t iso7816.Transport) (pivtypes.Version, error) {
	resp, err := t.SendAndReceive(iso7816.APDU{Ins: pivtypes.InsGetVersion})
	if err != nil {
		return pivtypes.Version{}, err
	}
	version, err := pivtypes.ParseVersion(resp)
	if err != nil {
		return pivtypes.Version{}, fmt.Errorf("%w: %s", ErrBadResponse, err)
	}
	cl.logger.Debug("firmware version", "version", version)
	return version, nil
}

// GetSerial reads the device serial number. Only firmware 5.0+ exposes the
// serial through the PIV application; gated by the session.
func (cl *Client) GetSerial(t iso7816.Transport) (uint32, error) {
	resp, err := t.SendAndReceive(iso7816.APDU{Ins: pivtypes.InsGetSerial})
	if err != nil {
		return 0, err
	}
	if len(resp) != 4 {
		return 0, fmt.Errorf("%w: expected 4 byte serial, got %d", ErrBadResponse, len(resp))
	}
	return binary.BigEndian.Uint32(resp), nil
}

// ResetApplet restores the application to its just-installed state. The card
// only accepts it once both PIN and PUK are blocked; the session takes care
// of that.
func (cl *Client) ResetApplet(t iso7816.Transport) error {
	_, err := t.SendAndReceive(iso7816.APDU{Ins: pivtypes.InsReset})
	return err
}
