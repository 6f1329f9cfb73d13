package commands

import (
	"errors"
	"fmt"

	"github.com/go-scard/pivcard/pkg/crypto"
	"github.com/go-scard/pivcard/pkg/iso7816"
	"github.com/go-scard/pivcard/pkg/pivtypes"
)

// pinLen is the fixed credential buffer length on the wire.
const pinLen = 8

// encodePIN UTF-8 encodes a PIN or PUK and right-pads it with 0xFF to
// exactly 8 bytes. Longer credentials are rejected locally. An empty
// credential is legal; it is used to deliberately burn retry attempts.
// Callers own zeroizing the returned buffer.
func encodePIN(pin string) ([]byte, error) {
	raw := []byte(pin)
	defer crypto.Zeroize(raw)
	if len(raw) > pinLen {
		return nil, fmt.Errorf("%w: PIN/PUK must be no longer than %d bytes", ErrInvalidArgument, pinLen)
	}
	padded := make([]byte, pinLen)
	n := copy(padded, raw)
	for i := n; i < pinLen; i++ {
		padded[i] = 0xff
	}
	return padded, nil
}

// VerifyPIN submits the PIN (p2 distinguishes PIN from PUK). A rejection
// carrying a retry count comes back as *InvalidPINError.
func (cl *Client) VerifyPIN(t iso7816.Transport, version pivtypes.Version, p2 byte, pin string) error {
	data, err := encodePIN(pin)
	if err != nil {
		return err
	}
	defer crypto.Zeroize(data)

	if _, err := t.SendAndReceive(iso7816.APDU{
		Ins:  pivtypes.InsVerify,
		P2:   p2,
		Data: data,
	}); err != nil {
		return translatePINStatus(version, err)
	}
	return nil
}

// ChangeReference drives both CHANGE REFERENCE DATA (change PIN/PUK) and
// RESET RETRY COUNTER (unblock PIN with PUK); the two commands share the
// concatenated old+new credential layout. The combined buffer is zeroized
// on every exit path.
func (cl *Client) ChangeReference(t iso7816.Transport, version pivtypes.Version, ins, p2 byte, current, replacement string) error {
	currentData, err := encodePIN(current)
	if err != nil {
		return err
	}
	defer crypto.Zeroize(currentData)
	replacementData, err := encodePIN(replacement)
	if err != nil {
		return err
	}
	defer crypto.Zeroize(replacementData)

	data := append(currentData, replacementData...)
	defer crypto.Zeroize(data)

	if _, err := t.SendAndReceive(iso7816.APDU{
		Ins:  ins,
		P2:   p2,
		Data: data,
	}); err != nil {
		return translatePINStatus(version, err)
	}
	return nil
}

// PINRetries probes the remaining PIN attempts with a data-less VERIFY,
// which does not consume an attempt. verified reports that the card
// accepted the probe because the PIN was already verified this session; the
// true count is then unknowable and retries is 0.
func (cl *Client) PINRetries(t iso7816.Transport, version pivtypes.Version) (retries int, verified bool, err error) {
	_, err = t.SendAndReceive(iso7816.APDU{
		Ins: pivtypes.InsVerify,
		P2:  pivtypes.P2PIN,
	})
	if err == nil {
		return 0, true, nil
	}

	var pinErr *InvalidPINError
	if errors.As(translatePINStatus(version, err), &pinErr) {
		return pinErr.Retries, false, nil
	}
	return 0, false, err
}

// SetPINRetries configures the total retry counts for PIN and PUK. Requires
// prior management-key authentication and PIN verification. Resets both
// credentials' remaining counters to the new totals.
func (cl *Client) SetPINRetries(t iso7816.Transport, pinAttempts, pukAttempts int) error {
	if pinAttempts < 1 || pinAttempts > 0xff || pukAttempts < 1 || pukAttempts > 0xff {
		return fmt.Errorf("%w: retry counts must be within 1-255", ErrInvalidArgument)
	}
	_, err := t.SendAndReceive(iso7816.APDU{
		Ins: pivtypes.InsSetPINRetries,
		P1:  byte(pinAttempts),
		P2:  byte(pukAttempts),
	})
	return err
}
