package commands

import (
	"errors"
	"fmt"

	"github.com/go-scard/pivcard/pkg/iso7816"
	"github.com/go-scard/pivcard/pkg/pivtypes"
)

var (
	// ErrInvalidArgument marks a local precondition violation; nothing was
	// sent to the card.
	ErrInvalidArgument = errors.New("commands: invalid argument")
	// ErrBadResponse marks a structurally valid but semantically wrong
	// response from the card.
	ErrBadResponse = errors.New("commands: bad response")
	// ErrUnsupportedEncoding marks a private key the card cannot store.
	ErrUnsupportedEncoding = errors.New("commands: unsupported key encoding")
)

// InvalidPINError is returned when a PIN or PUK was rejected. Retries is the
// number of attempts remaining; 0 means the credential is blocked. Check for
// it with errors.As.
type InvalidPINError struct {
	Retries int
}

func (e *InvalidPINError) Error() string {
	s := "retries"
	if e.Retries == 1 {
		s = "retry"
	}
	return fmt.Sprintf("commands: invalid PIN/PUK, %d %s left", e.Retries, s)
}

// retriesFromStatus extracts an embedded retry count from a status word, or
// -1 if the code does not carry one. Firmware before 1.0.4 reports the full
// count in the low byte of 0x63xx; later firmware reports only the low
// nibble of 0x63Cx, capping the visible count at 15. 0x6983 always means
// blocked.
func retriesFromStatus(version pivtypes.Version, code uint16) int {
	if code == iso7816.SWAuthMethodBlocked {
		return 0
	}
	if version.LessThan(1, 0, 4) {
		if code >= 0x6300 && code <= 0x63ff {
			return int(code & 0xff)
		}
	} else if code >= 0x63c0 && code <= 0x63cf {
		return int(code & 0xf)
	}
	return -1
}

// translatePINStatus rewrites a status error carrying a retry count into an
// InvalidPINError; other errors pass through unchanged.
func translatePINStatus(version pivtypes.Version, err error) error {
	code, ok := iso7816.StatusCode(err)
	if !ok {
		return err
	}
	if retries := retriesFromStatus(version, code); retries >= 0 {
		return &InvalidPINError{Retries: retries}
	}
	return err
}
