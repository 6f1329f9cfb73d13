package bertlv

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedTLV  = errors.New("bertlv: malformed TLV data")
	ErrUnexpectedTag = errors.New("bertlv: unexpected tag")
)

func newUnexpectedTag(want, got int) error {
	return fmt.Errorf("%w: expected 0x%02X, got 0x%02X", ErrUnexpectedTag, want, got)
}
