package iso7816

import (
	"errors"
	"fmt"
)

// Status words used by the PIV application.
const (
	SWSuccess                uint16 = 0x9000
	SWApplicationNotFound    uint16 = 0x6a82
	SWAuthenticationRequired uint16 = 0x6982
	SWIncorrectValues        uint16 = 0x6a80
	SWAuthMethodBlocked      uint16 = 0x6983
)

// StatusError is returned by a Transport when the card answers with a status
// word other than 0x9000. It carries the raw code; the command layer
// re-interprets well-known codes into richer errors.
type StatusError struct {
	SW1 byte
	SW2 byte
}

// NewStatusError builds a StatusError from a 16-bit status word.
func NewStatusError(code uint16) *StatusError {
	return &StatusError{SW1: byte(code >> 8), SW2: byte(code)}
}

// Code returns the 16-bit status word.
func (e *StatusError) Code() uint16 {
	return uint16(e.SW1)<<8 | uint16(e.SW2)
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("iso7816: status %04X", e.Code())
}

// StatusCode extracts the status word from err if it carries one.
func StatusCode(err error) (uint16, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code(), true
	}
	return 0, false
}
