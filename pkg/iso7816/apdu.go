// Package iso7816 defines the command unit and transport contract the PIV
// engine is built on. The physical channel (PC/SC, NFC, CCID) lives behind
// the Transport interface and is supplied by the caller.
package iso7816

// APDU is a single ISO 7816-4 command unit. Instances are built per call and
// never persisted.
type APDU struct {
	Cla  byte
	Ins  byte
	P1   byte
	P2   byte
	Data []byte
}

// Transport is the injected lower layer. SendAndReceive transmits one command
// APDU, handling any response chaining internally, and returns the response
// payload without the trailing status word. A non-success status word is
// reported as a *StatusError.
//
// Select performs the ISO application-selection handshake for the given AID.
// A Transport permits exactly one outstanding command at a time; callers must
// not share it across goroutines.
type Transport interface {
	SendAndReceive(apdu APDU) ([]byte, error)
	Select(aid []byte) error
}

// AIDPIV is the PIV application identifier (NIST SP 800-73).
var AIDPIV = []byte{0xa0, 0x00, 0x00, 0x03, 0x08}
