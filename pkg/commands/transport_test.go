package commands

import (
	"testing"

	"github.com/go-scard/pivcard/pkg/iso7816"
)

// fakeTransport replays scripted exchanges and records every APDU it was
// given, so tests can assert on the exact wire layout.
type fakeTransport struct {
	t        *testing.T
	requests []iso7816.APDU
	script   []exchange
}

type exchange struct {
	resp []byte
	err  error
}

func newFakeTransport(t *testing.T) *fakeTransport {
	return &fakeTransport{t: t}
}

func (f *fakeTransport) respond(resp []byte) *fakeTransport {
	f.script = append(f.script, exchange{resp: resp})
	return f
}

func (f *fakeTransport) fail(err error) *fakeTransport {
	f.script = append(f.script, exchange{err: err})
	return f
}

func (f *fakeTransport) failStatus(code uint16) *fakeTransport {
	return f.fail(iso7816.NewStatusError(code))
}

func (f *fakeTransport) SendAndReceive(apdu iso7816.APDU) ([]byte, error) {
	// Credential buffers are zeroized by the caller after the exchange, so
	// keep a copy for later assertions.
	apdu.Data = append([]byte(nil), apdu.Data...)
	f.requests = append(f.requests, apdu)
	if len(f.script) == 0 {
		f.t.Fatalf("unexpected exchange: ins %02X", apdu.Ins)
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next.resp, next.err
}

func (f *fakeTransport) Select([]byte) error {
	return nil
}
