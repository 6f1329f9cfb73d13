package session

import (
	"testing"

	"github.com/go-scard/pivcard/pkg/iso7816"
)

// fakeTransport replays scripted exchanges and records selected AIDs and
// every APDU, so tests can assert that version gating happens before
// anything is sent.
type fakeTransport struct {
	t        *testing.T
	selected [][]byte
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

func (f *fakeTransport) failStatus(code uint16) *fakeTransport {
	f.script = append(f.script, exchange{err: iso7816.NewStatusError(code)})
	return f
}

func (f *fakeTransport) SendAndReceive(apdu iso7816.APDU) ([]byte, error) {
	apdu.Data = append([]byte(nil), apdu.Data...)
	f.requests = append(f.requests, apdu)
	if len(f.script) == 0 {
		f.t.Fatalf("unexpected exchange: ins %02X", apdu.Ins)
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next.resp, next.err
}

func (f *fakeTransport) Select(aid []byte) error {
	f.selected = append(f.selected, aid)
	return nil
}
