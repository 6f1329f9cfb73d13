// Package commands implements one exchange per PIV instruction: it builds
// the command APDU, validates caller-supplied parameters before anything is
// sent, and parses the TLV response. Capability gating by firmware version
// and retry-state bookkeeping live one layer up, in pkg/session.
package commands

import (
	"io"
	"log/slog"

	"github.com/go-scard/pivcard/pkg/options"
)

// Client executes PIV commands over an injected iso7816.Transport. It holds
// no per-card state and may be shared across sessions, one call at a time.
type Client struct {
	logger *slog.Logger
	rand   io.Reader
}

func NewClient(opts ...options.Option) *Client {
	oo := options.NewOptions(opts...)

	return &Client{
		logger: oo.Logger,
		rand:   oo.Rand,
	}
}
