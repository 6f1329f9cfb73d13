package pivtypes

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/go-scard/pivcard/pkg/bertlv"
)

// CHUID value tags (NIST SP 800-73-4 Table 9).
const (
	TagCHUIDFASCN     = 0x30
	TagCHUIDGUID      = 0x34
	TagCHUIDExpiry    = 0x35
	TagCHUIDSignature = 0x3e
)

// chuidFASCN is the non-federal-issuer FASC-N (all-nines, BCD with parity).
var chuidFASCN = []byte{
	0xd4, 0xe7, 0x39, 0xda, 0x73, 0x9c, 0xed, 0x39, 0xce, 0x73, 0x9d,
	0x83, 0x68, 0x58, 0x21, 0x08, 0x42, 0x10, 0x84, 0x21, 0xc8, 0x42,
	0x10, 0xc3, 0xeb,
}

// GenerateCHUID builds a Cardholder Unique Identifier data object with a
// random GUID, suitable for storing under ObjectCHUID. Many client stacks
// refuse to use a card until a CHUID is present.
func GenerateCHUID() ([]byte, error) {
	guid, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("pivtypes: generating CHUID GUID: %w", err)
	}

	m := bertlv.NewMap().
		Put(TagCHUIDFASCN, chuidFASCN).
		Put(TagCHUIDGUID, guid[:]).
		Put(TagCHUIDExpiry, []byte("20400101")).
		Put(TagCHUIDSignature, []byte{}).
		Put(TagLRC, nil)
	return m.Pack(), nil
}

// ParseCHUIDGUID extracts the GUID from a CHUID data object.
func ParseCHUIDGUID(data []byte) (uuid.UUID, error) {
	m, err := bertlv.ParseMap(data)
	if err != nil {
		return uuid.Nil, err
	}
	guid, ok := m.Lookup(TagCHUIDGUID).Get()
	if !ok {
		return uuid.Nil, fmt.Errorf("pivtypes: CHUID has no GUID entry")
	}
	return uuid.FromBytes(guid)
}
