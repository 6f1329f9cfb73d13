package pivtypes

import "fmt"

// Slot is a PIV key reference identifier.
type Slot byte

const (
	SlotAuthentication Slot = 0x9a
	SlotCardManagement Slot = 0x9b
	SlotSignature      Slot = 0x9c
	SlotKeyManagement  Slot = 0x9d
	SlotCardAuth       Slot = 0x9e
	SlotAttestation    Slot = 0xf9
)

// RetiredSlot returns the n-th retired key-management slot (1-20),
// key references 0x82 through 0x95.
func RetiredSlot(n int) (Slot, error) {
	if n < 1 || n > 20 {
		return 0, fmt.Errorf("pivtypes: retired slot index %d out of range 1-20", n)
	}
	return Slot(0x82 + n - 1), nil
}

// IsRetired reports whether s is one of the twenty retired slots.
func (s Slot) IsRetired() bool {
	return s >= 0x82 && s <= 0x95
}

func (s Slot) String() string {
	switch s {
	case SlotAuthentication:
		return "Authentication (9A)"
	case SlotCardManagement:
		return "Card Management (9B)"
	case SlotSignature:
		return "Signature (9C)"
	case SlotKeyManagement:
		return "Key Management (9D)"
	case SlotCardAuth:
		return "Card Authentication (9E)"
	case SlotAttestation:
		return "Attestation (F9)"
	}
	if s.IsRetired() {
		return fmt.Sprintf("Retired (%02X)", byte(s))
	}
	return fmt.Sprintf("Slot(%02X)", byte(s))
}

// ObjectID returns the data-object identifier holding the certificate for
// the key in s, or 0 for slots without an associated certificate object.
func (s Slot) ObjectID() ObjectID {
	switch s {
	case SlotAuthentication:
		return ObjectCertAuthentication
	case SlotSignature:
		return ObjectCertSignature
	case SlotKeyManagement:
		return ObjectCertKeyManagement
	case SlotCardAuth:
		return ObjectCertCardAuth
	case SlotAttestation:
		return ObjectCertAttestation
	}
	if s.IsRetired() {
		// Retired certificates occupy 0x5FC10D through 0x5FC120.
		return ObjectCertRetired1 + ObjectID(s-0x82)
	}
	return 0
}
