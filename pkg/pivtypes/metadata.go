package pivtypes

// PinMetadata describes the state of the PIN or PUK as reported by
// GET METADATA (firmware 5.3+). Derived per query, never cached.
type PinMetadata struct {
	IsDefault         bool
	TotalRetries      int
	AttemptsRemaining int
}

// ManagementKeyMetadata describes the card management key.
type ManagementKeyMetadata struct {
	IsDefault   bool
	TouchPolicy TouchPolicy
}

// SlotMetadata describes the key stored in a slot. PublicKey holds the raw
// TLV-encoded public-key data objects as returned by the card.
type SlotMetadata struct {
	KeyType     KeyType
	PINPolicy   PINPolicy
	TouchPolicy TouchPolicy
	Generated   bool
	PublicKey   []byte
}
