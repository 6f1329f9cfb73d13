package commands

import (
	"fmt"

	"github.com/go-scard/pivcard/pkg/bertlv"
	"github.com/go-scard/pivcard/pkg/iso7816"
	"github.com/go-scard/pivcard/pkg/pivtypes"
)

// Byte-pair layouts inside metadata responses.
const (
	indexPINPolicy        = 0
	indexTouchPolicy      = 1
	indexRetriesTotal     = 0
	indexRetriesRemaining = 1
)

func (cl *Client) getMetadata(t iso7816.Transport, p2 byte) (*bertlv.Map, error) {
	resp, err := t.SendAndReceive(iso7816.APDU{
		Ins: pivtypes.InsGetMetadata,
		P2:  p2,
	})
	if err != nil {
		return nil, err
	}
	return bertlv.ParseMap(resp)
}

// requiredTag fetches a metadata tag that the card must include; its absence
// is a response-integrity failure.
func requiredTag(m *bertlv.Map, tag int) ([]byte, error) {
	value, ok := m.Lookup(tag).Get()
	if !ok {
		return nil, fmt.Errorf("%w: metadata response is missing tag 0x%02X", ErrBadResponse, tag)
	}
	return value, nil
}

// PinMetadata queries PIN or PUK state (p2 selects which); this is ground
// truth and does not consume a retry. Firmware 5.3+ only; gated by the
// session.
func (cl *Client) PinMetadata(t iso7816.Transport, p2 byte) (*pivtypes.PinMetadata, error) {
	m, err := cl.getMetadata(t, p2)
	if err != nil {
		return nil, err
	}

	isDefault, err := requiredTag(m, pivtypes.TagMetadataIsDefault)
	if err != nil {
		return nil, err
	}
	retries, err := requiredTag(m, pivtypes.TagMetadataRetries)
	if err != nil {
		return nil, err
	}
	if len(isDefault) < 1 || len(retries) < 2 {
		return nil, fmt.Errorf("%w: truncated metadata value", ErrBadResponse)
	}

	return &pivtypes.PinMetadata{
		IsDefault:         isDefault[0] != 0,
		TotalRetries:      int(retries[indexRetriesTotal]),
		AttemptsRemaining: int(retries[indexRetriesRemaining]),
	}, nil
}

// ManagementKeyMetadata queries the card management key state.
func (cl *Client) ManagementKeyMetadata(t iso7816.Transport) (*pivtypes.ManagementKeyMetadata, error) {
	m, err := cl.getMetadata(t, byte(pivtypes.SlotCardManagement))
	if err != nil {
		return nil, err
	}

	isDefault, err := requiredTag(m, pivtypes.TagMetadataIsDefault)
	if err != nil {
		return nil, err
	}
	policy, err := requiredTag(m, pivtypes.TagMetadataPolicy)
	if err != nil {
		return nil, err
	}
	if len(isDefault) < 1 || len(policy) < 2 {
		return nil, fmt.Errorf("%w: truncated metadata value", ErrBadResponse)
	}

	touchPolicy, err := pivtypes.TouchPolicyFromValue(policy[indexTouchPolicy])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, err)
	}

	return &pivtypes.ManagementKeyMetadata{
		IsDefault:   isDefault[0] != 0,
		TouchPolicy: touchPolicy,
	}, nil
}

// SlotMetadata queries the key stored in slot.
func (cl *Client) SlotMetadata(t iso7816.Transport, slot pivtypes.Slot) (*pivtypes.SlotMetadata, error) {
	m, err := cl.getMetadata(t, byte(slot))
	if err != nil {
		return nil, err
	}

	algo, err := requiredTag(m, pivtypes.TagMetadataAlgorithm)
	if err != nil {
		return nil, err
	}
	policy, err := requiredTag(m, pivtypes.TagMetadataPolicy)
	if err != nil {
		return nil, err
	}
	origin, err := requiredTag(m, pivtypes.TagMetadataOrigin)
	if err != nil {
		return nil, err
	}
	publicKey, err := requiredTag(m, pivtypes.TagMetadataPublicKey)
	if err != nil {
		return nil, err
	}
	if len(algo) < 1 || len(policy) < 2 || len(origin) < 1 {
		return nil, fmt.Errorf("%w: truncated metadata value", ErrBadResponse)
	}

	keyType, err := pivtypes.KeyTypeFromValue(algo[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, err)
	}
	pinPolicy, err := pivtypes.PINPolicyFromValue(policy[indexPINPolicy])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, err)
	}
	touchPolicy, err := pivtypes.TouchPolicyFromValue(policy[indexTouchPolicy])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, err)
	}

	return &pivtypes.SlotMetadata{
		KeyType:     keyType,
		PINPolicy:   pinPolicy,
		TouchPolicy: touchPolicy,
		Generated:   origin[0] == pivtypes.OriginGenerated,
		PublicKey:   publicKey,
	}, nil
}
