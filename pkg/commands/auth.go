package commands

import (
	"bytes"
	"fmt"

	"github.com/go-scard/pivcard/pkg/bertlv"
	"github.com/go-scard/pivcard/pkg/crypto"
	"github.com/go-scard/pivcard/pkg/iso7816"
	"github.com/go-scard/pivcard/pkg/pivtypes"
)

// AuthenticateManagementKey performs the TDES mutual challenge-response
// against the card management key reference (NIST SP 800-73-4 §3.2.4).
//
// The card proves knowledge of the key by revealing a witness we decrypt;
// we prove ours by sending the decrypted witness back together with a fresh
// challenge, and checking the card's encryption of that challenge against
// our own. The key itself never crosses the wire, and the fresh challenge
// defeats replay. A wrong key surfaces as ErrBadResponse at the final
// comparison, never earlier.
func (cl *Client) AuthenticateManagementKey(t iso7816.Transport, managementKey []byte) error {
	tdes, err := crypto.NewTDES(managementKey)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}
	defer tdes.Close()

	// An empty witness is a request for a witness.
	request := bertlv.Encode(pivtypes.TagDynAuth, bertlv.Encode(pivtypes.TagAuthWitness, nil))
	resp, err := t.SendAndReceive(iso7816.APDU{
		Ins:  pivtypes.InsAuthenticate,
		P1:   pivtypes.AlgTDES,
		P2:   byte(pivtypes.SlotCardManagement),
		Data: request,
	})
	if err != nil {
		return fmt.Errorf("requesting witness: %w", err)
	}

	inner, err := bertlv.UnwrapValue(pivtypes.TagDynAuth, resp)
	if err != nil {
		return err
	}
	witness, err := bertlv.UnwrapValue(pivtypes.TagAuthWitness, inner)
	if err != nil {
		return err
	}

	decrypted, err := tdes.DecryptBlock(witness)
	if err != nil {
		return fmt.Errorf("%w: witness is not a single TDES block: %s", ErrBadResponse, err)
	}
	defer crypto.Zeroize(decrypted)

	challenge, err := crypto.Challenge(cl.rand)
	if err != nil {
		return err
	}

	m := bertlv.NewMap().
		Put(pivtypes.TagAuthWitness, decrypted).
		Put(pivtypes.TagAuthChallenge, challenge)
	request = bertlv.Encode(pivtypes.TagDynAuth, m.Pack())

	resp, err = t.SendAndReceive(iso7816.APDU{
		Ins:  pivtypes.InsAuthenticate,
		P1:   pivtypes.AlgTDES,
		P2:   byte(pivtypes.SlotCardManagement),
		Data: request,
	})
	if err != nil {
		return fmt.Errorf("sending challenge: %w", err)
	}

	inner, err = bertlv.UnwrapValue(pivtypes.TagDynAuth, resp)
	if err != nil {
		return err
	}
	encrypted, err := bertlv.UnwrapValue(pivtypes.TagAuthResponse, inner)
	if err != nil {
		return err
	}

	expected, err := tdes.EncryptBlock(challenge)
	if err != nil {
		return err
	}
	if !bytes.Equal(encrypted, expected) {
		return fmt.Errorf("%w: calculated response for challenge is incorrect", ErrBadResponse)
	}

	cl.logger.Debug("management key authenticated")
	return nil
}

// SetManagementKey replaces the card management key. The existing key must
// have been authenticated first. requireTouch makes every later use of the
// key demand a physical touch.
func (cl *Client) SetManagementKey(t iso7816.Transport, managementKey []byte, requireTouch bool) error {
	if len(managementKey) != crypto.ManagementKeyLen {
		return fmt.Errorf("%w: management key must be %d bytes", ErrInvalidArgument, crypto.ManagementKeyLen)
	}

	data := append([]byte{pivtypes.AlgTDES}, bertlv.Encode(int(pivtypes.SlotCardManagement), managementKey)...)
	defer crypto.Zeroize(data)

	p2 := byte(0xff)
	if requireTouch {
		p2 = 0xfe
	}

	_, err := t.SendAndReceive(iso7816.APDU{
		Ins:  pivtypes.InsSetManagementKey,
		P1:   0xff,
		P2:   p2,
		Data: data,
	})
	return err
}

// UsePrivateKey runs the GENERAL AUTHENTICATE exchange that backs signing,
// RSA decryption and ECDH. The message must already be in card form: padded
// to the modulus size for RSA, the raw digest for ECDSA, an uncompressed
// point for key agreement (exponentiation true).
func (cl *Client) UsePrivateKey(t iso7816.Transport, slot pivtypes.Slot, keyType pivtypes.KeyType, message []byte, exponentiation bool) ([]byte, error) {
	tag := pivtypes.TagAuthChallenge
	if exponentiation {
		tag = pivtypes.TagAuthExponent
	}
	m := bertlv.NewMap().
		Put(pivtypes.TagAuthResponse, nil).
		Put(tag, message)
	request := bertlv.Encode(pivtypes.TagDynAuth, m.Pack())

	resp, err := t.SendAndReceive(iso7816.APDU{
		Ins:  pivtypes.InsAuthenticate,
		P1:   byte(keyType),
		P2:   byte(slot),
		Data: request,
	})
	if err != nil {
		if code, ok := iso7816.StatusCode(err); ok && code == iso7816.SWIncorrectValues {
			return nil, fmt.Errorf("%w (make sure a %s key is present in slot %02X)", err, keyType, byte(slot))
		}
		return nil, err
	}

	inner, err := bertlv.UnwrapValue(pivtypes.TagDynAuth, resp)
	if err != nil {
		return nil, err
	}
	return bertlv.UnwrapValue(pivtypes.TagAuthResponse, inner)
}
