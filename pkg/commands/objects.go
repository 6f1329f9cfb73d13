package commands

import (
	"crypto/x509"
	"encoding/hex"
	"fmt"

	"github.com/go-scard/pivcard/pkg/bertlv"
	"github.com/go-scard/pivcard/pkg/iso7816"
	"github.com/go-scard/pivcard/pkg/pivtypes"
)

// GET DATA and PUT DATA address the whole data-object space.
const (
	objectP1 byte = 0x3f
	objectP2 byte = 0xff
)

// GetObject reads a data object.
func (cl *Client) GetObject(t iso7816.Transport, id pivtypes.ObjectID) ([]byte, error) {
	resp, err := t.SendAndReceive(iso7816.APDU{
		Ins:  pivtypes.InsGetData,
		P1:   objectP1,
		P2:   objectP2,
		Data: bertlv.Encode(pivtypes.TagObjectID, id.Bytes()),
	})
	if err != nil {
		return nil, err
	}
	cl.logger.Debug("read object", "id", fmt.Sprintf("%06X", int(id)), "hex", hex.EncodeToString(resp))
	return bertlv.UnwrapValue(pivtypes.TagObjectData, resp)
}

// PutObject writes a data object. A nil objectData deletes the object by
// storing it empty. Requires prior management-key authentication.
func (cl *Client) PutObject(t iso7816.Transport, id pivtypes.ObjectID, objectData []byte) error {
	m := bertlv.NewMap().
		Put(pivtypes.TagObjectID, id.Bytes()).
		Put(pivtypes.TagObjectData, objectData)

	_, err := t.SendAndReceive(iso7816.APDU{
		Ins:  pivtypes.InsPutData,
		P1:   objectP1,
		P2:   objectP2,
		Data: m.Pack(),
	})
	return err
}

// GetCertificate reads the X.509 certificate stored for slot. Compressed
// certificates are rejected; decompression is not supported.
func (cl *Client) GetCertificate(t iso7816.Transport, slot pivtypes.Slot) (*x509.Certificate, error) {
	objectData, err := cl.GetObject(t, slot.ObjectID())
	if err != nil {
		return nil, err
	}

	m, err := bertlv.ParseMap(objectData)
	if err != nil {
		return nil, err
	}
	if info, ok := m.Lookup(pivtypes.TagCertInfo).Get(); ok && len(info) > 0 && info[0] != 0 {
		return nil, fmt.Errorf("%w: compressed certificates are not supported", ErrBadResponse)
	}

	certBytes, ok := m.Lookup(pivtypes.TagCertificate).Get()
	if !ok {
		return nil, fmt.Errorf("%w: no certificate in object", ErrBadResponse)
	}
	cert, err := x509.ParseCertificate(certBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing certificate: %s", ErrBadResponse, err)
	}
	return cert, nil
}

// PutCertificate stores a certificate for slot. The trailing zero cert-info
// and presence-only LRC entries are part of the layout the card expects.
// Requires prior management-key authentication.
func (cl *Client) PutCertificate(t iso7816.Transport, slot pivtypes.Slot, cert *x509.Certificate) error {
	m := bertlv.NewMap().
		Put(pivtypes.TagCertificate, cert.Raw).
		Put(pivtypes.TagCertInfo, []byte{0x00}).
		Put(pivtypes.TagLRC, nil)
	return cl.PutObject(t, slot.ObjectID(), m.Pack())
}
