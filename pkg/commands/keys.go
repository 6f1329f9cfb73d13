package commands

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"math/big"

	"github.com/go-scard/pivcard/pkg/bertlv"
	pivcrypto "github.com/go-scard/pivcard/pkg/crypto"
	"github.com/go-scard/pivcard/pkg/iso7816"
	"github.com/go-scard/pivcard/pkg/pivtypes"
)

// Public-key data-object tags inside the GENERATE ASYMMETRIC response.
const (
	tagRSAModulus  = 0x81
	tagRSAExponent = 0x82
	tagECPoint     = 0x86
)

// RSA CRT component and EC scalar tags for IMPORT KEY.
const (
	tagImportPrimeP    = 0x01
	tagImportPrimeQ    = 0x02
	tagImportExponentP = 0x03
	tagImportExponentQ = 0x04
	tagImportCoeff     = 0x05
	tagImportECScalar  = 0x06
)

const tagGenParams = 0xac

// GenerateKey creates a new asymmetric key pair in slot and returns its
// public key. Version gating happens in the session before this is called.
func (cl *Client) GenerateKey(t iso7816.Transport, slot pivtypes.Slot, keyType pivtypes.KeyType, pinPolicy pivtypes.PINPolicy, touchPolicy pivtypes.TouchPolicy) (crypto.PublicKey, error) {
	m := bertlv.NewMap().Put(pivtypes.TagGenAlgorithm, []byte{byte(keyType)})
	if pinPolicy != pivtypes.PINPolicyDefault {
		m.Put(pivtypes.TagPINPolicy, []byte{byte(pinPolicy)})
	}
	if touchPolicy != pivtypes.TouchPolicyDefault {
		m.Put(pivtypes.TagTouchPolicy, []byte{byte(touchPolicy)})
	}

	resp, err := t.SendAndReceive(iso7816.APDU{
		Ins:  pivtypes.InsGenerateAsymmetric,
		P2:   byte(slot),
		Data: bertlv.Encode(tagGenParams, m.Pack()),
	})
	if err != nil {
		return nil, err
	}
	cl.logger.Debug("generated key", "slot", slot, "keyType", keyType)

	encoded, err := bertlv.UnwrapValue(pivtypes.TagGenResponse, resp)
	if err != nil {
		return nil, err
	}
	return ParsePublicKey(keyType, encoded)
}

// ParsePublicKey decodes the public-key data objects the card returns from
// key generation (also surfaced raw by slot metadata).
func ParsePublicKey(keyType pivtypes.KeyType, encoded []byte) (crypto.PublicKey, error) {
	m, err := bertlv.ParseMap(encoded)
	if err != nil {
		return nil, err
	}

	if keyType.Algorithm() == pivtypes.AlgorithmRSA {
		modulus, ok := m.Lookup(tagRSAModulus).Get()
		if !ok {
			return nil, fmt.Errorf("%w: no RSA modulus in response", ErrBadResponse)
		}
		exponent, ok := m.Lookup(tagRSAExponent).Get()
		if !ok {
			return nil, fmt.Errorf("%w: no RSA exponent in response", ErrBadResponse)
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(modulus),
			E: int(new(big.Int).SetBytes(exponent).Int64()),
		}, nil
	}

	point, ok := m.Lookup(tagECPoint).Get()
	if !ok {
		return nil, fmt.Errorf("%w: no EC point in response", ErrBadResponse)
	}
	return decodeECPublic(keyType, point)
}

// decodeECPublic rebuilds an ECDSA public key from the uncompressed point
// the card returns.
func decodeECPublic(keyType pivtypes.KeyType, point []byte) (*ecdsa.PublicKey, error) {
	var curve elliptic.Curve
	switch keyType {
	case pivtypes.ECCP256:
		curve = elliptic.P256()
	case pivtypes.ECCP384:
		curve = elliptic.P384()
	default:
		return nil, fmt.Errorf("%w: key type %s has no curve", ErrBadResponse, keyType)
	}

	size := keyType.BitLength() / 8
	if len(point) != 2*size+1 || point[0] != 0x04 {
		return nil, fmt.Errorf("%w: malformed EC point (%d bytes)", ErrBadResponse, len(point))
	}
	return &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(point[1 : size+1]),
		Y:     new(big.Int).SetBytes(point[size+1:]),
	}, nil
}

// ImportKey stores a private key in slot and reports the key type it
// derived from the key. Accepts *rsa.PrivateKey, *ecdsa.PrivateKey, or a
// PKCS#8-encoded RSA key as raw DER bytes. Requires prior management-key
// authentication.
func (cl *Client) ImportKey(t iso7816.Transport, slot pivtypes.Slot, key crypto.PrivateKey, pinPolicy pivtypes.PINPolicy, touchPolicy pivtypes.TouchPolicy) (pivtypes.KeyType, error) {
	if der, ok := key.([]byte); ok {
		parsed, err := ParsePKCS8RSAKey(der)
		if err != nil {
			return 0, err
		}
		key = parsed
	}

	keyType, err := pivtypes.KeyTypeFromKey(key)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
	}

	m := bertlv.NewMap()
	switch k := key.(type) {
	case *rsa.PrivateKey:
		if k.E != 65537 {
			return 0, fmt.Errorf("%w: unsupported RSA public exponent %d", ErrUnsupportedEncoding, k.E)
		}
		if len(k.Primes) != 2 {
			return 0, fmt.Errorf("%w: RSA key must have exactly two primes", ErrUnsupportedEncoding)
		}
		k.Precompute()

		// Each CRT component is half the modulus size.
		length := keyType.BitLength() / 8 / 2
		m.Put(tagImportPrimeP, bytesToLength(k.Primes[0], length)).
			Put(tagImportPrimeQ, bytesToLength(k.Primes[1], length)).
			Put(tagImportExponentP, bytesToLength(k.Precomputed.Dp, length)).
			Put(tagImportExponentQ, bytesToLength(k.Precomputed.Dq, length)).
			Put(tagImportCoeff, bytesToLength(k.Precomputed.Qinv, length))
	case *ecdsa.PrivateKey:
		m.Put(tagImportECScalar, bytesToLength(k.D, keyType.BitLength()/8))
	default:
		return 0, fmt.Errorf("%w: cannot import %T", ErrUnsupportedEncoding, key)
	}

	if pinPolicy != pivtypes.PINPolicyDefault {
		m.Put(pivtypes.TagPINPolicy, []byte{byte(pinPolicy)})
	}
	if touchPolicy != pivtypes.TouchPolicyDefault {
		m.Put(pivtypes.TagTouchPolicy, []byte{byte(touchPolicy)})
	}

	data := m.Pack()
	defer pivcrypto.Zeroize(data)

	if _, err := t.SendAndReceive(iso7816.APDU{
		Ins:  pivtypes.InsImportKey,
		P1:   byte(keyType),
		P2:   byte(slot),
		Data: data,
	}); err != nil {
		return 0, err
	}
	return keyType, nil
}

// Attest requests the attestation certificate for the key in slot, signed by
// the factory key in the attestation slot. Only keys generated on the card
// can be attested.
func (cl *Client) Attest(t iso7816.Transport, slot pivtypes.Slot) (*x509.Certificate, error) {
	resp, err := t.SendAndReceive(iso7816.APDU{
		Ins: pivtypes.InsAttest,
		P1:  byte(slot),
	})
	if err != nil {
		if code, ok := iso7816.StatusCode(err); ok && code == iso7816.SWIncorrectValues {
			return nil, fmt.Errorf("%w (make sure a key was generated, not imported, in slot %02X)", err, byte(slot))
		}
		return nil, err
	}

	cert, err := x509.ParseCertificate(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing attestation certificate: %s", ErrBadResponse, err)
	}
	return cert, nil
}

// bytesToLength left-pads with zeros, or truncates from the left, to the
// fixed component length the card expects.
func bytesToLength(v *big.Int, length int) []byte {
	b := v.Bytes()
	if len(b) > length {
		return b[len(b)-length:]
	}
	out := make([]byte, length)
	copy(out[length-len(b):], b)
	return out
}
