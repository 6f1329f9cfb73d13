package commands

import (
	"crypto/rsa"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// ParsePKCS8RSAKey parses a DER PKCS#8 RSA private key: an outer SEQUENCE
// holding a version, an algorithm identifier and an OCTET STRING, whose
// payload is the RSAPrivateKey SEQUENCE of nine integers (version 0, then
// n, e, d, p, q, dP, dQ, qInv in fixed order).
func ParsePKCS8RSAKey(der []byte) (*rsa.PrivateKey, error) {
	input := cryptobyte.String(der)

	var outer cryptobyte.String
	if !input.ReadASN1(&outer, asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: not a PKCS#8 structure", ErrUnsupportedEncoding)
	}

	var pkcs8Version int
	var algorithm, keyOctets cryptobyte.String
	if !outer.ReadASN1Integer(&pkcs8Version) ||
		!outer.ReadASN1(&algorithm, asn1.SEQUENCE) ||
		!outer.ReadASN1(&keyOctets, asn1.OCTET_STRING) {
		return nil, fmt.Errorf("%w: malformed PKCS#8 structure", ErrUnsupportedEncoding)
	}

	var key cryptobyte.String
	if !keyOctets.ReadASN1(&key, asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: malformed RSA key structure", ErrUnsupportedEncoding)
	}

	var keyVersion int
	if !key.ReadASN1Integer(&keyVersion) {
		return nil, fmt.Errorf("%w: malformed RSA key version", ErrUnsupportedEncoding)
	}
	if keyVersion != 0 {
		return nil, fmt.Errorf("%w: unsupported RSA key version %d", ErrUnsupportedEncoding, keyVersion)
	}

	values := make([]*big.Int, 8)
	for i := range values {
		values[i] = new(big.Int)
		if !key.ReadASN1Integer(values[i]) {
			return nil, fmt.Errorf("%w: truncated RSA key component", ErrUnsupportedEncoding)
		}
	}

	priv := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{
			N: values[0],
			E: int(values[1].Int64()),
		},
		D:      values[2],
		Primes: []*big.Int{values[3], values[4]},
	}
	priv.Precompute()
	return priv, nil
}
