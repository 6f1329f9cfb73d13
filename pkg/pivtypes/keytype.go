package pivtypes

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"

	"github.com/samber/lo"
)

// Algorithm is the asymmetric algorithm family of a KeyType.
type Algorithm int

const (
	AlgorithmRSA Algorithm = iota + 1
	AlgorithmEC
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmRSA:
		return "RSA"
	case AlgorithmEC:
		return "EC"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// KeyType identifies an asymmetric key algorithm by its PIV wire value
// (NIST SP 800-78-4 Table 6-2).
type KeyType byte

const (
	RSA1024 KeyType = 0x06
	RSA2048 KeyType = 0x07
	ECCP256 KeyType = 0x11
	ECCP384 KeyType = 0x14
)

type keyParams struct {
	algorithm Algorithm
	bitLength int
	name      string
}

var keyTypes = map[KeyType]keyParams{
	RSA1024: {AlgorithmRSA, 1024, "RSA1024"},
	RSA2048: {AlgorithmRSA, 2048, "RSA2048"},
	ECCP256: {AlgorithmEC, 256, "ECCP256"},
	ECCP384: {AlgorithmEC, 384, "ECCP384"},
}

// Algorithm returns the algorithm family.
func (kt KeyType) Algorithm() Algorithm {
	return keyTypes[kt].algorithm
}

// BitLength returns the key size in bits.
func (kt KeyType) BitLength() int {
	return keyTypes[kt].bitLength
}

func (kt KeyType) String() string {
	if p, ok := keyTypes[kt]; ok {
		return p.name
	}
	return fmt.Sprintf("KeyType(%02X)", byte(kt))
}

// KeyTypeFromValue maps a wire value back to a KeyType.
func KeyTypeFromValue(value byte) (KeyType, error) {
	kt, ok := lo.FindKeyBy(keyTypes, func(kt KeyType, _ keyParams) bool {
		return byte(kt) == value
	})
	if !ok {
		return 0, fmt.Errorf("pivtypes: unknown key type value 0x%02X", value)
	}
	return kt, nil
}

// KeyTypeFromKey determines the KeyType of an RSA or ECDSA key, public or
// private.
func KeyTypeFromKey(key crypto.PublicKey) (KeyType, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return keyTypeFromRSABits(k.N.BitLen())
	case *rsa.PublicKey:
		return keyTypeFromRSABits(k.N.BitLen())
	case *ecdsa.PrivateKey:
		return keyTypeFromCurve(k.Curve)
	case *ecdsa.PublicKey:
		return keyTypeFromCurve(k.Curve)
	default:
		return 0, fmt.Errorf("pivtypes: unsupported key type %T", key)
	}
}

func keyTypeFromRSABits(bits int) (KeyType, error) {
	switch bits {
	case 1024:
		return RSA1024, nil
	case 2048:
		return RSA2048, nil
	default:
		return 0, fmt.Errorf("pivtypes: unsupported RSA key size %d", bits)
	}
}

func keyTypeFromCurve(curve elliptic.Curve) (KeyType, error) {
	switch curve {
	case elliptic.P256():
		return ECCP256, nil
	case elliptic.P384():
		return ECCP384, nil
	default:
		return 0, fmt.Errorf("pivtypes: unsupported curve %s", curve.Params().Name)
	}
}
