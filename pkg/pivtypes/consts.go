// Package pivtypes holds the wire constants and value tables of the PIV
// command set (NIST SP 800-73): instructions, request/response tags, key
// references, algorithm identifiers and data-object identifiers.
package pivtypes

// Instruction bytes.
const (
	InsVerify             byte = 0x20
	InsChangeReference    byte = 0x24
	InsResetRetry         byte = 0x2c
	InsGenerateAsymmetric byte = 0x47
	InsAuthenticate       byte = 0x87
	InsGetData            byte = 0xcb
	InsPutData            byte = 0xdb
	InsGetMetadata        byte = 0xf7
	InsGetSerial          byte = 0xf8
	InsAttest             byte = 0xf9
	InsSetPINRetries      byte = 0xfa
	InsReset              byte = 0xfb
	InsGetVersion         byte = 0xfd
	InsImportKey          byte = 0xfe
	InsSetManagementKey   byte = 0xff
)

// Request and response tags.
const (
	TagDynAuth       = 0x7c
	TagAuthWitness   = 0x80
	TagAuthChallenge = 0x81
	TagAuthResponse  = 0x82
	TagAuthExponent  = 0x85

	TagGenAlgorithm = 0x80
	TagPINPolicy    = 0xaa
	TagTouchPolicy  = 0xab
	TagGenResponse  = 0x7f49

	TagObjectID   = 0x5c
	TagObjectData = 0x53

	TagCertificate = 0x70
	TagCertInfo    = 0x71
	TagLRC         = 0xfe
)

// Metadata response tags (GET METADATA, firmware 5.3+).
const (
	TagMetadataAlgorithm = 0x01
	TagMetadataPolicy    = 0x02
	TagMetadataOrigin    = 0x03
	TagMetadataPublicKey = 0x04
	TagMetadataIsDefault = 0x05
	TagMetadataRetries   = 0x06
)

// P2 selectors for the PIN and PUK reference data.
const (
	P2PIN byte = 0x80
	P2PUK byte = 0x81
)

// AlgTDES is the management-key algorithm identifier (Triple-DES).
const AlgTDES byte = 0x03

// Key origin bytes reported by slot metadata.
const (
	OriginGenerated byte = 1
	OriginImported  byte = 2
)

// Defaults as shipped from factory.
var (
	// DefaultPIN is the factory PIN.
	DefaultPIN = "123456"
	// DefaultPUK is the factory PUK.
	DefaultPUK = "12345678"
	// DefaultManagementKey is the factory Triple-DES management key.
	DefaultManagementKey = [24]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	}
)
