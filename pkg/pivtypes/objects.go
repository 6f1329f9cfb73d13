package pivtypes

// ObjectID identifies a PIV data object (NIST SP 800-73-4 Appendix A).
type ObjectID int

const (
	ObjectCertCardAuth       ObjectID = 0x5fc101
	ObjectCHUID              ObjectID = 0x5fc102
	ObjectFingerprints       ObjectID = 0x5fc103
	ObjectCertAuthentication ObjectID = 0x5fc105
	ObjectSecurity           ObjectID = 0x5fc106
	ObjectCapability         ObjectID = 0x5fc107
	ObjectFacial             ObjectID = 0x5fc108
	ObjectCertSignature      ObjectID = 0x5fc10a
	ObjectCertKeyManagement  ObjectID = 0x5fc10b
	ObjectKeyHistory         ObjectID = 0x5fc10c
	ObjectCertRetired1       ObjectID = 0x5fc10d
	ObjectIris               ObjectID = 0x5fc121
	ObjectDiscovery          ObjectID = 0x7e
	ObjectCertAttestation    ObjectID = 0x5fff01
)

// Bytes returns the identifier in the form sent on the wire: three
// big-endian bytes, except the single-byte discovery object.
func (id ObjectID) Bytes() []byte {
	if id <= 0xff {
		return []byte{byte(id)}
	}
	return []byte{byte(id >> 16), byte(id >> 8), byte(id)}
}
