// Package session is the top of the PIV engine: it owns one open connection
// to the PIV application, the negotiated firmware version, and the local
// retry-count estimate, and exposes the public operation surface.
//
// A Session performs no internal locking. A smart-card channel permits one
// outstanding command, so callers needing concurrency must serialize access
// to a Session or open one per connection.
package session

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-scard/pivcard/pkg/commands"
	"github.com/go-scard/pivcard/pkg/iso7816"
	"github.com/go-scard/pivcard/pkg/options"
	"github.com/go-scard/pivcard/pkg/pivtypes"
)

// defaultPINAttempts is the factory retry count, used to seed the local
// estimate before the card tells us otherwise.
const defaultPINAttempts = 3

type Session struct {
	transport iso7816.Transport
	client    *commands.Client
	logger    *slog.Logger
	version   pivtypes.Version

	// Best-effort local view of the PIN retry counter. Pre-5.3 firmware
	// stops reporting the true count once the PIN has been verified in a
	// session, so this is a heuristic, never a security gate.
	currentPINAttempts int
	maxPINAttempts     int
}

// New selects the PIV application on transport and negotiates the firmware
// version.
func New(transport iso7816.Transport, opts ...options.Option) (*Session, error) {
	oo := options.NewOptions(opts...)

	if err := transport.Select(iso7816.AIDPIV); err != nil {
		return nil, fmt.Errorf("session: selecting PIV application: %w", err)
	}

	client := commands.NewClient(opts...)
	version, err := client.GetVersion(transport)
	if err != nil {
		return nil, fmt.Errorf("session: reading firmware version: %w", err)
	}

	oo.Logger.Debug("PIV session established", "version", version)

	return &Session{
		transport:          transport,
		client:             client,
		logger:             oo.Logger,
		version:            version,
		currentPINAttempts: defaultPINAttempts,
		maxPINAttempts:     defaultPINAttempts,
	}, nil
}

// Version returns the negotiated firmware version.
func (s *Session) Version() pivtypes.Version {
	return s.version
}

// Serial returns the device serial number. Firmware 5.0+; older devices
// expose the serial outside the PIV application.
func (s *Session) Serial() (uint32, error) {
	if s.version.LessThan(5, 0, 0) {
		return 0, newErrorMessage(ErrNotSupported, "serial number requires version 5.0.0 or later")
	}
	return s.client.GetSerial(s.transport)
}

// Authenticate performs the management-key mutual authentication required
// by administrative operations (key generation and import, certificate and
// object writes, retry configuration).
func (s *Session) Authenticate(managementKey []byte) error {
	return s.client.AuthenticateManagementKey(s.transport, managementKey)
}

// SetManagementKey replaces the management key; authenticate with the old
// key first. requireTouch demands a physical touch on every later use and
// needs firmware 4.0+.
func (s *Session) SetManagementKey(managementKey []byte, requireTouch bool) error {
	if requireTouch && s.version.LessThan(4, 0, 0) {
		return newErrorMessage(ErrNotSupported, "touch-protected management key requires version 4.0.0 or later")
	}
	return s.client.SetManagementKey(s.transport, managementKey, requireTouch)
}

// Sign computes a signature with the private key in slot. The message must
// already be prepared for the card: hashed and padded to the modulus size
// for RSA, the bare digest for ECDSA.
func (s *Session) Sign(slot pivtypes.Slot, keyType pivtypes.KeyType, message []byte) ([]byte, error) {
	return s.client.UsePrivateKey(s.transport, slot, keyType, message, false)
}

// Decrypt runs an RSA decryption with the private key in slot and returns
// the still-padded plaintext; the key size is inferred from the ciphertext
// length. Stripping the PKCS#1 v1.5 or OAEP padding is the caller's step.
func (s *Session) Decrypt(slot pivtypes.Slot, ciphertext []byte) ([]byte, error) {
	var keyType pivtypes.KeyType
	switch len(ciphertext) {
	case 1024 / 8:
		keyType = pivtypes.RSA1024
	case 2048 / 8:
		keyType = pivtypes.RSA2048
	default:
		return nil, newErrorMessage(ErrInvalidArgument, fmt.Sprintf("invalid ciphertext length %d", len(ciphertext)))
	}
	return s.client.UsePrivateKey(s.transport, slot, keyType, ciphertext, false)
}

// SharedSecret performs an ECDH key agreement between the private key in
// slot and peer, returning the x-coordinate of the result point. Callers
// should run the result through a KDF.
func (s *Session) SharedSecret(slot pivtypes.Slot, peer *ecdsa.PublicKey) ([]byte, error) {
	keyType, err := pivtypes.KeyTypeFromKey(peer)
	if err != nil {
		return nil, newErrorMessage(ErrInvalidArgument, err.Error())
	}

	size := keyType.BitLength() / 8
	point := make([]byte, 0, 1+2*size)
	point = append(point, 0x04)
	point = append(point, peer.X.FillBytes(make([]byte, size))...)
	point = append(point, peer.Y.FillBytes(make([]byte, size))...)

	return s.client.UsePrivateKey(s.transport, slot, keyType, point, true)
}

// VerifyPIN submits the PIN. Failures carrying a retry count come back as
// *commands.InvalidPINError; 0 retries means the PIN is blocked until
// unblocked with the PUK.
func (s *Session) VerifyPIN(pin string) error {
	if err := s.client.VerifyPIN(s.transport, s.version, pivtypes.P2PIN, pin); err != nil {
		s.notePINFailure(err)
		return err
	}
	s.currentPINAttempts = s.maxPINAttempts
	return nil
}

// ChangePIN replaces the PIN, verifying the old one in the same command.
func (s *Session) ChangePIN(oldPIN, newPIN string) error {
	err := s.client.ChangeReference(s.transport, s.version, pivtypes.InsChangeReference, pivtypes.P2PIN, oldPIN, newPIN)
	s.notePINFailure(err)
	return err
}

// ChangePUK replaces the PUK, verifying the old one in the same command.
func (s *Session) ChangePUK(oldPUK, newPUK string) error {
	return s.client.ChangeReference(s.transport, s.version, pivtypes.InsChangeReference, pivtypes.P2PUK, oldPUK, newPUK)
}

// UnblockPIN resets a blocked PIN to a new value using the PUK.
func (s *Session) UnblockPIN(puk, newPIN string) error {
	return s.client.ChangeReference(s.transport, s.version, pivtypes.InsResetRetry, pivtypes.P2PIN, puk, newPIN)
}

// SetPINAttempts configures the total retry counts for PIN and PUK and
// resets both remaining counters. Requires management-key authentication
// and PIN verification in this session.
func (s *Session) SetPINAttempts(pinAttempts, pukAttempts int) error {
	if err := s.client.SetPINRetries(s.transport, pinAttempts, pukAttempts); err != nil {
		return err
	}
	s.maxPINAttempts = pinAttempts
	s.currentPINAttempts = pinAttempts
	return nil
}

// PINAttempts reports the number of PIN attempts remaining. On firmware
// 5.3+ this is ground truth from metadata and costs no retry. Older
// firmware is probed with a data-less VERIFY; once the PIN has been
// verified in this session the card stops reporting the true count and the
// local estimate is returned, which can be stale if the retry limit was
// changed outside this session.
func (s *Session) PINAttempts() (int, error) {
	if s.version.AtLeast(5, 3, 0) {
		md, err := s.PinMetadata()
		if err != nil {
			return 0, err
		}
		return md.AttemptsRemaining, nil
	}

	retries, verified, err := s.client.PINRetries(s.transport, s.version)
	if err != nil {
		return 0, err
	}
	if verified {
		return s.currentPINAttempts, nil
	}
	s.currentPINAttempts = retries
	return retries, nil
}

// PinMetadata reads PIN state from the card. Firmware 5.3+.
func (s *Session) PinMetadata() (*pivtypes.PinMetadata, error) {
	if err := s.requireMetadata(); err != nil {
		return nil, err
	}
	return s.client.PinMetadata(s.transport, pivtypes.P2PIN)
}

// PukMetadata reads PUK state from the card. Firmware 5.3+.
func (s *Session) PukMetadata() (*pivtypes.PinMetadata, error) {
	if err := s.requireMetadata(); err != nil {
		return nil, err
	}
	return s.client.PinMetadata(s.transport, pivtypes.P2PUK)
}

// ManagementKeyMetadata reads management-key state. Firmware 5.3+.
func (s *Session) ManagementKeyMetadata() (*pivtypes.ManagementKeyMetadata, error) {
	if err := s.requireMetadata(); err != nil {
		return nil, err
	}
	return s.client.ManagementKeyMetadata(s.transport)
}

// SlotMetadata reads metadata about the key in slot. Firmware 5.3+. Use
// ManagementKeyMetadata for the card management key.
func (s *Session) SlotMetadata(slot pivtypes.Slot) (*pivtypes.SlotMetadata, error) {
	if err := s.requireMetadata(); err != nil {
		return nil, err
	}
	if slot == pivtypes.SlotCardManagement {
		return nil, newErrorMessage(ErrInvalidArgument, "use ManagementKeyMetadata for the card management key")
	}
	return s.client.SlotMetadata(s.transport, slot)
}

// GenerateKey creates an asymmetric key pair in slot and returns the public
// key. Capability violations for the connected firmware fail before any
// exchange. Requires management-key authentication.
func (s *Session) GenerateKey(slot pivtypes.Slot, keyType pivtypes.KeyType, pinPolicy pivtypes.PINPolicy, touchPolicy pivtypes.TouchPolicy) (crypto.PublicKey, error) {
	isRSA := keyType.Algorithm() == pivtypes.AlgorithmRSA

	// A firmware range shipped with RSA generation disabled.
	if isRSA && s.version.AtLeast(4, 2, 0) && s.version.LessThan(4, 3, 5) {
		return nil, newErrorMessage(ErrNotSupported, "RSA key generation is not available on this firmware")
	}
	if s.version.LessThan(4, 0, 0) {
		if keyType == pivtypes.ECCP384 {
			return nil, newErrorMessage(ErrNotSupported, "P-384 requires version 4.0.0 or later")
		}
		if pinPolicy != pivtypes.PINPolicyDefault || touchPolicy != pivtypes.TouchPolicyDefault {
			return nil, newErrorMessage(ErrNotSupported, "PIN/touch policy requires version 4.0.0 or later")
		}
	}
	if touchPolicy == pivtypes.TouchPolicyCached && s.version.LessThan(4, 3, 0) {
		return nil, newErrorMessage(ErrNotSupported, "cached touch policy requires version 4.3.0 or later")
	}

	return s.client.GenerateKey(s.transport, slot, keyType, pinPolicy, touchPolicy)
}

// PutKey imports a private key into slot; see commands.ImportKey for the
// accepted key forms. Requires management-key authentication.
func (s *Session) PutKey(slot pivtypes.Slot, key crypto.PrivateKey, pinPolicy pivtypes.PINPolicy, touchPolicy pivtypes.TouchPolicy) (pivtypes.KeyType, error) {
	return s.client.ImportKey(s.transport, slot, key, pinPolicy, touchPolicy)
}

// AttestKey returns a certificate proving the key in slot was generated on
// the card. Firmware 4.3+.
func (s *Session) AttestKey(slot pivtypes.Slot) (*x509.Certificate, error) {
	if s.version.LessThan(4, 3, 0) {
		return nil, newErrorMessage(ErrNotSupported, "attestation requires version 4.3.0 or later")
	}
	return s.client.Attest(s.transport, slot)
}

// Certificate reads the certificate stored for slot.
func (s *Session) Certificate(slot pivtypes.Slot) (*x509.Certificate, error) {
	return s.client.GetCertificate(s.transport, slot)
}

// SetCertificate stores a certificate for slot. Requires management-key
// authentication.
func (s *Session) SetCertificate(slot pivtypes.Slot, cert *x509.Certificate) error {
	return s.client.PutCertificate(s.transport, slot, cert)
}

// DeleteCertificate removes the certificate stored for slot. Requires
// management-key authentication.
func (s *Session) DeleteCertificate(slot pivtypes.Slot) error {
	return s.client.PutObject(s.transport, slot.ObjectID(), nil)
}

// Object reads a raw data object.
func (s *Session) Object(id pivtypes.ObjectID) ([]byte, error) {
	return s.client.GetObject(s.transport, id)
}

// SetObject writes a raw data object; nil data deletes it. Requires
// management-key authentication.
func (s *Session) SetObject(id pivtypes.ObjectID, data []byte) error {
	return s.client.PutObject(s.transport, id, data)
}

// SetCHUID writes a fresh Cardholder Unique Identifier with a random GUID.
// Requires management-key authentication.
func (s *Session) SetCHUID() error {
	chuid, err := pivtypes.GenerateCHUID()
	if err != nil {
		return err
	}
	return s.client.PutObject(s.transport, pivtypes.ObjectCHUID, chuid)
}

// Reset restores the PIV application to its factory state, wiping keys,
// certificates and credentials. The card requires both PIN and PUK to be
// blocked first, so Reset deliberately burns their remaining attempts.
func (s *Session) Reset() error {
	if err := s.blockPIN(); err != nil {
		return err
	}
	if err := s.blockPUK(); err != nil {
		return err
	}
	if err := s.client.ResetApplet(s.transport); err != nil {
		return err
	}
	s.currentPINAttempts = defaultPINAttempts
	s.maxPINAttempts = defaultPINAttempts
	return nil
}

func (s *Session) blockPIN() error {
	counter, err := s.PINAttempts()
	if err != nil {
		return err
	}
	for counter > 0 {
		err := s.client.VerifyPIN(s.transport, s.version, pivtypes.P2PIN, "")
		if err == nil {
			// An empty padded PIN should never verify.
			return newErrorMessage(ErrInvalidArgument, "card accepted an empty PIN during reset")
		}
		var pinErr *commands.InvalidPINError
		if !errors.As(err, &pinErr) {
			return err
		}
		counter = pinErr.Retries
	}
	s.logger.Debug("PIN is blocked")
	return nil
}

func (s *Session) blockPUK() error {
	// A failed unblock reports the remaining PUK tries and consumes one.
	counter := 1
	for counter > 0 {
		err := s.client.ChangeReference(s.transport, s.version, pivtypes.InsResetRetry, pivtypes.P2PIN, "", "")
		if err == nil {
			return newErrorMessage(ErrInvalidArgument, "card accepted an empty PUK during reset")
		}
		var pinErr *commands.InvalidPINError
		if !errors.As(err, &pinErr) {
			return err
		}
		counter = pinErr.Retries
	}
	s.logger.Debug("PUK is blocked")
	return nil
}

func (s *Session) requireMetadata() error {
	if s.version.LessThan(5, 3, 0) {
		return newErrorMessage(ErrNotSupported, "metadata requires version 5.3.0 or later")
	}
	return nil
}

// notePINFailure keeps the local retry estimate in step with errors that
// carry a count.
func (s *Session) notePINFailure(err error) {
	var pinErr *commands.InvalidPINError
	if errors.As(err, &pinErr) {
		s.currentPINAttempts = pinErr.Retries
	}
}
