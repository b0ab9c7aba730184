package securedata

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ReEncrypt decodes an envelope under the old password and spec and encodes
// the plaintext again under the new ones. Nothing is returned unless the
// old envelope decodes.
func ReEncrypt(envelope, oldPassword []byte, oldSpec Spec, newPassword []byte, newSpec Spec) ([]byte, error) {
	plaintext, err := Decode(envelope, oldPassword, oldSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return Encode(plaintext, newPassword, newSpec)
}

// VerifyEnvelope reports whether envelope authenticates and decrypts under
// password and spec, without returning the plaintext.
func VerifyEnvelope(envelope, password []byte, spec Spec) error {
	_, err := Decode(envelope, password, spec)
	return err
}

// Rekey changes the password and spec used by later calls to Bytes. An
// empty password turns encryption off.
func (d *Document) Rekey(password []byte, spec Spec) error {
	codec, err := NewCodec(spec)
	if err != nil {
		return err
	}

	var pw []byte
	if len(password) > 0 {
		pw = make([]byte, len(password))
		copy(pw, password)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.password = pw
	d.codec = codec
	return nil
}

// Spec returns the envelope spec used by Bytes
func (d *Document) Spec() Spec {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.codec.Spec()
}

// RotationOptions contains options for rotating a store's password
type RotationOptions struct {
	// NewPassword protects the store after rotation; empty stores plain JSON
	NewPassword []byte

	// NewSpec replaces the envelope spec (default: keep the current one)
	NewSpec *Spec

	// DryRun checks the rotation can proceed without changing anything
	DryRun bool
}

// Rotate re-encrypts the store file under a new password. It refuses to run
// when the current file could not be read, since the rewrite would replace
// it with an empty document.
func (s *Store) Rotate(opts RotationOptions) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.doc.Status() == LoadStatusFallback {
		return fmt.Errorf("%w: store %s was not readable with the current password", ErrAuthFailed, s.path)
	}

	spec := s.doc.Spec()
	if opts.NewSpec != nil {
		spec = *opts.NewSpec
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("invalid spec: %w", err)
	}

	if opts.DryRun {
		s.logger.WithField("path", s.path).Info("rotation dry run passed")
		return nil
	}

	data, err := s.doc.RawBytes()
	if err != nil {
		return err
	}
	if len(opts.NewPassword) > 0 {
		if data, err = Encode(data, opts.NewPassword, spec); err != nil {
			return err
		}
	}

	// The document keeps its old key if the write fails.
	if err := s.writeFile(data); err != nil {
		return err
	}
	if err := s.doc.Rekey(opts.NewPassword, spec); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"path":      s.path,
		"encrypted": len(opts.NewPassword) > 0,
		"spec":      spec.String(),
	}).Info("store password rotated")
	return nil
}
