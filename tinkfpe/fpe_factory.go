// Package tinkfpe provides Tink integration for range-preserving encryption.
// This file contains the factory function for creating engines from Tink keyset handles.
package tinkfpe

import (
	"fmt"

	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/proto/tink_go_proto"
	fpe "github.com/vdparikh/rangefpe"
)

// New creates an engine from the primary key of a Tink keyset handle.
// The KeyManager must be registered (see Register).
//
// Example:
//
//	handle, err := keyset.NewHandle(tinkfpe.KeyTemplate())
//	if err != nil {
//	    return err
//	}
//	engine, err := tinkfpe.New(handle, "aes-256-cbc", 7)
//	if err != nil {
//	    return err
//	}
//	token, err := engine.Encrypt("2048", fpe.Decimal, false, password, nonce)
func New(handle *keyset.Handle, cipherID string, rounds int, opts ...fpe.Option) (*fpe.Engine, error) {
	key, err := PrimaryKey(handle)
	if err != nil {
		return nil, err
	}

	engine, err := fpe.New(cipherID, key, rounds, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return engine, nil
}

// PrimaryKey returns the raw base key of the handle's primary key.
func PrimaryKey(handle *keyset.Handle) ([]byte, error) {
	if handle == nil {
		return nil, fmt.Errorf("keyset handle cannot be nil")
	}

	// Resolving primitives validates every key through the registered KeyManager.
	primitives, err := handle.Primitives()
	if err != nil {
		return nil, fmt.Errorf("failed to get primitives from handle: %w", err)
	}

	// The primary entry carries the key ID, not the raw key bytes.
	primary := primitives.Primary
	if primary == nil {
		return nil, fmt.Errorf("no primary key found in keyset")
	}

	keyID := primary.KeyID
	if keyID == 0 {
		return nil, fmt.Errorf("invalid key ID in primary entry")
	}

	// Only works for keysets read through insecurecleartextkeyset.
	ks := insecurecleartextkeyset.KeysetMaterial(handle)
	for _, key := range ks.Key {
		if key.KeyId != keyID {
			continue
		}
		keyData := key.KeyData
		if keyData == nil {
			continue
		}

		switch keyData.GetKeyMaterialType() {
		case tink_go_proto.KeyData_REMOTE:
			// Key material lives in a KMS; there are no bytes to hand to the cipher.
			return nil, fmt.Errorf("remote (KMS) keys are not supported - use symmetric keys")
		case tink_go_proto.KeyData_SYMMETRIC:
			if keyData.GetTypeUrl() != FeistelKeyTypeURL {
				return nil, fmt.Errorf("key %d has type %q, want %q", keyID, keyData.GetTypeUrl(), FeistelKeyTypeURL)
			}
			// Copy so callers cannot mutate the keyset's key material.
			out := make([]byte, len(keyData.Value))
			copy(out, keyData.Value)
			return out, nil
		}
	}

	return nil, fmt.Errorf("key with ID %d not found or unsupported key type", keyID)
}
