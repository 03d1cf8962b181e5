// Package tinkfpe provides Tink integration for range-preserving encryption.
// This file contains the KeyManager that registers Feistel base keys with Tink's registry.
package tinkfpe

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/google/tink/go/core/registry"
	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/proto/tink_go_proto"
	fpe "github.com/vdparikh/rangefpe"
	"google.golang.org/protobuf/proto"
)

const (
	// FeistelKeyTypeURL is the type URL for Feistel base keys in Tink's registry.
	FeistelKeyTypeURL = "type.googleapis.com/vdparikh.rangefpe.FeistelKey"

	// DefaultCipher and DefaultRounds configure engines built by KeyManager.Primitive.
	DefaultCipher = "aes-256-cbc"
	DefaultRounds = 7
)

// KeyManager implements registry.KeyManager for Feistel base keys.
// A base key is raw key material of 16, 24 or 32 bytes; the block cipher key
// is derived per call from the caller's password.
type KeyManager struct {
	typeURL string
}

// NewKeyManager creates a new Feistel key manager.
func NewKeyManager() *KeyManager {
	return &KeyManager{
		typeURL: FeistelKeyTypeURL,
	}
}

// Primitive creates an *fpe.Engine from the given raw base key using
// DefaultCipher and DefaultRounds. Use New for other settings.
func (km *KeyManager) Primitive(serializedKey []byte) (interface{}, error) {
	if err := validateKeySize(len(serializedKey)); err != nil {
		return nil, err
	}

	// Tink only hands over the key bytes, so cipher and rounds use the defaults.
	engine, err := fpe.New(DefaultCipher, serializedKey, DefaultRounds)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return engine, nil
}

// DoesSupport returns true if this KeyManager supports the given key type URL.
func (km *KeyManager) DoesSupport(typeURL string) bool {
	return typeURL == km.typeURL
}

// TypeURL returns the type URL of the keys managed by this KeyManager.
func (km *KeyManager) TypeURL() string {
	return km.typeURL
}

// NewKey is not supported: Feistel keys have no dedicated proto message.
// Tink calls NewKeyData when generating keysets.
func (km *KeyManager) NewKey(serializedKeyTemplate []byte) (proto.Message, error) {
	return nil, fmt.Errorf("NewKey not supported for %s - use NewKeyData instead", km.typeURL)
}

// NewKeyData creates a new KeyData from the given key template. The template
// value holds the key size as a single byte.
func (km *KeyManager) NewKeyData(serializedKeyTemplate []byte) (*tink_go_proto.KeyData, error) {
	// An empty template value means the default 32-byte key.
	keySize := 32
	if len(serializedKeyTemplate) > 0 {
		keySize = int(serializedKeyTemplate[0])
	}
	if err := validateKeySize(keySize); err != nil {
		return nil, fmt.Errorf("invalid key template: %w", err)
	}

	// Generate cryptographically secure random key material
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}

	return &tink_go_proto.KeyData{
		TypeUrl:         km.typeURL,
		Value:           key,
		KeyMaterialType: tink_go_proto.KeyData_SYMMETRIC,
	}, nil
}

// Verify that KeyManager implements registry.KeyManager
var _ registry.KeyManager = (*KeyManager)(nil)

func validateKeySize(n int) error {
	if n != 16 && n != 24 && n != 32 {
		return fmt.Errorf("invalid key size: %d bytes (must be 16, 24, or 32)", n)
	}
	return nil
}

// KeyTemplate creates a key template for 32-byte base keys.
//
//	handle, err := keyset.NewHandle(tinkfpe.KeyTemplate())
func KeyTemplate() *tink_go_proto.KeyTemplate {
	return KeyTemplateSize(32)
}

// KeyTemplateSize creates a key template for base keys of size bytes (16, 24 or 32).
func KeyTemplateSize(size int) *tink_go_proto.KeyTemplate {
	return &tink_go_proto.KeyTemplate{
		TypeUrl:          FeistelKeyTypeURL,
		Value:            []byte{byte(size)},
		OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
	}
}

// NewKeysetHandleFromKey creates a keyset handle from a raw base key, e.g.
// one held in an HSM or an external secret store.
//
// Note: This creates an unencrypted keyset. In production, consider encrypting
// the keyset before storing it using keyset.Write() with an AEAD.
func NewKeysetHandleFromKey(key []byte) (*keyset.Handle, error) {
	if err := validateKeySize(len(key)); err != nil {
		return nil, err
	}

	// Tink key IDs are random uint32 values; 0 is reserved as "no key".
	keyIDBytes := make([]byte, 4)
	if _, err := rand.Read(keyIDBytes); err != nil {
		return nil, fmt.Errorf("failed to generate key ID: %w", err)
	}
	keyID := binary.BigEndian.Uint32(keyIDBytes)
	if keyID == 0 {
		keyID = 1
	}

	keysetKey := &tink_go_proto.Keyset_Key{
		KeyData: &tink_go_proto.KeyData{
			TypeUrl:         FeistelKeyTypeURL,
			Value:           key,
			KeyMaterialType: tink_go_proto.KeyData_SYMMETRIC,
		},
		KeyId:            keyID,
		Status:           tink_go_proto.KeyStatusType_ENABLED,
		OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
	}

	// A single-key keyset whose only key is also the primary.
	ks := &tink_go_proto.Keyset{
		PrimaryKeyId: keyID,
		Key:          []*tink_go_proto.Keyset_Key{keysetKey},
	}

	// Read through the cleartext path so the handle exposes KeysetMaterial.
	buf := &keyset.MemReaderWriter{Keyset: ks}
	return insecurecleartextkeyset.Read(buf)
}
