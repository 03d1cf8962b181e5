package main

import (
	"fmt"
	"os"

	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
)

// storeKeyset saves a keyset handle to filename as JSON.
// WARNING: the keyset is written unencrypted. In production, use
// handle.Write() with an AEAD or keep base keys in a KMS.
func storeKeyset(handle *keyset.Handle, filename string) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create keyset file: %w", err)
	}
	defer file.Close()

	if err := insecurecleartextkeyset.Write(handle, keyset.NewJSONWriter(file)); err != nil {
		return fmt.Errorf("failed to write keyset: %w", err)
	}
	return nil
}

// loadKeyset loads an unencrypted JSON keyset written by storeKeyset.
func loadKeyset(filename string) (*keyset.Handle, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyset (run keygen first): %w", err)
	}
	defer file.Close()

	handle, err := insecurecleartextkeyset.Read(keyset.NewJSONReader(file))
	if err != nil {
		return nil, fmt.Errorf("failed to read keyset %s: %w", filename, err)
	}
	return handle, nil
}
