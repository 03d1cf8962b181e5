// This file defines the FPE interface for Tink integration.
// For Tink integration, see the tinkfpe package.

package fpe

// FPE is a Tink-style primitive for range-preserving encryption.
// It is deterministic: the same input, password and nonce always produce the
// same output.
type FPE interface {
	// Encrypt maps a domain value to another domain value in the same base.
	Encrypt(input string, base Base, pad bool, password, nonce []byte) (string, error)

	// Decrypt is the inverse of Encrypt for the same password and nonce.
	Decrypt(input string, base Base, pad bool, password, nonce []byte) (string, error)
}

// Verify that Engine implements FPE
var _ FPE = (*Engine)(nil)
