package tinkfpe

import (
	"sync"

	"github.com/google/tink/go/core/registry"
)

var registerMu sync.Mutex

// Register registers the KeyManager with Tink's global registry.
// It is safe to call multiple times and from multiple goroutines.
func Register() error {
	registerMu.Lock()
	defer registerMu.Unlock()

	// Tink has no "is registered" query; a successful lookup means it is.
	if _, err := registry.GetKeyManager(FeistelKeyTypeURL); err == nil {
		return nil
	}
	return registry.RegisterKeyManager(NewKeyManager())
}
