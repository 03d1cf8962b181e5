package subtle

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"sort"

	"github.com/dgryski/go-camellia"
	"golang.org/x/crypto/twofish"
)

var (
	// ErrUnsupportedCipher is returned for identifiers missing from the registry.
	ErrUnsupportedCipher = errors.New("unsupported cipher")

	// ErrInvalidIV is returned when an IV cipher gets an IV of the wrong length.
	ErrInvalidIV = errors.New("invalid initialization vector")
)

type mode int

const (
	modeCBC mode = iota
	modeECB
)

type blockFunc func(key []byte) (cipher.Block, error)

// Profile describes a registered cipher.
type Profile struct {
	ID string
	// UsesIV reports whether the cipher runs in a chained mode needing an IV.
	UsesIV bool
	// IVBytes is the required IV length; zero when UsesIV is false.
	IVBytes int
	// KeyBytes is the key length the cipher is keyed with.
	KeyBytes int
	// BlockBits is the upper bound for a Feistel side size under this cipher.
	BlockBits int

	mode     mode
	newBlock blockFunc
}

func newAES(key []byte) (cipher.Block, error) { return aes.NewCipher(key) }

func newCamellia(key []byte) (cipher.Block, error) { return camellia.New(key) }

func newTwofish(key []byte) (cipher.Block, error) { return twofish.NewCipher(key) }

var profiles = map[string]Profile{
	"aes-128-cbc":      {ID: "aes-128-cbc", UsesIV: true, IVBytes: aes.BlockSize, KeyBytes: 16, BlockBits: 128, mode: modeCBC, newBlock: newAES},
	"aes-192-cbc":      {ID: "aes-192-cbc", UsesIV: true, IVBytes: aes.BlockSize, KeyBytes: 24, BlockBits: 192, mode: modeCBC, newBlock: newAES},
	"aes-256-cbc":      {ID: "aes-256-cbc", UsesIV: true, IVBytes: aes.BlockSize, KeyBytes: 32, BlockBits: 256, mode: modeCBC, newBlock: newAES},
	"aes-128-ecb":      {ID: "aes-128-ecb", KeyBytes: 16, BlockBits: 128, mode: modeECB, newBlock: newAES},
	"aes-192-ecb":      {ID: "aes-192-ecb", KeyBytes: 24, BlockBits: 192, mode: modeECB, newBlock: newAES},
	"aes-256-ecb":      {ID: "aes-256-ecb", KeyBytes: 32, BlockBits: 256, mode: modeECB, newBlock: newAES},
	"camellia-128-cbc": {ID: "camellia-128-cbc", UsesIV: true, IVBytes: camellia.BlockSize, KeyBytes: 16, BlockBits: 128, mode: modeCBC, newBlock: newCamellia},
	"camellia-192-cbc": {ID: "camellia-192-cbc", UsesIV: true, IVBytes: camellia.BlockSize, KeyBytes: 24, BlockBits: 192, mode: modeCBC, newBlock: newCamellia},
	"camellia-256-cbc": {ID: "camellia-256-cbc", UsesIV: true, IVBytes: camellia.BlockSize, KeyBytes: 32, BlockBits: 256, mode: modeCBC, newBlock: newCamellia},
	"twofish-128-cbc":  {ID: "twofish-128-cbc", UsesIV: true, IVBytes: twofish.BlockSize, KeyBytes: 16, BlockBits: 128, mode: modeCBC, newBlock: newTwofish},
	"twofish-192-cbc":  {ID: "twofish-192-cbc", UsesIV: true, IVBytes: twofish.BlockSize, KeyBytes: 24, BlockBits: 192, mode: modeCBC, newBlock: newTwofish},
	"twofish-256-cbc":  {ID: "twofish-256-cbc", UsesIV: true, IVBytes: twofish.BlockSize, KeyBytes: 32, BlockBits: 256, mode: modeCBC, newBlock: newTwofish},
}

// Lookup returns the profile registered under id.
func Lookup(id string) (Profile, error) {
	p, ok := profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (must be one of %v)", ErrUnsupportedCipher, id, Supported())
	}
	return p, nil
}

// Supported returns the registered cipher identifiers in sorted order.
func Supported() []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsSupported reports whether id is registered.
func IsSupported(id string) bool {
	_, ok := profiles[id]
	return ok
}

// Cipher is the deterministic keyed primitive the key schedule and round
// function are built on. It is safe for concurrent use.
type Cipher struct {
	profile Profile
}

// NewCipher returns the Cipher registered under id.
func NewCipher(id string) (*Cipher, error) {
	p, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	return &Cipher{profile: p}, nil
}

// Profile returns the registry entry backing c.
func (c *Cipher) Profile() Profile {
	return c.profile
}

// Encrypt pads plaintext with PKCS#7 and encrypts it under key and iv.
// Keys of the wrong length are truncated or zero-extended to the profile's
// key size. The iv is ignored by IV-less ciphers.
func (c *Cipher) Encrypt(plaintext, key, iv []byte) ([]byte, error) {
	if c.profile.UsesIV && len(iv) != c.profile.IVBytes {
		return nil, fmt.Errorf("%w: %d bytes required for cipher %q, %d given",
			ErrInvalidIV, c.profile.IVBytes, c.profile.ID, len(iv))
	}

	block, err := c.profile.newBlock(normalizeKey(key, c.profile.KeyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s block: %w", c.profile.ID, err)
	}

	blockSize := block.BlockSize()
	padded := pkcs7Pad(plaintext, blockSize)
	out := make([]byte, len(padded))

	switch c.profile.mode {
	case modeCBC:
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	default:
		for i := 0; i < len(padded); i += blockSize {
			block.Encrypt(out[i:i+blockSize], padded[i:i+blockSize])
		}
	}
	return out, nil
}

func normalizeKey(key []byte, size int) []byte {
	k := make([]byte, size)
	copy(k, key)
	return k
}
