package subtle

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// HashPassword stretches an arbitrary password into cipher key material: the
// lowercase hex encoding of its SHA3-512 digest.
func HashPassword(password []byte) []byte {
	sum := sha3.Sum512(password)
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out
}
