package subtle

import "fmt"

// RoundKeys holds one sideSize-bit key per Feistel round.
type RoundKeys []string

// Key returns the key for round i, counted from 1.
func (k RoundKeys) Key(i int) string {
	return k[i-1]
}

// Rounds returns the number of keys in the set.
func (k RoundKeys) Rounds() int {
	return len(k)
}

// DeriveRoundKeys chains the cipher over the base key: k0 = E(baseKey) and
// ki = E(k(i-1)). Round key i is the trailing sideSize bits of ki. The keys
// depend only on the base key, hashed password, iv and round count, never on
// the message, so encryption and decryption derive identical sets.
func DeriveRoundKeys(c *Cipher, baseKey, hashedPassword, iv []byte, rounds, sideSize int) (RoundKeys, error) {
	prev, err := c.Encrypt(baseKey, hashedPassword, iv)
	if err != nil {
		return nil, fmt.Errorf("failed to derive base round key: %w", err)
	}

	keys := make(RoundKeys, rounds)
	for i := 0; i < rounds; i++ {
		prev, err = c.Encrypt(prev, hashedPassword, iv)
		if err != nil {
			return nil, fmt.Errorf("failed to derive round key %d: %w", i+1, err)
		}
		keys[i] = lastBits(prev, sideSize)
	}
	return keys, nil
}
