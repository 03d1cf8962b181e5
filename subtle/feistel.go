package subtle

import (
	"errors"
	"fmt"
)

// ErrBlockSize is returned when the Feistel input is not exactly two sides wide.
var ErrBlockSize = errors.New("invalid feistel block size")

// Network is a balanced Feistel network over bit strings of 2*sideSize bits.
// Its round function is built from a Cipher, keyed with the hashed password.
//
// Thread safety: a Network holds no mutable state and is safe for concurrent use.
type Network struct {
	cipher   *Cipher
	arith    Arithmetic
	sideSize int
	keys     RoundKeys
	key      []byte
	iv       []byte
}

// NewNetwork returns a Network for one password/iv pair.
func NewNetwork(c *Cipher, arith Arithmetic, sideSize int, keys RoundKeys, hashedPassword, iv []byte) *Network {
	return &Network{
		cipher:   c,
		arith:    arith,
		sideSize: sideSize,
		keys:     keys,
		key:      hashedPassword,
		iv:       iv,
	}
}

// Encrypt runs rounds 1..n. Each round applies F to the right half:
//
//	L' = R
//	R' = L xor F(R, k_i)
func (n *Network) Encrypt(bits string) (string, error) {
	left, right, err := n.split(bits)
	if err != nil {
		return "", err
	}

	for i := 1; i <= n.keys.Rounds(); i++ {
		f, err := n.round(right, n.keys.Key(i))
		if err != nil {
			return "", fmt.Errorf("round %d: %w", i, err)
		}
		left, right = right, n.arith.Xor(left, f, n.sideSize)
	}

	return left + right, nil
}

// Decrypt runs rounds n..1 with the same keys, applying F to the left half:
//
//	R' = L
//	L' = R xor F(L, k_i)
func (n *Network) Decrypt(bits string) (string, error) {
	left, right, err := n.split(bits)
	if err != nil {
		return "", err
	}

	for i := n.keys.Rounds(); i >= 1; i-- {
		f, err := n.round(left, n.keys.Key(i))
		if err != nil {
			return "", fmt.Errorf("round %d: %w", i, err)
		}
		left, right = n.arith.Xor(right, f, n.sideSize), left
	}

	return left + right, nil
}

// round is F(input, key): the trailing sideSize bits of E(input || key), where
// the concatenation is of the two bit strings as text.
func (n *Network) round(input, key string) (string, error) {
	out, err := n.cipher.Encrypt([]byte(input+key), n.key, n.iv)
	if err != nil {
		return "", err
	}
	return lastBits(out, n.sideSize), nil
}

func (n *Network) split(bits string) (string, string, error) {
	if len(bits) != 2*n.sideSize {
		return "", "", fmt.Errorf("%w: got %d bits, need %d", ErrBlockSize, len(bits), 2*n.sideSize)
	}
	return bits[:n.sideSize], bits[n.sideSize:], nil
}
