// Package subtle provides low-level cryptographic primitives for range-preserving encryption.
package subtle

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Arithmetic is the arbitrary-precision capability the Feistel network and
// the codec are written against. Values cross the interface as digit strings
// so alternative backends need not share a big-integer type.
type Arithmetic interface {
	// Cmp compares two base-10 digit strings and returns -1, 0 or +1.
	Cmp(a, b string) int

	// Xor returns a XOR b for two base-2 strings, left-padded with zeros to width.
	Xor(a, b string, width int) string

	// ToBinary converts digits in the given base to a base-2 string of exactly
	// width bits. It fails if the value needs more than width bits.
	ToBinary(digits string, base, width int) (string, error)

	// FromBinary converts a base-2 string to its natural (no leading zeros)
	// representation in the given base.
	FromBinary(bits string, base int) string

	// RandomRange returns a uniformly random base-10 value in [min, max].
	RandomRange(min, max string) (string, error)
}

type bigArithmetic struct{}

// BigArithmetic returns the math/big backed Arithmetic.
func BigArithmetic() Arithmetic {
	return bigArithmetic{}
}

func (bigArithmetic) parse(s string, base int) *big.Int {
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return new(big.Int)
	}
	return v
}

func (a bigArithmetic) Cmp(x, y string) int {
	return a.parse(x, 10).Cmp(a.parse(y, 10))
}

func (a bigArithmetic) Xor(x, y string, width int) string {
	v := new(big.Int).Xor(a.parse(x, 2), a.parse(y, 2))
	return padLeft(v.Text(2), width)
}

func (a bigArithmetic) ToBinary(digits string, base, width int) (string, error) {
	v, ok := new(big.Int).SetString(digits, base)
	if !ok || v.Sign() < 0 {
		return "", fmt.Errorf("%q is not a base %d number", digits, base)
	}
	if v.BitLen() > width {
		return "", fmt.Errorf("value needs %d bits, width is %d", v.BitLen(), width)
	}
	return padLeft(v.Text(2), width), nil
}

func (a bigArithmetic) FromBinary(bits string, base int) string {
	return a.parse(bits, 2).Text(base)
}

func (a bigArithmetic) RandomRange(min, max string) (string, error) {
	lo, hi := a.parse(min, 10), a.parse(max, 10)
	if hi.Cmp(lo) < 0 {
		return "", fmt.Errorf("empty range [%s, %s]", min, max)
	}
	span := new(big.Int).Sub(hi, lo)
	span.Add(span, big.NewInt(1))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to sample range: %w", err)
	}
	return n.Add(n, lo).Text(10), nil
}

// padLeft left-pads s with zeros to width characters. Longer strings are returned as is.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// PadLeft is padLeft for callers outside the package.
func PadLeft(s string, width int) string {
	return padLeft(s, width)
}

// rawToBits renders bytes as a big-endian string of '0' and '1' characters.
func rawToBits(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw) * 8)
	for _, b := range raw {
		for i := 7; i >= 0; i-- {
			if b&(1<<uint(i)) != 0 {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
	}
	return sb.String()
}

// lastBits returns the trailing n bits of raw's bit representation.
func lastBits(raw []byte, n int) string {
	bits := rawToBits(raw)
	if len(bits) < n {
		return padLeft(bits, n)
	}
	return bits[len(bits)-n:]
}
