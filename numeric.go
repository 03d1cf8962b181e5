package fpe

import (
	"fmt"

	"github.com/vdparikh/rangefpe/subtle"
)

// codec converts between external digit strings and the fixed-width bit
// strings the Feistel network operates on.
type codec struct {
	domain *Domain
	arith  subtle.Arithmetic
}

// toBinary converts input to a binSize-bit string. Values wider than the
// network are rejected rather than truncated.
func (c codec) toBinary(input string, base Base) (string, error) {
	bits, err := c.arith.ToBinary(input, int(base), c.domain.binSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return bits, nil
}

// fromBinary renders bits in base, left-padded to the domain width when pad is set.
func (c codec) fromBinary(bits string, base Base, pad bool) string {
	out := c.arith.FromBinary(bits, int(base))
	if pad {
		out = subtle.PadLeft(out, c.domain.padWidth(base))
	}
	return out
}

// contains reports whether the value of bits lies in [min, max].
func (c codec) contains(bits string) bool {
	v := c.arith.FromBinary(bits, 10)
	return c.arith.Cmp(v, c.domain.min) >= 0 && c.arith.Cmp(v, c.domain.max) <= 0
}

// inDomain reports whether input, written in base, lies in [min, max].
func (c codec) inDomain(input string, base Base) (string, bool) {
	bits, err := c.arith.ToBinary(input, int(base), c.domain.binSize)
	if err != nil {
		return "", false
	}
	return bits, c.contains(bits)
}
