package fpe

import (
	"fmt"
	"math/big"
	"regexp"
)

const (
	// DefaultMinValue and DefaultMaxValue bound the range a new Engine starts with.
	DefaultMinValue = "0"
	DefaultMaxValue = "99999999999999999999"
)

var (
	minValuePattern = regexp.MustCompile(`^(0|[1-9][0-9]*)$`)
	maxValuePattern = regexp.MustCompile(`^[1-9][0-9]*$`)
)

// Domain is the configured value range and the bit widths derived from it.
// A Domain is immutable.
type Domain struct {
	min, max string

	binSize   int
	sideSize  int
	decDigits int
	hexDigits int
}

// NewDomain validates [min, max] and sizes the Feistel network for it.
// blockBits is the cipher capacity the side size must fit into.
func NewDomain(min, max string, blockBits int) (*Domain, error) {
	if !minValuePattern.MatchString(min) {
		return nil, fmt.Errorf("%w: %w: min value %q must be 0 or digits without a leading zero",
			ErrConfiguration, ErrInvalidRange, min)
	}
	if !maxValuePattern.MatchString(max) {
		return nil, fmt.Errorf("%w: %w: max value %q must start with a nonzero digit and contain only digits",
			ErrConfiguration, ErrInvalidRange, max)
	}

	lo, _ := new(big.Int).SetString(min, 10)
	hi, _ := new(big.Int).SetString(max, 10)
	if hi.Cmp(lo) <= 0 {
		return nil, fmt.Errorf("%w: %w: max value %s must be greater than min value %s",
			ErrConfiguration, ErrInvalidRange, max, min)
	}

	// smallest even bit count whose span exceeds max
	binSize := 2
	span := big.NewInt(4)
	four := big.NewInt(4)
	for {
		binSize += 2
		span.Mul(span, four)
		if span.Cmp(hi) > 0 {
			break
		}
	}

	d := &Domain{
		min:       min,
		max:       max,
		binSize:   binSize,
		sideSize:  binSize / 2,
		decDigits: len(max),
		hexDigits: (binSize + 3) / 4,
	}

	if d.sideSize > blockBits {
		return nil, fmt.Errorf("%w: %w: side size (%d bits) must be less or equal to cipher capacity (%d bits)",
			ErrConfiguration, ErrSideSizeExceedsBlock, d.sideSize, blockBits)
	}

	return d, nil
}

// Min returns the inclusive lower bound in base 10.
func (d *Domain) Min() string { return d.min }

// Max returns the inclusive upper bound in base 10.
func (d *Domain) Max() string { return d.max }

// BinSize returns the Feistel block width in bits.
func (d *Domain) BinSize() int { return d.binSize }

// SideSize returns the width of one Feistel half in bits.
func (d *Domain) SideSize() int { return d.sideSize }

// DecDigits returns the padded width of base 10 output.
func (d *Domain) DecDigits() int { return d.decDigits }

// HexDigits returns the padded width of base 16 output.
func (d *Domain) HexDigits() int { return d.hexDigits }
