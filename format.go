package fpe

import (
	"fmt"
	"regexp"
	"sort"
)

// Base is the radix of the external representation of a value.
type Base int

const (
	Binary      Base = 2
	Decimal     Base = 10
	Hexadecimal Base = 16
)

// basePatterns holds the accepted character class per base. Hex is lowercase only.
var basePatterns = map[Base]*regexp.Regexp{
	Binary:      regexp.MustCompile(`^[0-1]+$`),
	Decimal:     regexp.MustCompile(`^[0-9]+$`),
	Hexadecimal: regexp.MustCompile(`^[a-f0-9]+$`),
}

// SupportedBases returns the accepted bases in ascending order.
func SupportedBases() []Base {
	bases := make([]Base, 0, len(basePatterns))
	for b := range basePatterns {
		bases = append(bases, b)
	}
	sort.Slice(bases, func(i, j int) bool { return bases[i] < bases[j] })
	return bases
}

// ValidateFormat checks that input is a non-empty digit string in base.
func ValidateFormat(input string, base Base) error {
	pattern, ok := basePatterns[base]
	if !ok {
		return fmt.Errorf("%w: base must be one of %v, got %d", ErrInvalidFormat, SupportedBases(), base)
	}
	if !pattern.MatchString(input) {
		return fmt.Errorf("%w: input %q does not match pattern %q", ErrInvalidFormat, input, pattern.String())
	}
	return nil
}

// padWidth returns the zero-padded output width for base under d.
func (d *Domain) padWidth(base Base) int {
	switch base {
	case Binary:
		return d.binSize
	case Decimal:
		return d.decDigits
	default:
		return d.hexDigits
	}
}
