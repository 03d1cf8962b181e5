// Package fpe implements range-preserving Format-Preserving Encryption (FPE)
// over bounded integer domains.
//
// A value in [min, max], written in base 2, 10 or 16, encrypts to another
// value in [min, max] written the same way. The construction is a balanced
// Feistel network whose round function is built from an ordinary block cipher
// (AES or Twofish, see the subtle package). The network permutes every value
// of binSize bits, the smallest even width covering max. Outputs landing
// outside [min, max] are fed back through the network (cycle walking) until
// one lands inside. Because the network is a bijection this always
// terminates, and decryption walks the same cycle backwards.
//
// Round keys are derived from the engine's base key, a per-call password and
// a per-call nonce, so the same engine serves many independent key spaces.
//
// Example usage:
//
//	engine, err := fpe.New("aes-256-cbc", baseKey, 7)
//	if err != nil {
//		log.Fatal(err)
//	}
//	engine, err = engine.SetRange("0", "9999999999")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	nonce := make([]byte, 16) // must be unique per password
//	ciphertext, err := engine.Encrypt("2048", fpe.Decimal, false, password, nonce)
//	if err != nil {
//		log.Fatal(err)
//	}
//	plaintext, err := engine.Decrypt(ciphertext, fpe.Decimal, false, password, nonce)
//
// The package provides no integrity protection: any in-range value decrypts
// to some in-range value.
package fpe

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vdparikh/rangefpe/subtle"
)

const (
	// KeyMinLength is the minimum base key length in bytes.
	KeyMinLength = 16

	// MinRounds is the minimum Feistel round count. Round counts must be odd.
	MinRounds = 3

	// DefaultMaxCycleWalks caps cycle walking per call.
	DefaultMaxCycleWalks = 1_000_000
)

// Engine encrypts values of one domain with one cipher, base key and round count.
//
// Thread safety: an Engine is immutable and safe for concurrent use by
// multiple goroutines. SetRange returns a new Engine and leaves the receiver
// untouched, so in-flight calls always see a consistent domain.
type Engine struct {
	cipher   *subtle.Cipher
	baseKey  []byte
	rounds   int
	domain   *Domain
	arith    subtle.Arithmetic
	logger   *slog.Logger
	maxWalks int
}

// Option configures an Engine.
type Option func(*Engine)

// WithArithmetic replaces the math/big arithmetic backend.
func WithArithmetic(a subtle.Arithmetic) Option {
	return func(e *Engine) { e.arith = a }
}

// WithLogger sets the logger used for cycle walking diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMaxCycleWalks caps the number of Feistel passes per call. Zero removes
// the cap, which can loop for a very long time when [min, max] covers a tiny
// fraction of the 2^binSize block space.
func WithMaxCycleWalks(n int) Option {
	return func(e *Engine) { e.maxWalks = n }
}

// New creates an Engine for cipherID with the given base key and round count,
// configured for the default range [0, 99999999999999999999].
func New(cipherID string, baseKey []byte, rounds int, opts ...Option) (*Engine, error) {
	c, err := subtle.NewCipher(cipherID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if rounds < MinRounds || rounds%2 != 1 {
		return nil, fmt.Errorf("%w: number of rounds must be an odd integer greater or equal %d, got %d",
			ErrConfiguration, MinRounds, rounds)
	}

	if len(baseKey) < KeyMinLength {
		return nil, fmt.Errorf("%w: key must be at least %d bytes long, got %d",
			ErrConfiguration, KeyMinLength, len(baseKey))
	}

	domain, err := NewDomain(DefaultMinValue, DefaultMaxValue, c.Profile().BlockBits)
	if err != nil {
		return nil, err
	}

	key := make([]byte, len(baseKey))
	copy(key, baseKey)

	e := &Engine{
		cipher:   c,
		baseKey:  key,
		rounds:   rounds,
		domain:   domain,
		arith:    subtle.BigArithmetic(),
		logger:   slog.Default(),
		maxWalks: DefaultMaxCycleWalks,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.maxWalks < 0 {
		return nil, fmt.Errorf("%w: max cycle walks must not be negative, got %d", ErrConfiguration, e.maxWalks)
	}
	return e, nil
}

// SetRange returns a copy of e configured for [min, max]. Both bounds are
// base 10 digit strings. The receiver is not modified.
func (e *Engine) SetRange(min, max string) (*Engine, error) {
	domain, err := NewDomain(min, max, e.cipher.Profile().BlockBits)
	if err != nil {
		return nil, err
	}
	next := *e
	next.domain = domain
	return &next, nil
}

// Cipher returns the cipher identifier.
func (e *Engine) Cipher() string { return e.cipher.Profile().ID }

// Rounds returns the Feistel round count.
func (e *Engine) Rounds() int { return e.rounds }

// Domain returns the configured range.
func (e *Engine) Domain() *Domain { return e.domain }

// RandomValue returns a uniformly random base 10 value in [min, max].
func (e *Engine) RandomValue() (string, error) {
	return e.arith.RandomRange(e.domain.min, e.domain.max)
}

// Encrypt maps input, a value in [min, max] written in base, to another value
// of the domain written in the same base. With pad set the output is
// left-padded with zeros to the domain width for that base.
func (e *Engine) Encrypt(input string, base Base, pad bool, password, nonce []byte) (string, error) {
	c := codec{domain: e.domain, arith: e.arith}

	if err := ValidateFormat(input, base); err != nil {
		return "", err
	}
	bits, ok := c.inDomain(input, base)
	if !ok {
		return "", fmt.Errorf("%w: input value %q is out of domain range %s - %s",
			ErrOutOfDomain, input, e.domain.min, e.domain.max)
	}

	network, err := e.network(password, nonce)
	if err != nil {
		return "", err
	}

	out, err := e.walk(c, bits, "encrypt", network.Encrypt)
	if err != nil {
		return "", err
	}
	return c.fromBinary(out, base, pad), nil
}

// Decrypt inverts Encrypt. The input is not range checked: any value that
// fits in the domain's block width is accepted.
func (e *Engine) Decrypt(input string, base Base, pad bool, password, nonce []byte) (string, error) {
	c := codec{domain: e.domain, arith: e.arith}

	if err := ValidateFormat(input, base); err != nil {
		return "", err
	}
	bits, err := c.toBinary(input, base)
	if err != nil {
		return "", err
	}

	network, err := e.network(password, nonce)
	if err != nil {
		return "", err
	}

	out, err := e.walk(c, bits, "decrypt", network.Decrypt)
	if err != nil {
		return "", err
	}
	return c.fromBinary(out, base, pad), nil
}

// network validates the nonce and derives the round keys for one call. The
// keys are shared by every cycle walking pass of that call.
func (e *Engine) network(password, nonce []byte) (*subtle.Network, error) {
	profile := e.cipher.Profile()
	if profile.UsesIV && len(nonce) != profile.IVBytes {
		return nil, fmt.Errorf("%w: %d bytes required for cipher %q, %d given",
			ErrInvalidNonce, profile.IVBytes, profile.ID, len(nonce))
	}

	hashed := subtle.HashPassword(password)
	keys, err := subtle.DeriveRoundKeys(e.cipher, e.baseKey, hashed, nonce, e.rounds, e.domain.sideSize)
	if err != nil {
		return nil, mapCipherError(err)
	}
	return subtle.NewNetwork(e.cipher, e.arith, e.domain.sideSize, keys, hashed, nonce), nil
}

// walk applies pass until the result lies in [min, max].
func (e *Engine) walk(c codec, bits, op string, pass func(string) (string, error)) (string, error) {
	for walks := 1; e.maxWalks == 0 || walks <= e.maxWalks; walks++ {
		out, err := pass(bits)
		if err != nil {
			return "", mapCipherError(err)
		}
		if c.contains(out) {
			if walks > 1 {
				e.logger.Debug("cycle walk completed",
					slog.String("op", op),
					slog.String("cipher", e.Cipher()),
					slog.Int("walks", walks),
					slog.Int("bin_size", e.domain.binSize))
			}
			return out, nil
		}
		bits = out
	}

	e.logger.Warn("cycle walk exhausted",
		slog.String("op", op),
		slog.String("cipher", e.Cipher()),
		slog.Int("max_walks", e.maxWalks),
		slog.String("min", e.domain.min),
		slog.String("max", e.domain.max))
	return "", fmt.Errorf("%w: no value in %s - %s after %d passes",
		ErrDomainUnreachable, e.domain.min, e.domain.max, e.maxWalks)
}

func mapCipherError(err error) error {
	if errors.Is(err, subtle.ErrInvalidIV) {
		return fmt.Errorf("%w: %w", ErrInvalidNonce, err)
	}
	return err
}
