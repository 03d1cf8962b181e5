package fpe

import "errors"

var (
	// ErrConfiguration is returned when an engine or range cannot be configured.
	// It is permanent for the given arguments and must not be retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidRange is returned for malformed range bounds or max <= min.
	// Errors wrapping it also match ErrConfiguration.
	ErrInvalidRange = errors.New("invalid range")

	// ErrSideSizeExceedsBlock is returned when a range needs a Feistel side
	// wider than the cipher's capacity. Errors wrapping it also match ErrConfiguration.
	ErrSideSizeExceedsBlock = errors.New("side size exceeds cipher block capacity")

	// ErrInvalidFormat is returned when input does not match its base.
	ErrInvalidFormat = errors.New("invalid input format")

	// ErrOutOfDomain is returned by Encrypt when the input lies outside [min, max].
	ErrOutOfDomain = errors.New("input out of domain")

	// ErrInvalidNonce is returned when the nonce length does not match the cipher.
	ErrInvalidNonce = errors.New("invalid nonce")

	// ErrDomainUnreachable is returned when cycle walking exceeds its iteration cap.
	ErrDomainUnreachable = errors.New("domain unreachable")
)
