package authn

import "errors"

var (
	// ErrKeyTooShort indicates the signing key is shorter than 32 bytes.
	ErrKeyTooShort = errors.New("signing key must be at least 32 bytes")

	// ErrNoSubject indicates the principal has no subject to issue a token for.
	ErrNoSubject = errors.New("principal has no subject")

	// ErrExpiredToken indicates the token signature is valid but the token
	// is past its expiry.
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidToken indicates the token failed parsing or validation.
	ErrInvalidToken = errors.New("invalid token")
)
