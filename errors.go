package lxo

import "errors"

var (
	// ErrMalformedContainer is returned when the stream does not start
	// with an IFF FORM header.
	ErrMalformedContainer = errors.New("lxo: not a FORM container")
	// ErrTruncated is returned when a read needs more bytes than the
	// stream or the declared chunk budget still holds.
	ErrTruncated = errors.New("lxo: truncated stream")
	// ErrUnknownDatatype is returned for a channel value tag outside the
	// integer/float/string set.
	ErrUnknownDatatype = errors.New("lxo: unknown channel datatype")
	// ErrInvalidBlobSize is returned when a blob read is requested with a
	// negative size, which means an enclosing chunk over-consumed.
	ErrInvalidBlobSize = errors.New("lxo: invalid blob size")
	// ErrUnresolvedIndex is returned when an index points outside one of
	// the file lookup tables.
	ErrUnresolvedIndex = errors.New("lxo: index outside lookup table")
	// ErrMissingContext is returned when a chunk that needs a current
	// layer or item arrives before one was established.
	ErrMissingContext = errors.New("lxo: missing decode context")
	// ErrSizeMismatch is returned when a decoder consumed a different
	// number of bytes than the chunk header declared.
	ErrSizeMismatch = errors.New("lxo: chunk size mismatch")
)
