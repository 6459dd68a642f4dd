package asset

import (
	"errors"

	"github.com/jchantrell/uasset/internal/stream"
)

// Sentinel errors for the codec. Callers can match them with errors.Is;
// wrapped forms carry positional context.
var (
	// ErrTruncatedInput is returned when the input ends mid-read.
	ErrTruncatedInput = stream.ErrTruncatedInput

	// ErrMalformedHeader is returned for an unrecognized format version
	// or an invalid byte order tag.
	ErrMalformedHeader = errors.New("asset: malformed header")

	// ErrMalformedTable is returned when descriptor ranges overlap, run
	// outside the data region, or repeat an id.
	ErrMalformedTable = errors.New("asset: malformed object table")

	// ErrObjectNotFound is returned by lookups for an absent id.
	ErrObjectNotFound = errors.New("asset: object not found")

	// ErrDuplicateID is returned when adding an object whose id is
	// already present.
	ErrDuplicateID = errors.New("asset: duplicate object id")
)
