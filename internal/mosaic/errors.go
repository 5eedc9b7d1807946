package mosaic

import "errors"

// Failure categories. Callers discriminate them with errors.Is; every error
// returned by this package wraps exactly one of them.
var (
	// ErrInvalidImage reports undecodable, zero-area or unsupported input.
	ErrInvalidImage = errors.New("invalid image")
	// ErrInvalidSettings reports a width or height outside [MinCubes, MaxCubes].
	ErrInvalidSettings = errors.New("invalid settings")
	// ErrInvalidDocument reports a mosaic document that breaks the data
	// model's structural invariants.
	ErrInvalidDocument = errors.New("invalid mosaic document")
	// ErrInternalInvariant reports a broken invariant in freshly assembled
	// output. It indicates a programming defect.
	ErrInternalInvariant = errors.New("internal invariant violated")
)
