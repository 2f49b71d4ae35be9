package match

import "errors"

var (
	// ErrConfigLocked is returned when configuration changes are attempted on a
	// running, unfinished match.
	ErrConfigLocked = errors.New("match: configuration locked while match is running")

	// ErrInvalidState is returned when an operation is not valid for the
	// current lifecycle phase.
	ErrInvalidState = errors.New("match: invalid state")

	// ErrInvalidPoints is returned when points are not a positive integer.
	ErrInvalidPoints = errors.New("match: invalid points")

	// ErrInvalidSide is returned for a side other than HOME or VISITORS.
	ErrInvalidSide = errors.New("match: invalid side")

	// ErrNotFound is returned when a referenced hand does not exist.
	ErrNotFound = errors.New("match: hand not found")
)

// ErrMalformedState is returned by Unmarshal when a payload does not describe
// a consistent match.
var ErrMalformedState = errors.New("match: malformed state")
