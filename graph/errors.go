package graph

import "errors"

//*******************************************
// error kinds
//*******************************************

var (
	// input references unknown ids or is otherwise unusable
	ErrInputMalformed = errors.New("input malformed")
	// zero-length or otherwise degenerate edge geometry
	ErrGeometryDegenerate = errors.New("degenerate geometry")
	// internal bug, aborts the run
	ErrInvariantViolation = errors.New("invariant violation")
)
