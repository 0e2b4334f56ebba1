package model

import "errors"

var (
	// ErrUnresolvedReference is returned when an upstream or downstream id names no fitting.
	ErrUnresolvedReference = errors.New("ductsize: unresolved reference")

	// ErrMalformedReference is returned when a connection cannot form the tree:
	// a tee with a missing or duplicated outlet, an unparsable reference, a cycle.
	ErrMalformedReference = errors.New("ductsize: malformed reference")

	// ErrFlowPropagation is returned when some fitting still has no flow
	// after relaxation settles or hits its pass bound.
	ErrFlowPropagation = errors.New("ductsize: flow propagation incomplete")

	// ErrConvergence is returned when a root find or the balancing loop exhausts its bound.
	ErrConvergence = errors.New("ductsize: no convergence")

	// ErrInvalidNetwork is returned for bad input values or network shape.
	ErrInvalidNetwork = errors.New("ductsize: invalid network")
)
