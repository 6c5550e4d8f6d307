package denomgraph

import "errors"

var (
	// ErrNoStates is returned when the source FST has zero states.
	ErrNoStates = errors.New("denomgraph: fst has no states")
	// ErrBadPdfCount is returned when numPdfs <= 0.
	ErrBadPdfCount = errors.New("denomgraph: numPdfs must be > 0")
	// ErrPdfOutOfRange is returned when an arc references a pdf-id >= numPdfs.
	ErrPdfOutOfRange = errors.New("denomgraph: arc pdf-id out of range")
	// ErrStationaryNotConverged is returned when power iteration fails to
	// reach the convergence tolerance within the iteration budget.
	ErrStationaryNotConverged = errors.New("denomgraph: stationary distribution did not converge")
	// ErrStationaryCollapsed is returned when the iterate's mass collapses
	// to (numerically) zero before convergence, which happens when all of
	// the mass drains into states with no out-arcs (e.g. a pure DAG with
	// absorbing sinks and no cycle).
	ErrStationaryCollapsed = errors.New("denomgraph: stationary distribution collapsed to zero")
)
