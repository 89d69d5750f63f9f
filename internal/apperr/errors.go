package apperr

import "errors"

var (
	// ErrMalformedModel indicates the raw design data is internally
	// inconsistent (dangling pin or net references). It fails a single
	// build attempt without disturbing any previously cached graph.
	ErrMalformedModel = errors.New("malformed model")

	// ErrComponentNotFound indicates a component reference that does not
	// exist in the queried graph.
	ErrComponentNotFound = errors.New("component not found")

	// ErrPathNotFound indicates a highlight path id with no current
	// layer assignment.
	ErrPathNotFound = errors.New("path not found")

	// ErrNoFreeLayer indicates the highlight layer pool is exhausted.
	ErrNoFreeLayer = errors.New("no free layer")

	// ErrAlreadyAssigned indicates a highlight path id that already
	// occupies a layer.
	ErrAlreadyAssigned = errors.New("path already assigned")

	// ErrNotFound is the generic missing-resource error (designs, files).
	ErrNotFound = errors.New("not found")
)
