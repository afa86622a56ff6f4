package ingest

import "errors"

var (
	// ErrMissingDependency is returned by constructors when a required
	// component is nil.
	ErrMissingDependency = errors.New("ingest: missing dependency")
)
