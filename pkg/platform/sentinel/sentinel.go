package sentinel

import "errors"

// Stores return these, optionally wrapped, and services translate them into
// domain errors. Validation failures belong in pkg/domain-errors instead.
//
//   - ErrNotFound: the entity does not exist in the store
//   - ErrConflict: a uniqueness rule would be broken by the write
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
