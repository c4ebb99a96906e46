package models

import "errors"

// Error taxonomy shared by the gateway, the domain service and the HTTP
// edge. Repositories translate driver errors into these; handlers map them
// onto status codes.
var (
	// ErrNotFound: point lookup or delete on a required entity that is absent.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateKey: an entity with the same identity already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrReferenceViolation: the entity references a nonexistent user.
	ErrReferenceViolation = errors.New("reference violation")

	// ErrConstraintViolation: the operation is forbidden given current data
	// state (e.g. messaging a non-friend).
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidArgument: malformed or incomplete input.
	ErrInvalidArgument = errors.New("invalid argument")
)
