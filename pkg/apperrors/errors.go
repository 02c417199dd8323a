package apperrors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidRelation = errors.New("invalid association relation")
	ErrInvalidKind     = errors.New("invalid entity kind")
)
