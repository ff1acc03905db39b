package services

import "errors"

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrWriteRejected is returned when the store refuses a create, update or delete
	ErrWriteRejected = errors.New("write rejected")

	// ErrManipulationUnsupported is returned by relation operations of a data store built without an engine
	ErrManipulationUnsupported = errors.New("relationship manipulation is not supported")

	// ErrUnsupportedPagination is returned for cursor pagination requests
	ErrUnsupportedPagination = errors.New("cursor pagination is not supported")
)
