package manipulation

import (
	"errors"
	"fmt"
)

// Error kinds raised before any mutation takes place.
// Use errors.Is against these to classify a failure.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrUnknownRelation   = errors.New("unknown relation")
	ErrReplaceNotAllowed = errors.New("relationship replace not allowed")
)

// InvalidArgumentError reports a malformed parent, record list or candidate record
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func invalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}

// UnknownRelationError reports a relation name that does not resolve on the parent type
type UnknownRelationError struct {
	Type     string
	Relation string
}

func (e *UnknownRelationError) Error() string {
	return fmt.Sprintf("unknown relation %q on type %q", e.Relation, e.Type)
}

func (e *UnknownRelationError) Is(target error) bool {
	return target == ErrUnknownRelation
}

// ReplaceNotAllowedError reports a replacing attach on a relation configured against it
type ReplaceNotAllowedError struct {
	Type     string
	Relation string
}

func (e *ReplaceNotAllowedError) Error() string {
	return fmt.Sprintf("replacing relation %q on type %q is not allowed", e.Relation, e.Type)
}

func (e *ReplaceNotAllowedError) Is(target error) bool {
	return target == ErrReplaceNotAllowed
}
