package grom

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested node or edge does not exist.
	ErrNotFound = errors.New("grom: entity not found")

	// ErrNotSingular is returned when a singular relation query finds
	// zero or multiple connected nodes.
	ErrNotSingular = errors.New("grom: relation not singular")

	// ErrInvalidSchema is returned when convention inference cannot
	// classify an accessor name unambiguously.
	ErrInvalidSchema = errors.New("grom: invalid schema")

	// ErrMissingProperties is returned when a relation assignment omits
	// declared edge properties and no defaults policy fills them.
	ErrMissingProperties = errors.New("grom: missing relation properties")

	// ErrTxStarted is returned when attempting to start a new transaction
	// within an existing transaction.
	ErrTxStarted = errors.New("grom: cannot start a transaction within a transaction")
)

// NotFoundError represents an error when a node or edge is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the ID that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("grom: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("grom: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given label.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// NotSingularError represents an error when a strict singular query
// finds multiple connected nodes where at most one is allowed.
type NotSingularError struct {
	relation string
	count    int // Number of edges found (-1 if unknown)
}

// Error returns the error string.
func (e *NotSingularError) Error() string {
	if e.count >= 0 {
		return fmt.Sprintf("grom: relation %s not singular (got %d edges, expected 1)", e.relation, e.count)
	}
	return fmt.Sprintf("grom: relation %s not singular", e.relation)
}

// Is reports whether the target error matches NotSingularError.
// This allows errors.Is(notSingularErr, ErrNotSingular) to return true.
func (e *NotSingularError) Is(err error) bool {
	return err == ErrNotSingular
}

// Relation returns the relation name.
func (e *NotSingularError) Relation() string {
	return e.relation
}

// Count returns the number of edges, or -1 if unknown.
func (e *NotSingularError) Count() int {
	return e.count
}

// NewNotSingularError returns a new NotSingularError for the given relation.
func NewNotSingularError(relation string) *NotSingularError {
	return &NotSingularError{relation: relation, count: -1}
}

// NewNotSingularErrorWithCount returns a new NotSingularError with the edge count.
func NewNotSingularErrorWithCount(relation string, count int) *NotSingularError {
	return &NotSingularError{relation: relation, count: count}
}

// IsNotSingular returns true if the error is a NotSingularError.
func IsNotSingular(err error) bool {
	if err == nil {
		return false
	}
	var e *NotSingularError
	return errors.As(err, &e) || errors.Is(err, ErrNotSingular)
}

// InvalidSchemaError represents a failure to classify an accessor name:
// the naming conventions gave conflicting direction cues, or the target
// token matched neither a known singular nor plural label. Inference
// never guesses past this point; the error surfaces to the caller.
type InvalidSchemaError struct {
	Accessor string // Accessor name that failed to resolve
	Reason   string // Why inference gave up
}

// Error returns the error string.
func (e *InvalidSchemaError) Error() string {
	return fmt.Sprintf("grom: cannot resolve accessor %q: %s", e.Accessor, e.Reason)
}

// Is reports whether the target error matches InvalidSchemaError.
func (e *InvalidSchemaError) Is(err error) bool {
	return err == ErrInvalidSchema
}

// NewInvalidSchemaError returns a new InvalidSchemaError for the given accessor.
func NewInvalidSchemaError(accessor, reason string) *InvalidSchemaError {
	return &InvalidSchemaError{Accessor: accessor, Reason: reason}
}

// IsInvalidSchema returns true if the error is an InvalidSchemaError.
func IsInvalidSchema(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidSchemaError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidSchema)
}

// MissingPropertiesError represents a relation assignment that omitted
// edge properties declared on the relation, with no defaults policy
// willing to fill them.
type MissingPropertiesError struct {
	Relation string   // Relation name
	Keys     []string // Declared property keys that were not supplied
}

// Error returns the error string.
func (e *MissingPropertiesError) Error() string {
	return fmt.Sprintf("grom: relation %s assigned without declared properties: %s",
		e.Relation, strings.Join(e.Keys, ", "))
}

// Is reports whether the target error matches MissingPropertiesError.
func (e *MissingPropertiesError) Is(err error) bool {
	return err == ErrMissingProperties
}

// NewMissingPropertiesError returns a new MissingPropertiesError.
func NewMissingPropertiesError(relation string, keys []string) *MissingPropertiesError {
	return &MissingPropertiesError{Relation: relation, Keys: keys}
}

// IsMissingProperties returns true if the error is a MissingPropertiesError.
func IsMissingProperties(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingPropertiesError
	return errors.As(err, &e) || errors.Is(err, ErrMissingProperties)
}

// ConstraintError represents a store-level constraint violation.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("grom: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// ValidationError represents a validation error for property values.
type ValidationError struct {
	Name string // Property or entity name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("grom: validator failed for property %q: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError for the given property.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err error // Original error that triggered rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("grom: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// QueryError wraps a query error with additional context.
type QueryError struct {
	Label string // Entity label being queried
	Op    string // Operation (e.g., "query", "exists", "property")
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("grom: querying %s (%s): %v", e.Label, e.Op, e.Err)
	}
	return fmt.Sprintf("grom: querying %s: %v", e.Label, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(label, op string, err error) *QueryError {
	return &QueryError{Label: label, Op: op, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// MutationError wraps a mutation error with additional context.
type MutationError struct {
	Label string // Entity label being mutated
	Op    string // Operation (e.g., "assign", "clear", "create")
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("grom: %s %s: %v", e.Op, e.Label, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(label, op string, err error) *MutationError {
	return &MutationError{Label: label, Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}
