/**
 * @description
 * This file defines the validation error taxonomy shared by the validator and
 * the HTTP layer. Every rejected field maps to a FieldError carrying the
 * offending field name, the rule kind and a user-facing message; the API layer
 * turns it into a structured 400 response without further translation.
 */
package domain

// ErrorKind classifies why a field was rejected.
type ErrorKind string

const (
	// ErrMissingField means a required field was absent or empty.
	ErrMissingField ErrorKind = "missing_field"
	// ErrInvalidFormat means a field was present but malformed: an
	// unparsable date, a disallowed character, an out-of-range length.
	ErrInvalidFormat ErrorKind = "invalid_format"
	// ErrInvalidEnumValue means a field was not in its fixed enumeration.
	ErrInvalidEnumValue ErrorKind = "invalid_enum_value"
	// ErrOutOfRange means a value violated an ordering rule: amount <= 0,
	// a date in the past, a final date before the start date.
	ErrOutOfRange ErrorKind = "out_of_range"
)

// FieldError is the rejection produced by the validator for expected invalid
// input. It implements error so it can travel through the service layer.
type FieldError struct {
	Field   string    `json:"field"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Message
}

// NewFieldError builds a FieldError for the given field, kind and message.
func NewFieldError(field string, kind ErrorKind, message string) *FieldError {
	return &FieldError{Field: field, Kind: kind, Message: message}
}
