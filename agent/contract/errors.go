package contract

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")
)
