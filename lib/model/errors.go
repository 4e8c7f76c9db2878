package model

import "errors"

// Sentinel errors for model operations.
var (
	ErrUnsupportedAttribute = errors.New("model: unsupported attribute")
	ErrInvalidArgument      = errors.New("model: invalid argument")
	ErrConfiguration        = errors.New("model: invalid configuration")
)

// IsUnsupportedAttribute checks if err reports a name not declared by any layer.
func IsUnsupportedAttribute(err error) bool {
	return errors.Is(err, ErrUnsupportedAttribute)
}

// IsInvalidArgument checks if err reports a violated attribute invariant.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsConfiguration checks if err reports a malformed configuration.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
