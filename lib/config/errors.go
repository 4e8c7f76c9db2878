package config

import "github.com/pthm/talui/lib/model"

// Errors reported by this package. They are the model package sentinels so
// callers can check either.
var (
	ErrConfiguration   = model.ErrConfiguration
	ErrInvalidArgument = model.ErrInvalidArgument
)
