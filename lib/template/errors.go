package template

import (
	"errors"
	"fmt"

	"github.com/pthm/talui/lib/model"
)

// ErrInvalidArgument is the model package sentinel, reported for unknown
// templates and recursive compilation.
var ErrInvalidArgument = model.ErrInvalidArgument

// ErrNoMold is returned when no mold applies to an element and no default
// mold is configured. It also matches ErrInvalidArgument.
var ErrNoMold = fmt.Errorf("template: no render template for element: %w", ErrInvalidArgument)

// IsNoMold reports whether err is or wraps ErrNoMold.
func IsNoMold(err error) bool {
	return errors.Is(err, ErrNoMold)
}
