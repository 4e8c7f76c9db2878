package talui

import (
	"errors"

	"github.com/pthm/talui/lib/encoding"
	"github.com/pthm/talui/lib/model"
	"github.com/pthm/talui/lib/template"
)

// Sentinel errors for dispatch.
var (
	ErrUnknownAction = errors.New("talui: unknown action")
	ErrUnknownWindow = errors.New("talui: unknown window")
)

// Errors of the underlying packages, re-exported for callers that only
// import talui.
var (
	ErrConfiguration        = model.ErrConfiguration
	ErrInvalidArgument      = model.ErrInvalidArgument
	ErrUnsupportedAttribute = model.ErrUnsupportedAttribute
	ErrNoMold               = template.ErrNoMold
	ErrDecryptFailed        = encoding.ErrDecryptFailed
	ErrSignatureInvalid     = encoding.ErrSignatureInvalid
	ErrInvalidFormat        = encoding.ErrInvalidFormat
)

// IsNotFound checks if err reports an unknown window or action.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownWindow) || errors.Is(err, ErrUnknownAction)
}

// IsDecryptionError checks if err is a decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}

// IsConfiguration checks if err reports a malformed configuration.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
