package sanitize

import (
	"errors"

	"github.com/law-makers/linkclean/pkg/models"
)

// Block list mutation errors
var (
	ErrEmptyParam     = errors.New("parameter cannot be empty")
	ErrDuplicateParam = errors.New("parameter is already in the list")
)

// User-facing messages for sanitize failures
const (
	MsgUnsupportedScheme = "Could not process this URL type. Displaying original."
	MsgMalformed         = "Invalid URL format. Please enter a valid web address."
	MsgRemoved           = "Tracking parameters removed successfully."
	MsgNothingRemoved    = "No tracking parameters found to remove."
)

// Message returns the user-facing text for a sanitize result
func Message(kind models.ErrorKind, modified bool) string {
	switch kind {
	case models.ErrorKindUnsupportedScheme:
		return MsgUnsupportedScheme
	case models.ErrorKindMalformed:
		return MsgMalformed
	}
	if modified {
		return MsgRemoved
	}
	return MsgNothingRemoved
}
