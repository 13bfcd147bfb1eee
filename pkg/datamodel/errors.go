package datamodel

import (
	"errors"
	"fmt"

	"github.com/backkem/dmprovider/pkg/codec"
	"github.com/backkem/dmprovider/pkg/im/message"
)

// Errors returned by the data-model provider and its collaborators.
var (
	ErrUnsupportedEndpoint  = errors.New("datamodel: unsupported endpoint")
	ErrUnsupportedCluster   = errors.New("datamodel: unsupported cluster")
	ErrUnsupportedAttribute = errors.New("datamodel: unsupported attribute")
	ErrUnsupportedCommand   = errors.New("datamodel: unsupported command")

	// ErrUnsupportedAccess is an access control denial on a concrete path.
	ErrUnsupportedAccess = errors.New("datamodel: unsupported access")

	// ErrUnsupportedWrite is returned for read-only and global attributes.
	ErrUnsupportedWrite = errors.New("datamodel: unsupported write")

	// ErrUnsupportedRead is returned for write-only attributes and for
	// struct or list attributes that no access interface serves.
	ErrUnsupportedRead = errors.New("datamodel: unsupported read")

	ErrNeedsTimedInteraction = errors.New("datamodel: needs timed interaction")
	ErrDataVersionMismatch   = errors.New("datamodel: data version mismatch")

	// ErrBufferTooSmall reports that a list did not fit the encode budget.
	// Everything encoded before the overflow is complete and valid.
	ErrBufferTooSmall = errors.New("datamodel: buffer too small")

	// ErrBusy and ErrFailure are storage outcomes, passed through verbatim.
	ErrBusy    = errors.New("datamodel: busy")
	ErrFailure = errors.New("datamodel: failure")
)

// statusError carries an explicit IM status.
type statusError struct {
	status message.Status
}

func (e *statusError) Error() string {
	return fmt.Sprintf("datamodel: status %s", e.status)
}

// StatusError returns an error that ErrorToStatus maps to s. Access
// interfaces and command handlers use it for statuses without a sentinel.
func StatusError(s message.Status) error {
	if s == message.StatusSuccess {
		return nil
	}
	return &statusError{status: s}
}

// ErrorToStatus maps an error to an IM status code.
func ErrorToStatus(err error) message.Status {
	if err == nil {
		return message.StatusSuccess
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}

	switch {
	case errors.Is(err, ErrUnsupportedEndpoint):
		return message.StatusUnsupportedEndpoint
	case errors.Is(err, ErrUnsupportedCluster):
		return message.StatusUnsupportedCluster
	case errors.Is(err, ErrUnsupportedAttribute):
		return message.StatusUnsupportedAttribute
	case errors.Is(err, ErrUnsupportedCommand):
		return message.StatusUnsupportedCommand
	case errors.Is(err, ErrUnsupportedAccess):
		return message.StatusUnsupportedAccess
	case errors.Is(err, ErrUnsupportedWrite):
		return message.StatusUnsupportedWrite
	case errors.Is(err, ErrUnsupportedRead):
		return message.StatusUnsupportedRead
	case errors.Is(err, ErrNeedsTimedInteraction):
		return message.StatusNeedsTimedInteraction
	case errors.Is(err, ErrDataVersionMismatch):
		return message.StatusDataVersionMismatch
	case errors.Is(err, codec.ErrConstraint), errors.Is(err, codec.ErrInvalidValue):
		return message.StatusConstraintError
	case errors.Is(err, codec.ErrWrongType):
		return message.StatusInvalidDataType
	case errors.Is(err, ErrBufferTooSmall):
		return message.StatusResourceExhausted
	case errors.Is(err, ErrBusy):
		return message.StatusBusy
	default:
		// ErrFailure, codec.ErrInvalidArgument and anything unrecognised.
		return message.StatusFailure
	}
}
