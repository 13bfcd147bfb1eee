package datamodel

import (
	"context"

	"github.com/backkem/dmprovider/pkg/codec"
	"github.com/backkem/dmprovider/pkg/tlv"
)

// AccessChecker decides whether a subject holds a privilege on a path.
type AccessChecker interface {
	Check(subject SubjectDescriptor, path RequestPath, privilege Privilege) bool
}

// AllowAllChecker grants every request. It is the default when no access
// checker is configured.
type AllowAllChecker struct{}

func (AllowAllChecker) Check(SubjectDescriptor, RequestPath, Privilege) bool { return true }

// AttributeStorage is the raw byte store behind attributes that no access
// interface serves. Values are little endian and exactly as wide as their
// type; strings carry their length prefix.
//
// Implementations return errors wrapping ErrBusy or ErrFailure.
type AttributeStorage interface {
	// ReadRaw copies the stored bytes into buf and returns how many were
	// written and the stored type.
	ReadRaw(path ConcreteAttributePath, buf []byte) (int, codec.AttributeType, error)

	// WriteRaw replaces the stored bytes.
	WriteRaw(path ConcreteAttributePath, data []byte, t codec.AttributeType) error
}

// AttributeChangeListener is notified once per successful attribute write.
type AttributeChangeListener interface {
	MarkDirty(path ConcreteAttributePath)
}

// NopChangeListener discards notifications.
type NopChangeListener struct{}

func (NopChangeListener) MarkDirty(ConcreteAttributePath) {}

// AccessOutcome is the result of an attribute access interface call. It is
// either NotHandled, or Handled with a nil or non-nil error.
type AccessOutcome struct {
	handled bool
	err     error
}

// NotHandled declines the request; the provider falls back to storage.
var NotHandled = AccessOutcome{}

// Handled reports that the interface served the request with result err.
func Handled(err error) AccessOutcome {
	return AccessOutcome{handled: true, err: err}
}

func (o AccessOutcome) IsHandled() bool { return o.handled }
func (o AccessOutcome) Err() error      { return o.err }

// AttributeAccessInterface overrides reads and writes of the attributes of
// one cluster, on one endpoint or on all endpoints.
//
// C++ Reference: app/AttributeAccessInterface.h
type AttributeAccessInterface interface {
	Read(ctx context.Context, path ConcreteReadAttributePath, enc *AttributeValueEncoder) AccessOutcome
	Write(ctx context.Context, path ConcreteDataAttributePath, dec *AttributeValueDecoder) AccessOutcome
}

// CommandHandler executes a command. The reader is positioned before the
// command fields. The returned bytes are the TLV response payload, or nil
// for a status-only response.
type CommandHandler interface {
	InvokeCommand(ctx context.Context, req InvokeRequest, r *tlv.Reader) ([]byte, error)
}

// CommandHandlerFunc adapts a function to CommandHandler.
type CommandHandlerFunc func(ctx context.Context, req InvokeRequest, r *tlv.Reader) ([]byte, error)

func (f CommandHandlerFunc) InvokeCommand(ctx context.Context, req InvokeRequest, r *tlv.Reader) ([]byte, error) {
	return f(ctx, req, r)
}
