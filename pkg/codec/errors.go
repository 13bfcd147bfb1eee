package codec

import "errors"

var (
	// ErrWrongType is returned when a TLV element does not match the
	// attribute type, including null written to a non-nullable attribute.
	ErrWrongType = errors.New("codec: wrong value type")

	// ErrInvalidArgument is returned when an integer does not fit the
	// storage width of its type.
	ErrInvalidArgument = errors.New("codec: integer out of range for type")

	// ErrConstraint is returned when a non-null value of a nullable
	// attribute encodes to the null sentinel.
	ErrConstraint = errors.New("codec: value collides with null sentinel")

	// ErrInvalidValue is returned when a string exceeds the attribute's
	// maximum length.
	ErrInvalidValue = errors.New("codec: string too long")

	// ErrUnsupportedType is returned for types without a storage form.
	ErrUnsupportedType = errors.New("codec: type has no storage representation")

	// ErrCorrupt is returned when storage bytes are shorter than the type
	// requires or a length prefix points past them.
	ErrCorrupt = errors.New("codec: malformed storage bytes")

	ErrUnknownType = errors.New("codec: unknown attribute type")
)
