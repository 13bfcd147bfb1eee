package tlv

import (
	"errors"
	"io"
)

var (
	ErrUnexpectedEOF      = errors.New("tlv: unexpected end of input")
	ErrInvalidElementType = errors.New("tlv: invalid element type")
	ErrTypeMismatch       = errors.New("tlv: type mismatch")
	ErrNotInContainer     = errors.New("tlv: not in container")
	ErrInvalidUTF8        = errors.New("tlv: invalid UTF-8 string")
	ErrNoElement          = errors.New("tlv: no current element")
	ErrValueAlreadyRead   = errors.New("tlv: value already read")
	ErrOverflow           = errors.New("tlv: value overflow")

	// ErrBufferFull is returned by Buffer when a write would exceed its limit.
	ErrBufferFull = errors.New("tlv: buffer full")

	// ErrNotRewindable is returned by Writer.Rollback when the destination
	// cannot be truncated.
	ErrNotRewindable = errors.New("tlv: writer destination cannot be rewound")
)

// unexpectedEOF turns a short read inside an element into ErrUnexpectedEOF.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}
	return err
}
