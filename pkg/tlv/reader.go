package tlv

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// Reader decodes TLV elements from an io.Reader.
//
// Next positions the reader on an element and buffers fixed-size values.
// String payloads stay in the stream until they are read or skipped.
type Reader struct {
	r              io.Reader
	containerStack []ElementType

	hasElement bool
	elemType   ElementType
	tag        Tag
	valueRead  bool
	valueBuf   [8]byte
	stringLen  uint64
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Next advances to the next element. It returns io.EOF at the end of input.
func (r *Reader) Next() error {
	if r.hasElement && !r.valueRead {
		if err := r.skipValue(); err != nil {
			return err
		}
	}

	var ctrl [1]byte
	if _, err := io.ReadFull(r.r, ctrl[:]); err != nil {
		r.hasElement = false
		return err
	}
	elemType, tagCtrl := ParseControlOctet(ctrl[0])
	if elemType > ElementTypeEnd {
		return ErrInvalidElementType
	}
	tag, err := ReadTag(r.r, tagCtrl)
	if err != nil {
		return err
	}

	r.elemType = elemType
	r.tag = tag
	r.stringLen = 0
	if n := elemType.ValueSize(); n > 0 {
		if _, err := io.ReadFull(r.r, r.valueBuf[:n]); err != nil {
			return unexpectedEOF(err)
		}
	}
	if n := elemType.LengthFieldSize(); n > 0 {
		var lenBuf [8]byte
		if _, err := io.ReadFull(r.r, lenBuf[:n]); err != nil {
			return unexpectedEOF(err)
		}
		r.stringLen = binary.LittleEndian.Uint64(lenBuf[:])
	}
	r.hasElement = true
	r.valueRead = false
	return nil
}

func (r *Reader) Type() ElementType { return r.elemType }
func (r *Reader) Tag() Tag          { return r.tag }
func (r *Reader) HasElement() bool  { return r.hasElement }

// IsNull reports whether the current element is a null, without consuming it.
func (r *Reader) IsNull() bool {
	return r.hasElement && r.elemType == ElementTypeNull
}

// take marks the current value consumed if ok accepts its type.
func (r *Reader) take(ok func(ElementType) bool) error {
	if !r.hasElement {
		return ErrNoElement
	}
	if r.valueRead {
		return ErrValueAlreadyRead
	}
	if !ok(r.elemType) {
		return ErrTypeMismatch
	}
	r.valueRead = true
	return nil
}

func (r *Reader) fixedBits() uint64 {
	switch r.elemType.ValueSize() {
	case 1:
		return uint64(r.valueBuf[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(r.valueBuf[:2]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(r.valueBuf[:4]))
	}
	return binary.LittleEndian.Uint64(r.valueBuf[:8])
}

// Int returns a signed integer element.
func (r *Reader) Int() (int64, error) {
	if err := r.take(ElementType.IsSignedInt); err != nil {
		return 0, err
	}
	bits := r.fixedBits()
	switch r.elemType {
	case ElementTypeInt8:
		return int64(int8(bits)), nil
	case ElementTypeInt16:
		return int64(int16(bits)), nil
	case ElementTypeInt32:
		return int64(int32(bits)), nil
	}
	return int64(bits), nil
}

// Uint returns an unsigned integer element.
func (r *Reader) Uint() (uint64, error) {
	if err := r.take(ElementType.IsUnsignedInt); err != nil {
		return 0, err
	}
	return r.fixedBits(), nil
}

func (r *Reader) Bool() (bool, error) {
	if err := r.take(ElementType.IsBool); err != nil {
		return false, err
	}
	return r.elemType == ElementTypeTrue, nil
}

func (r *Reader) Float32() (float32, error) {
	if err := r.take(func(t ElementType) bool { return t == ElementTypeFloat32 }); err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(r.fixedBits())), nil
}

// Float64 accepts both float widths.
func (r *Reader) Float64() (float64, error) {
	if err := r.take(ElementType.IsFloat); err != nil {
		return 0, err
	}
	if r.elemType == ElementTypeFloat32 {
		return float64(math.Float32frombits(uint32(r.fixedBits()))), nil
	}
	return math.Float64frombits(r.fixedBits()), nil
}

func (r *Reader) readPayload() ([]byte, error) {
	if r.stringLen == 0 {
		return nil, nil
	}
	if r.stringLen > math.MaxInt32 {
		return nil, ErrOverflow
	}
	data := make([]byte, r.stringLen)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, unexpectedEOF(err)
	}
	return data, nil
}

// String returns a UTF-8 string element.
func (r *Reader) String() (string, error) {
	if err := r.take(ElementType.IsUTF8String); err != nil {
		return "", err
	}
	data, err := r.readPayload()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}

// Bytes returns an octet string element.
func (r *Reader) Bytes() ([]byte, error) {
	if err := r.take(ElementType.IsBytes); err != nil {
		return nil, err
	}
	return r.readPayload()
}

// StringLen returns the payload length of the current string element.
func (r *Reader) StringLen() uint64 {
	return r.stringLen
}

// Null consumes a null element.
func (r *Reader) Null() error {
	return r.take(func(t ElementType) bool { return t == ElementTypeNull })
}

// EnterContainer steps into the current structure, array or list.
func (r *Reader) EnterContainer() error {
	if err := r.take(ElementType.IsContainer); err != nil {
		return err
	}
	r.containerStack = append(r.containerStack, r.elemType)
	r.hasElement = false
	return nil
}

// ExitContainer skips the rest of the current container, including its
// end marker.
func (r *Reader) ExitContainer() error {
	if len(r.containerStack) == 0 {
		return ErrNotInContainer
	}
	if !r.IsEndOfContainer() {
		depth := 1
		if r.hasElement && !r.valueRead && r.elemType.IsContainer() {
			depth = 2
		}
		for depth > 0 {
			if err := r.Next(); err != nil {
				return unexpectedEOF(err)
			}
			switch {
			case r.elemType == ElementTypeEnd:
				depth--
			case r.elemType.IsContainer():
				depth++
			}
		}
	}
	r.containerStack = r.containerStack[:len(r.containerStack)-1]
	r.hasElement = false
	return nil
}

func (r *Reader) ContainerDepth() int { return len(r.containerStack) }

// IsEndOfContainer reports whether the reader sits on an end marker.
func (r *Reader) IsEndOfContainer() bool {
	return r.hasElement && r.elemType == ElementTypeEnd
}

// Skip discards the current element, including nested content.
func (r *Reader) Skip() error {
	if !r.hasElement {
		return ErrNoElement
	}
	if r.elemType.IsContainer() && !r.valueRead {
		if err := r.EnterContainer(); err != nil {
			return err
		}
		return r.ExitContainer()
	}
	return r.skipValue()
}

func (r *Reader) skipValue() error {
	if r.valueRead {
		return nil
	}
	r.valueRead = true
	if r.elemType.IsString() && r.stringLen > 0 {
		_, err := io.CopyN(io.Discard, r.r, int64(r.stringLen))
		return unexpectedEOF(err)
	}
	return nil
}

// RawBytes consumes the current element and returns its full encoding,
// control octet and tag included. The result can be passed to Writer.PutRaw.
func (r *Reader) RawBytes() ([]byte, error) {
	if !r.hasElement {
		return nil, ErrNoElement
	}
	if r.valueRead {
		return nil, ErrValueAlreadyRead
	}
	out := []byte{BuildControlOctet(r.elemType, r.tag.Control())}
	out = r.tag.appendTo(out)

	switch {
	case r.elemType.IsContainer():
		if err := r.EnterContainer(); err != nil {
			return nil, err
		}
		for {
			if err := r.Next(); err != nil {
				return nil, unexpectedEOF(err)
			}
			if r.IsEndOfContainer() {
				break
			}
			nested, err := r.RawBytes()
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
		if err := r.ExitContainer(); err != nil {
			return nil, err
		}
		out = append(out, byte(ElementTypeEnd))

	case r.elemType.IsString():
		var lenBuf [8]byte
		binary.LittleEndian.PutUint64(lenBuf[:], r.stringLen)
		out = append(out, lenBuf[:r.elemType.LengthFieldSize()]...)
		r.valueRead = true
		data, err := r.readPayload()
		if err != nil {
			return nil, err
		}
		out = append(out, data...)

	default:
		out = append(out, r.valueBuf[:r.elemType.ValueSize()]...)
		r.valueRead = true
	}
	return out, nil
}
