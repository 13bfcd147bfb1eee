package tlv

import (
	"encoding/binary"
	"io"
	"math"
	"slices"
	"unicode/utf8"
)

// Writer encodes TLV elements to an io.Writer. Each element is handed to the
// destination in a single Write call.
type Writer struct {
	w              io.Writer
	containerStack []ElementType
	scratch        []byte
}

// NewWriter creates a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// rewindable is implemented by *bytes.Buffer and *Buffer.
type rewindable interface {
	Len() int
	Truncate(n int)
}

// Checkpoint records a writer position that Rollback can return to.
type Checkpoint struct {
	length int
	stack  []ElementType
	valid  bool
}

// Checkpoint captures the current output length and container nesting.
// The returned value is only usable if the destination is rewindable.
func (w *Writer) Checkpoint() Checkpoint {
	rw, ok := w.w.(rewindable)
	if !ok {
		return Checkpoint{}
	}
	return Checkpoint{length: rw.Len(), stack: slices.Clone(w.containerStack), valid: true}
}

// Rollback discards everything written after cp, including any containers
// opened or closed since.
func (w *Writer) Rollback(cp Checkpoint) error {
	rw, ok := w.w.(rewindable)
	if !ok || !cp.valid {
		return ErrNotRewindable
	}
	rw.Truncate(cp.length)
	w.containerStack = slices.Clone(cp.stack)
	return nil
}

func (w *Writer) emit(elemType ElementType, tag Tag, value []byte) error {
	b := w.scratch[:0]
	b = append(b, BuildControlOctet(elemType, tag.Control()))
	b = tag.appendTo(b)
	b = append(b, value...)
	w.scratch = b
	_, err := w.w.Write(b)
	return err
}

func (w *Writer) putFixed(base ElementType, tag Tag, bits uint64, width int) error {
	var buf [8]byte
	var et ElementType
	switch width {
	case 1:
		buf[0] = byte(bits)
	case 2:
		binary.LittleEndian.PutUint16(buf[:2], uint16(bits))
		et = 1
	case 4:
		binary.LittleEndian.PutUint32(buf[:4], uint32(bits))
		et = 2
	case 8:
		binary.LittleEndian.PutUint64(buf[:8], bits)
		et = 3
	default:
		return ErrInvalidElementType
	}
	return w.emit(base+et, tag, buf[:width])
}

// PutInt writes a signed integer using the smallest width that holds v.
func (w *Writer) PutInt(tag Tag, v int64) error {
	width := 8
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		width = 1
	case v >= math.MinInt16 && v <= math.MaxInt16:
		width = 2
	case v >= math.MinInt32 && v <= math.MaxInt32:
		width = 4
	}
	return w.putFixed(ElementTypeInt8, tag, uint64(v), width)
}

// PutIntWithWidth writes a signed integer with a fixed width of 1, 2, 4 or 8.
func (w *Writer) PutIntWithWidth(tag Tag, v int64, width int) error {
	return w.putFixed(ElementTypeInt8, tag, uint64(v), width)
}

// PutUint writes an unsigned integer using the smallest width that holds v.
func (w *Writer) PutUint(tag Tag, v uint64) error {
	width := 8
	switch {
	case v <= math.MaxUint8:
		width = 1
	case v <= math.MaxUint16:
		width = 2
	case v <= math.MaxUint32:
		width = 4
	}
	return w.putFixed(ElementTypeUInt8, tag, v, width)
}

// PutUintWithWidth writes an unsigned integer with a fixed width of 1, 2, 4 or 8.
func (w *Writer) PutUintWithWidth(tag Tag, v uint64, width int) error {
	return w.putFixed(ElementTypeUInt8, tag, v, width)
}

func (w *Writer) PutBool(tag Tag, v bool) error {
	if v {
		return w.emit(ElementTypeTrue, tag, nil)
	}
	return w.emit(ElementTypeFalse, tag, nil)
}

func (w *Writer) PutFloat32(tag Tag, v float32) error {
	return w.emit(ElementTypeFloat32, tag, binary.LittleEndian.AppendUint32(nil, math.Float32bits(v)))
}

func (w *Writer) PutFloat64(tag Tag, v float64) error {
	return w.emit(ElementTypeFloat64, tag, binary.LittleEndian.AppendUint64(nil, math.Float64bits(v)))
}

// PutString writes a UTF-8 string. Invalid UTF-8 is rejected.
func (w *Writer) PutString(tag Tag, v string) error {
	if !utf8.ValidString(v) {
		return ErrInvalidUTF8
	}
	return w.putString(ElementTypeUTF8_1, tag, []byte(v))
}

// PutBytes writes an octet string.
func (w *Writer) PutBytes(tag Tag, v []byte) error {
	return w.putString(ElementTypeBytes1, tag, v)
}

func (w *Writer) putString(base ElementType, tag Tag, data []byte) error {
	n := uint64(len(data))
	var value []byte
	switch {
	case n <= math.MaxUint8:
		value = append(value, byte(n))
	case n <= math.MaxUint16:
		value = binary.LittleEndian.AppendUint16(value, uint16(n))
		base++
	case n <= math.MaxUint32:
		value = binary.LittleEndian.AppendUint32(value, uint32(n))
		base += 2
	default:
		value = binary.LittleEndian.AppendUint64(value, n)
		base += 3
	}
	return w.emit(base, tag, append(value, data...))
}

func (w *Writer) PutNull(tag Tag) error {
	return w.emit(ElementTypeNull, tag, nil)
}

// PutRaw writes a complete pre-encoded element, replacing its tag with tag.
func (w *Writer) PutRaw(tag Tag, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	elemType, ctrl := ParseControlOctet(raw[0])
	skip := 1 + ctrl.Size()
	if skip > len(raw) {
		return ErrUnexpectedEOF
	}
	return w.emit(elemType, tag, raw[skip:])
}

func (w *Writer) startContainer(elemType ElementType, tag Tag) error {
	if err := w.emit(elemType, tag, nil); err != nil {
		return err
	}
	w.containerStack = append(w.containerStack, elemType)
	return nil
}

func (w *Writer) StartStructure(tag Tag) error { return w.startContainer(ElementTypeStruct, tag) }
func (w *Writer) StartArray(tag Tag) error     { return w.startContainer(ElementTypeArray, tag) }
func (w *Writer) StartList(tag Tag) error      { return w.startContainer(ElementTypeList, tag) }

// EndContainer closes the innermost open container.
func (w *Writer) EndContainer() error {
	if len(w.containerStack) == 0 {
		return ErrNotInContainer
	}
	if _, err := w.w.Write([]byte{byte(ElementTypeEnd)}); err != nil {
		return err
	}
	w.containerStack = w.containerStack[:len(w.containerStack)-1]
	return nil
}

// ContainerDepth returns the number of open containers.
func (w *Writer) ContainerDepth() int {
	return len(w.containerStack)
}
