package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/backkem/dmprovider/pkg/tlv"
)

// allOnes returns the all-ones pattern of a width in bytes.
func allOnes(width int) uint64 {
	if width >= 8 {
		return math.MaxUint64
	}
	return 1<<(8*uint(width)) - 1
}

func getLE(raw []byte, width int) uint64 {
	var buf [8]byte
	copy(buf[:], raw[:width])
	return binary.LittleEndian.Uint64(buf[:])
}

func putLE(v uint64, width int) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return buf[:width]
}

// signExtend widens a width-byte two's complement value to 64 bits.
func signExtend(bits uint64, width int) int64 {
	shift := 64 - 8*uint(width)
	return int64(bits<<shift) >> shift
}

func signedRange(width int) (int64, int64) {
	shift := 8*uint(width) - 1
	return -1 << shift, 1<<shift - 1
}

// IsNull reports whether raw storage holds the null pattern for t.
func IsNull(t AttributeType, raw []byte) bool {
	info := t.info()
	if info.size == 0 || len(raw) < info.size {
		return false
	}
	return getLE(raw, info.size) == allOnes(info.size)
}

// NullValue returns the storage bytes that represent null for t. Strings
// are represented by their length prefix alone.
func NullValue(t AttributeType) ([]byte, error) {
	info := t.info()
	if !t.HasStorage() {
		return nil, ErrUnsupportedType
	}
	return putLE(allOnes(info.size), info.size), nil
}

// Encode writes the value held in raw storage as a TLV element with the
// given tag. Storage beyond the type width, or beyond a string's length
// prefix, is ignored.
func Encode(w *tlv.Writer, tag tlv.Tag, t AttributeType, nullable bool, raw []byte) error {
	info := t.info()
	if !t.HasStorage() {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	if len(raw) < info.size {
		return fmt.Errorf("%w: %s needs %d bytes, have %d", ErrCorrupt, t, info.size, len(raw))
	}
	bits := getLE(raw, info.size)
	isNull := nullable && bits == allOnes(info.size)

	switch info.kind {
	case kindBool:
		if isNull {
			return w.PutNull(tag)
		}
		return w.PutBool(tag, bits != 0)

	case kindUnsigned:
		if isNull {
			return w.PutNull(tag)
		}
		return w.PutUint(tag, bits)

	case kindSigned:
		if isNull {
			return w.PutNull(tag)
		}
		return w.PutInt(tag, signExtend(bits, info.size))

	case kindFloat:
		if isNull {
			return w.PutNull(tag)
		}
		if info.size == 4 {
			return w.PutFloat32(tag, math.Float32frombits(uint32(bits)))
		}
		return w.PutFloat64(tag, math.Float64frombits(bits))

	case kindString:
		n := bits
		if n == allOnes(info.size) {
			if nullable {
				return w.PutNull(tag)
			}
			n = 0
		}
		end := uint64(info.size) + n
		if end > uint64(len(raw)) {
			return fmt.Errorf("%w: %s length %d exceeds storage", ErrCorrupt, t, n)
		}
		payload := raw[info.size:end]
		if info.utf8 {
			return w.PutString(tag, string(payload))
		}
		return w.PutBytes(tag, payload)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

// Decode reads the TLV element the reader is positioned on and returns its
// storage bytes for type t. maxLength bounds string payloads.
func Decode(r *tlv.Reader, t AttributeType, nullable bool, maxLength uint16) ([]byte, error) {
	info := t.info()
	if !t.HasStorage() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}

	if r.IsNull() {
		if !nullable {
			return nil, fmt.Errorf("%w: null for non-nullable %s", ErrWrongType, t)
		}
		if err := r.Null(); err != nil {
			return nil, err
		}
		return NullValue(t)
	}

	switch info.kind {
	case kindBool:
		v, err := r.Bool()
		if err != nil {
			return nil, wrongType(t, err)
		}
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case kindUnsigned:
		v, err := readUnsigned(r, t)
		if err != nil {
			return nil, err
		}
		if v > allOnes(info.size) {
			return nil, fmt.Errorf("%w: %d does not fit %s", ErrInvalidArgument, v, t)
		}
		if nullable && v == allOnes(info.size) {
			return nil, fmt.Errorf("%w: %d for nullable %s", ErrConstraint, v, t)
		}
		return putLE(v, info.size), nil

	case kindSigned:
		v, err := readSigned(r, t)
		if err != nil {
			return nil, err
		}
		lo, hi := signedRange(info.size)
		if v < lo || v > hi {
			return nil, fmt.Errorf("%w: %d does not fit %s", ErrInvalidArgument, v, t)
		}
		bits := uint64(v) & allOnes(info.size)
		if nullable && bits == allOnes(info.size) {
			return nil, fmt.Errorf("%w: %d for nullable %s", ErrConstraint, v, t)
		}
		return putLE(bits, info.size), nil

	case kindFloat:
		v, err := r.Float64()
		if err != nil {
			return nil, wrongType(t, err)
		}
		var bits uint64
		if info.size == 4 {
			bits = uint64(math.Float32bits(float32(v)))
		} else {
			bits = math.Float64bits(v)
		}
		if nullable && bits == allOnes(info.size) {
			return nil, fmt.Errorf("%w: NaN pattern for nullable %s", ErrConstraint, t)
		}
		return putLE(bits, info.size), nil

	case kindString:
		return decodeString(r, t, maxLength)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

func decodeString(r *tlv.Reader, t AttributeType, maxLength uint16) ([]byte, error) {
	info := t.info()
	if (info.utf8 && !r.Type().IsUTF8String()) || (!info.utf8 && !r.Type().IsBytes()) {
		return nil, fmt.Errorf("%w: %s for %s", ErrWrongType, r.Type(), t)
	}
	n := r.StringLen()
	if n > uint64(maxLength) || n >= t.maxPrefix() {
		return nil, fmt.Errorf("%w: %d bytes, %s allows %d", ErrInvalidValue, n, t, maxLength)
	}

	var payload []byte
	if info.utf8 {
		s, err := r.String()
		if err != nil {
			return nil, err
		}
		payload = []byte(s)
	} else {
		b, err := r.Bytes()
		if err != nil {
			return nil, err
		}
		payload = b
	}
	out := make([]byte, 0, info.size+len(payload))
	out = append(out, putLE(n, info.size)...)
	return append(out, payload...), nil
}

func readUnsigned(r *tlv.Reader, t AttributeType) (uint64, error) {
	switch {
	case r.Type().IsUnsignedInt():
		return r.Uint()
	case r.Type().IsSignedInt():
		v, err := r.Int()
		if err != nil {
			return 0, err
		}
		if v < 0 {
			return 0, fmt.Errorf("%w: %d for %s", ErrInvalidArgument, v, t)
		}
		return uint64(v), nil
	}
	return 0, fmt.Errorf("%w: %s for %s", ErrWrongType, r.Type(), t)
}

func readSigned(r *tlv.Reader, t AttributeType) (int64, error) {
	switch {
	case r.Type().IsSignedInt():
		return r.Int()
	case r.Type().IsUnsignedInt():
		v, err := r.Uint()
		if err != nil {
			return 0, err
		}
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d for %s", ErrInvalidArgument, v, t)
		}
		return int64(v), nil
	}
	return 0, fmt.Errorf("%w: %s for %s", ErrWrongType, r.Type(), t)
}

func wrongType(t AttributeType, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrWrongType, t, err)
}
