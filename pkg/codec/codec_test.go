package codec

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/backkem/dmprovider/pkg/tlv"
)

// roundTrip stores v through Decode, then reads it back through Encode and
// returns the resulting TLV element bytes and the storage bytes.
func roundTrip(t *testing.T, typ AttributeType, nullable bool, maxLength uint16, v any) (stored []byte, out *tlv.Reader) {
	t.Helper()
	stored, err := FromValue(typ, nullable, maxLength, v)
	if err != nil {
		t.Fatalf("FromValue(%s, %v): %v", typ, v, err)
	}
	if len(stored) > typ.StorageSize(maxLength) {
		t.Fatalf("stored %d bytes, StorageSize is %d", len(stored), typ.StorageSize(maxLength))
	}
	var buf bytes.Buffer
	if err := Encode(tlv.NewWriter(&buf), tlv.Anonymous(), typ, nullable, stored); err != nil {
		t.Fatalf("Encode(%s): %v", typ, err)
	}
	r := tlv.NewReader(bytes.NewReader(buf.Bytes()))
	if err := r.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	return stored, r
}

func TestUnsignedRoundTrip(t *testing.T) {
	types := []AttributeType{
		TypeInt8U, TypeInt16U, TypeInt24U, TypeInt32U, TypeInt40U, TypeInt48U, TypeInt56U, TypeInt64U,
		TypeBitmap8, TypeBitmap16, TypeBitmap32, TypeBitmap64, TypeEnum8, TypeEnum16,
	}
	for _, typ := range types {
		max := allOnes(typ.Width())
		for _, v := range []uint64{0, 1, max / 2, max - 1, max} {
			_, r := roundTrip(t, typ, false, 0, v)
			got, err := r.Uint()
			if err != nil || got != v {
				t.Errorf("%s: read %d, %v, want %d", typ, got, err, v)
			}
		}
	}
}

func TestSignedRoundTrip(t *testing.T) {
	types := []AttributeType{TypeInt8S, TypeInt16S, TypeInt24S, TypeInt32S, TypeInt40S, TypeInt48S, TypeInt56S, TypeInt64S}
	for _, typ := range types {
		lo, hi := signedRange(typ.Width())
		for _, v := range []int64{lo, lo + 1, -1, 0, 1, hi - 1, hi} {
			_, r := roundTrip(t, typ, false, 0, v)
			got, err := r.Int()
			if err != nil || got != v {
				t.Errorf("%s: read %d, %v, want %d", typ, got, err, v)
			}
		}
	}
}

func TestSignExtendOddWidths(t *testing.T) {
	stored, err := FromValue(TypeInt24S, false, 0, -2)
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	if want := []byte{0xfe, 0xff, 0xff}; !bytes.Equal(stored, want) {
		t.Errorf("storage = % x, want % x", stored, want)
	}
	if got := signExtend(0x800000, 3); got != -8388608 {
		t.Errorf("signExtend(0x800000, 3) = %d, want -8388608", got)
	}
	if got := signExtend(0x7fffffffff, 5); got != 549755813887 {
		t.Errorf("signExtend(0x7fffffffff, 5) = %d", got)
	}
}

func TestOtherScalarsRoundTrip(t *testing.T) {
	_, r := roundTrip(t, TypeBoolean, false, 0, true)
	if v, err := r.Bool(); err != nil || !v {
		t.Errorf("boolean = %v, %v, want true", v, err)
	}
	_, r = roundTrip(t, TypeSingle, false, 0, float32(-2.5))
	if v, err := r.Float32(); err != nil || v != -2.5 {
		t.Errorf("single = %v, %v, want -2.5", v, err)
	}
	_, r = roundTrip(t, TypeDouble, false, 0, math.Pi)
	if v, err := r.Float64(); err != nil || v != math.Pi {
		t.Errorf("double = %v, %v, want pi", v, err)
	}
	_, r = roundTrip(t, TypeCharString, false, 16, "kitchen")
	if v, err := r.String(); err != nil || v != "kitchen" {
		t.Errorf("char_string = %q, %v", v, err)
	}
	stored, r := roundTrip(t, TypeLongOctetString, false, 600, bytes.Repeat([]byte{0xab}, 300))
	if v, err := r.Bytes(); err != nil || len(v) != 300 {
		t.Errorf("long_octet_string len = %d, %v, want 300", len(v), err)
	}
	if stored[0] != 0x2c || stored[1] != 0x01 {
		t.Errorf("long prefix = % x, want 2c 01", stored[:2])
	}
}

func TestNullRoundTrip(t *testing.T) {
	types := []AttributeType{
		TypeBoolean, TypeInt8U, TypeInt24U, TypeInt40U, TypeInt48U, TypeInt56U, TypeInt64U,
		TypeInt16S, TypeInt24S, TypeInt56S, TypeEnum8, TypeBitmap32, TypeSingle, TypeDouble,
		TypeCharString, TypeOctetString, TypeLongCharString, TypeLongOctetString,
	}
	for _, typ := range types {
		stored, r := roundTrip(t, typ, true, 8, nil)
		if !r.IsNull() {
			t.Errorf("%s: read back %v, want null", typ, r.Type())
		}
		want := bytes.Repeat([]byte{0xff}, typ.Width())
		if !bytes.Equal(stored, want) {
			t.Errorf("%s: null storage = % x, want % x", typ, stored, want)
		}
		if !IsNull(typ, stored) {
			t.Errorf("%s: IsNull(storage) = false", typ)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name      string
		typ       AttributeType
		nullable  bool
		maxLength uint16
		value     any
		want      error
	}{
		{"null to non-nullable uint", TypeInt16U, false, 0, nil, ErrWrongType},
		{"null to non-nullable bool", TypeBoolean, false, 0, nil, ErrWrongType},
		{"null to non-nullable string", TypeCharString, false, 8, nil, ErrWrongType},
		{"int24u over", TypeInt24U, false, 0, uint64(1 << 24), ErrInvalidArgument},
		{"int24u nullable over", TypeInt24U, true, 0, uint64(1 << 24), ErrInvalidArgument},
		{"int40u over", TypeInt40U, false, 0, uint64(1 << 40), ErrInvalidArgument},
		{"int48u over", TypeInt48U, true, 0, uint64(1 << 48), ErrInvalidArgument},
		{"int56u over", TypeInt56U, false, 0, uint64(1 << 56), ErrInvalidArgument},
		{"int24u negative", TypeInt24U, false, 0, -1, ErrInvalidArgument},
		{"int24s over", TypeInt24S, false, 0, int64(1 << 23), ErrInvalidArgument},
		{"int24s under", TypeInt24S, true, 0, int64(-1<<23 - 1), ErrInvalidArgument},
		{"int40s under", TypeInt40S, false, 0, int64(-1<<39 - 1), ErrInvalidArgument},
		{"int48s over", TypeInt48S, true, 0, int64(1 << 47), ErrInvalidArgument},
		{"int56s over", TypeInt56S, false, 0, int64(1 << 55), ErrInvalidArgument},
		{"int8u sentinel", TypeInt8U, true, 0, 0xff, ErrConstraint},
		{"int24u sentinel", TypeInt24U, true, 0, 0xffffff, ErrConstraint},
		{"int24s sentinel", TypeInt24S, true, 0, -1, ErrConstraint},
		{"enum16 sentinel", TypeEnum16, true, 0, 0xffff, ErrConstraint},
		{"string for int", TypeInt32U, false, 0, "1", ErrWrongType},
		{"bytes for char string", TypeCharString, false, 8, []byte("x"), ErrWrongType},
		{"string too long", TypeCharString, false, 4, "toolong", ErrInvalidValue},
		{"octet too long", TypeOctetString, true, 2, []byte{1, 2, 3}, ErrInvalidValue},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromValue(tc.typ, tc.nullable, tc.maxLength, tc.value)
			if !errors.Is(err, tc.want) {
				t.Errorf("FromValue() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestEncodeIgnoresOverAllocatedStorage(t *testing.T) {
	raw := []byte{0x02, 'o', 'k', 'X', 'X', 'X'}
	var buf bytes.Buffer
	if err := Encode(tlv.NewWriter(&buf), tlv.Anonymous(), TypeCharString, false, raw); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	r := tlv.NewReader(bytes.NewReader(buf.Bytes()))
	r.Next()
	if s, err := r.String(); err != nil || s != "ok" {
		t.Errorf("String() = %q, %v, want ok", s, err)
	}

	if err := Encode(tlv.NewWriter(&buf), tlv.Anonymous(), TypeCharString, false, []byte{0x05, 'a'}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Encode(short storage) = %v, want ErrCorrupt", err)
	}
}

func TestStructAndListHaveNoStorage(t *testing.T) {
	for _, typ := range []AttributeType{TypeStruct, TypeArray} {
		if typ.HasStorage() {
			t.Errorf("%s.HasStorage() = true", typ)
		}
		var buf bytes.Buffer
		if err := Encode(tlv.NewWriter(&buf), tlv.Anonymous(), typ, false, nil); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Encode(%s) = %v, want ErrUnsupportedType", typ, err)
		}
	}
}

func TestParseAttributeType(t *testing.T) {
	for _, name := range []string{"int48u", "INT24S", "long_char_string", "enum8"} {
		typ, err := ParseAttributeType(name)
		if err != nil {
			t.Errorf("ParseAttributeType(%q): %v", name, err)
			continue
		}
		if typ.String() == "unknown" {
			t.Errorf("ParseAttributeType(%q) = unknown", name)
		}
	}
	if _, err := ParseAttributeType("int12u"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("ParseAttributeType(int12u) = %v, want ErrUnknownType", err)
	}
}
