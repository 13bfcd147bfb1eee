// Package codec converts attribute values between their fixed-width storage
// representation and TLV.
//
// Storage is little endian and exactly as wide as the declared type, so
// oddly sized integers occupy 3, 5, 6 or 7 bytes. Nullable attributes
// reserve the all-ones pattern of their width as null. Strings carry a
// 1-byte (short) or 2-byte (long) length prefix whose maximum value marks
// null.
package codec

import (
	"fmt"
	"strings"
)

// AttributeType is the storage type of an attribute.
type AttributeType uint8

const (
	TypeUnknown AttributeType = iota
	TypeBoolean
	TypeBitmap8
	TypeBitmap16
	TypeBitmap32
	TypeBitmap64
	TypeInt8U
	TypeInt16U
	TypeInt24U
	TypeInt32U
	TypeInt40U
	TypeInt48U
	TypeInt56U
	TypeInt64U
	TypeInt8S
	TypeInt16S
	TypeInt24S
	TypeInt32S
	TypeInt40S
	TypeInt48S
	TypeInt56S
	TypeInt64S
	TypeEnum8
	TypeEnum16
	TypeSingle
	TypeDouble
	TypeCharString
	TypeOctetString
	TypeLongCharString
	TypeLongOctetString
	TypeStruct
	TypeArray
)

type kind uint8

const (
	kindNone kind = iota
	kindBool
	kindUnsigned
	kindSigned
	kindFloat
	kindString
	kindStruct
	kindList
)

// typeInfo describes the storage shape of a type. For strings, size is the
// width of the length prefix.
type typeInfo struct {
	name string
	kind kind
	size int
	utf8 bool
}

var typeInfos = [...]typeInfo{
	TypeUnknown:         {"unknown", kindNone, 0, false},
	TypeBoolean:         {"boolean", kindBool, 1, false},
	TypeBitmap8:         {"bitmap8", kindUnsigned, 1, false},
	TypeBitmap16:        {"bitmap16", kindUnsigned, 2, false},
	TypeBitmap32:        {"bitmap32", kindUnsigned, 4, false},
	TypeBitmap64:        {"bitmap64", kindUnsigned, 8, false},
	TypeInt8U:           {"int8u", kindUnsigned, 1, false},
	TypeInt16U:          {"int16u", kindUnsigned, 2, false},
	TypeInt24U:          {"int24u", kindUnsigned, 3, false},
	TypeInt32U:          {"int32u", kindUnsigned, 4, false},
	TypeInt40U:          {"int40u", kindUnsigned, 5, false},
	TypeInt48U:          {"int48u", kindUnsigned, 6, false},
	TypeInt56U:          {"int56u", kindUnsigned, 7, false},
	TypeInt64U:          {"int64u", kindUnsigned, 8, false},
	TypeInt8S:           {"int8s", kindSigned, 1, false},
	TypeInt16S:          {"int16s", kindSigned, 2, false},
	TypeInt24S:          {"int24s", kindSigned, 3, false},
	TypeInt32S:          {"int32s", kindSigned, 4, false},
	TypeInt40S:          {"int40s", kindSigned, 5, false},
	TypeInt48S:          {"int48s", kindSigned, 6, false},
	TypeInt56S:          {"int56s", kindSigned, 7, false},
	TypeInt64S:          {"int64s", kindSigned, 8, false},
	TypeEnum8:           {"enum8", kindUnsigned, 1, false},
	TypeEnum16:          {"enum16", kindUnsigned, 2, false},
	TypeSingle:          {"single", kindFloat, 4, false},
	TypeDouble:          {"double", kindFloat, 8, false},
	TypeCharString:      {"char_string", kindString, 1, true},
	TypeOctetString:     {"octet_string", kindString, 1, false},
	TypeLongCharString:  {"long_char_string", kindString, 2, true},
	TypeLongOctetString: {"long_octet_string", kindString, 2, false},
	TypeStruct:          {"struct", kindStruct, 0, false},
	TypeArray:           {"array", kindList, 0, false},
}

func (t AttributeType) info() typeInfo {
	if int(t) >= len(typeInfos) {
		return typeInfos[TypeUnknown]
	}
	return typeInfos[t]
}

func (t AttributeType) String() string {
	return t.info().name
}

// ParseAttributeType looks a type up by its String name, case-insensitively.
func ParseAttributeType(name string) (AttributeType, error) {
	for t, info := range typeInfos {
		if t != int(TypeUnknown) && strings.EqualFold(info.name, name) {
			return AttributeType(t), nil
		}
	}
	return TypeUnknown, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// IsValid reports whether t is a defined type other than TypeUnknown.
func (t AttributeType) IsValid() bool {
	return t != TypeUnknown && int(t) < len(typeInfos)
}

func (t AttributeType) IsString() bool { return t.info().kind == kindString }
func (t AttributeType) IsList() bool   { return t.info().kind == kindList }
func (t AttributeType) IsStruct() bool { return t.info().kind == kindStruct }
func (t AttributeType) IsSigned() bool { return t.info().kind == kindSigned }

// HasStorage reports whether values of t live in raw storage. Struct and
// list values are only served by attribute access interfaces.
func (t AttributeType) HasStorage() bool {
	k := t.info().kind
	return k != kindNone && k != kindStruct && k != kindList
}

// Width returns the storage width of fixed-size types, or the length prefix
// width of strings.
func (t AttributeType) Width() int {
	return t.info().size
}

// StorageSize returns the number of storage bytes an attribute of type t
// needs. maxLength is the maximum payload length of string types.
func (t AttributeType) StorageSize(maxLength uint16) int {
	info := t.info()
	if info.kind == kindString {
		return info.size + int(maxLength)
	}
	return info.size
}

// maxPrefix is the reserved null length prefix of a string type.
func (t AttributeType) maxPrefix() uint64 {
	return allOnes(t.info().size)
}
