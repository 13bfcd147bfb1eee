package tlv

import (
	"encoding/binary"
	"io"
)

// TagControl is the upper 3 bits of a control octet.
type TagControl int

const (
	TagControlAnonymous        TagControl = 0
	TagControlContext          TagControl = 1
	TagControlCommonProfile2   TagControl = 2
	TagControlCommonProfile4   TagControl = 3
	TagControlImplicitProfile2 TagControl = 4
	TagControlImplicitProfile4 TagControl = 5
	TagControlFullyQualified6  TagControl = 6
	TagControlFullyQualified8  TagControl = 7
)

var tagControlSizes = [...]int{0, 1, 2, 4, 2, 4, 6, 8}

// Size returns the number of tag octets that follow the control octet.
func (tc TagControl) Size() int {
	if tc < 0 || int(tc) >= len(tagControlSizes) {
		return 0
	}
	return tagControlSizes[tc]
}

// Tag identifies an element within its container.
type Tag struct {
	control   TagControl
	vendorID  uint16
	profile   uint16
	tagNumber uint32
}

// Anonymous returns the empty tag used for array elements and top-level values.
func Anonymous() Tag {
	return Tag{}
}

// ContextTag returns a context-specific tag, as used for structure fields.
func ContextTag(n uint8) Tag {
	return Tag{control: TagControlContext, tagNumber: uint32(n)}
}

// CommonProfileTag returns a tag in the Matter common profile.
func CommonProfileTag(n uint32) Tag {
	if n > 0xFFFF {
		return Tag{control: TagControlCommonProfile4, tagNumber: n}
	}
	return Tag{control: TagControlCommonProfile2, tagNumber: n}
}

// FullyQualifiedTag returns a vendor/profile qualified tag.
func FullyQualifiedTag(vendorID, profile uint16, n uint32) Tag {
	ctrl := TagControlFullyQualified6
	if n > 0xFFFF {
		ctrl = TagControlFullyQualified8
	}
	return Tag{control: ctrl, vendorID: vendorID, profile: profile, tagNumber: n}
}

func (t Tag) Control() TagControl { return t.control }
func (t Tag) IsAnonymous() bool   { return t.control == TagControlAnonymous }
func (t Tag) IsContext() bool     { return t.control == TagControlContext }
func (t Tag) TagNumber() uint32   { return t.tagNumber }
func (t Tag) VendorID() uint16    { return t.vendorID }
func (t Tag) ProfileNumber() uint16 {
	return t.profile
}

// appendTo appends the tag octets (not the control octet) to b.
func (t Tag) appendTo(b []byte) []byte {
	switch t.control {
	case TagControlContext:
		return append(b, byte(t.tagNumber))
	case TagControlCommonProfile2, TagControlImplicitProfile2:
		return binary.LittleEndian.AppendUint16(b, uint16(t.tagNumber))
	case TagControlCommonProfile4, TagControlImplicitProfile4:
		return binary.LittleEndian.AppendUint32(b, t.tagNumber)
	case TagControlFullyQualified6:
		b = binary.LittleEndian.AppendUint16(b, t.vendorID)
		b = binary.LittleEndian.AppendUint16(b, t.profile)
		return binary.LittleEndian.AppendUint16(b, uint16(t.tagNumber))
	case TagControlFullyQualified8:
		b = binary.LittleEndian.AppendUint16(b, t.vendorID)
		b = binary.LittleEndian.AppendUint16(b, t.profile)
		return binary.LittleEndian.AppendUint32(b, t.tagNumber)
	}
	return b
}

// ReadTag reads the tag octets for the given tag form.
func ReadTag(r io.Reader, ctrl TagControl) (Tag, error) {
	var buf [8]byte
	tag := Tag{control: ctrl}
	n := ctrl.Size()
	if n == 0 {
		return tag, nil
	}
	if _, err := io.ReadFull(r, buf[:n]); err != nil {
		return tag, unexpectedEOF(err)
	}
	switch ctrl {
	case TagControlContext:
		tag.tagNumber = uint32(buf[0])
	case TagControlCommonProfile2, TagControlImplicitProfile2:
		tag.tagNumber = uint32(binary.LittleEndian.Uint16(buf[:2]))
	case TagControlCommonProfile4, TagControlImplicitProfile4:
		tag.tagNumber = binary.LittleEndian.Uint32(buf[:4])
	case TagControlFullyQualified6:
		tag.vendorID = binary.LittleEndian.Uint16(buf[0:2])
		tag.profile = binary.LittleEndian.Uint16(buf[2:4])
		tag.tagNumber = uint32(binary.LittleEndian.Uint16(buf[4:6]))
	case TagControlFullyQualified8:
		tag.vendorID = binary.LittleEndian.Uint16(buf[0:2])
		tag.profile = binary.LittleEndian.Uint16(buf[2:4])
		tag.tagNumber = binary.LittleEndian.Uint32(buf[4:8])
	}
	return tag, nil
}
