package datamodel

import (
	"bytes"

	"github.com/backkem/dmprovider/pkg/tlv"
)

// AttributeValueDecoder hands the TLV value of a write to whoever consumes
// it: an attribute access interface or the storage codec.
//
// C++ Reference: app/AttributeValueDecoder.h
type AttributeValueDecoder struct {
	r           *tlv.Reader
	positioned  bool
	triedDecode bool
}

// NewAttributeValueDecoder wraps a reader positioned just before the value.
func NewAttributeValueDecoder(r *tlv.Reader) *AttributeValueDecoder {
	return &AttributeValueDecoder{r: r}
}

// NewAttributeValueDecoderBytes decodes a single anonymous TLV element, such
// as AttributeDataIB.Data.
func NewAttributeValueDecoderBytes(data []byte) *AttributeValueDecoder {
	return NewAttributeValueDecoder(tlv.NewReader(bytes.NewReader(data)))
}

// Reader returns the underlying reader positioned on the value.
func (d *AttributeValueDecoder) Reader() (*tlv.Reader, error) {
	d.triedDecode = true
	if !d.positioned {
		if err := d.r.Next(); err != nil {
			return nil, err
		}
		d.positioned = true
	}
	return d.r, nil
}

// TriedDecode reports whether the value was accessed.
func (d *AttributeValueDecoder) TriedDecode() bool { return d.triedDecode }

func (d *AttributeValueDecoder) IsNull() (bool, error) {
	r, err := d.Reader()
	if err != nil {
		return false, err
	}
	return r.IsNull(), nil
}

func (d *AttributeValueDecoder) DecodeUint() (uint64, error) {
	r, err := d.Reader()
	if err != nil {
		return 0, err
	}
	return r.Uint()
}

func (d *AttributeValueDecoder) DecodeInt() (int64, error) {
	r, err := d.Reader()
	if err != nil {
		return 0, err
	}
	return r.Int()
}

func (d *AttributeValueDecoder) DecodeBool() (bool, error) {
	r, err := d.Reader()
	if err != nil {
		return false, err
	}
	return r.Bool()
}

func (d *AttributeValueDecoder) DecodeString() (string, error) {
	r, err := d.Reader()
	if err != nil {
		return "", err
	}
	return r.String()
}

func (d *AttributeValueDecoder) DecodeBytes() ([]byte, error) {
	r, err := d.Reader()
	if err != nil {
		return nil, err
	}
	return r.Bytes()
}
