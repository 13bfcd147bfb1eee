package codec

import (
	"bytes"
	"fmt"

	"github.com/backkem/dmprovider/pkg/tlv"
)

// FromValue converts a plain Go value into storage bytes for t, applying the
// same rules as Decode. It accepts nil, bool, signed and unsigned integers,
// floats, string and []byte, which covers values loaded from configuration.
func FromValue(t AttributeType, nullable bool, maxLength uint16, v any) ([]byte, error) {
	var buf bytes.Buffer
	w := tlv.NewWriter(&buf)
	tag := tlv.Anonymous()

	var err error
	switch x := v.(type) {
	case nil:
		err = w.PutNull(tag)
	case bool:
		err = w.PutBool(tag, x)
	case int:
		err = w.PutInt(tag, int64(x))
	case int8:
		err = w.PutInt(tag, int64(x))
	case int16:
		err = w.PutInt(tag, int64(x))
	case int32:
		err = w.PutInt(tag, int64(x))
	case int64:
		err = w.PutInt(tag, x)
	case uint:
		err = w.PutUint(tag, uint64(x))
	case uint8:
		err = w.PutUint(tag, uint64(x))
	case uint16:
		err = w.PutUint(tag, uint64(x))
	case uint32:
		err = w.PutUint(tag, uint64(x))
	case uint64:
		err = w.PutUint(tag, x)
	case float32:
		err = w.PutFloat32(tag, x)
	case float64:
		err = w.PutFloat64(tag, x)
	case string:
		if t.IsString() && !t.info().utf8 {
			err = w.PutBytes(tag, []byte(x))
		} else {
			err = w.PutString(tag, x)
		}
	case []byte:
		err = w.PutBytes(tag, x)
	default:
		return nil, fmt.Errorf("%w: %T for %s", ErrWrongType, v, t)
	}
	if err != nil {
		return nil, err
	}

	r := tlv.NewReader(bytes.NewReader(buf.Bytes()))
	if err := r.Next(); err != nil {
		return nil, err
	}
	return Decode(r, t, nullable, maxLength)
}
