package message

import (
	"github.com/backkem/dmprovider/pkg/tlv"
)

// AttributeDataIB carries one attribute value, or one list element, in a
// report.
// Spec: Section 10.6.4
// Container type: Structure
type AttributeDataIB struct {
	DataVersion DataVersion     // Tag 0
	Path        AttributePathIB // Tag 1
	Data        []byte          // Tag 2, raw TLV with an anonymous tag
}

const (
	attrDataTagDataVersion = 0
	attrDataTagPath        = 1
	attrDataTagData        = 2
)

// DataTag is the tag under which the value follows EncodeHeader.
func (a *AttributeDataIB) DataTag() tlv.Tag {
	return tlv.ContextTag(attrDataTagData)
}

// EncodeHeader opens the structure and writes the version and path. The
// caller writes the value under DataTag and closes the structure.
func (a *AttributeDataIB) EncodeHeader(w *tlv.Writer, tag tlv.Tag) error {
	if err := w.StartStructure(tag); err != nil {
		return err
	}
	if err := w.PutUint(tlv.ContextTag(attrDataTagDataVersion), uint64(a.DataVersion)); err != nil {
		return err
	}
	return a.Path.EncodeWithTag(w, tlv.ContextTag(attrDataTagPath))
}

// EncodeWithTag writes the complete structure with Data re-tagged in place.
func (a *AttributeDataIB) EncodeWithTag(w *tlv.Writer, tag tlv.Tag) error {
	if err := a.EncodeHeader(w, tag); err != nil {
		return err
	}
	if err := w.PutRaw(a.DataTag(), a.Data); err != nil {
		return err
	}
	return w.EndContainer()
}

// DecodeFrom reads the structure. The reader must be positioned on it.
// Data is returned re-encoded with an anonymous tag.
func (a *AttributeDataIB) DecodeFrom(r *tlv.Reader) error {
	if r.Type() != tlv.ElementTypeStruct {
		return ErrInvalidType
	}
	if err := r.EnterContainer(); err != nil {
		return err
	}

	var hasVersion, hasPath bool
	for {
		if err := r.Next(); err != nil {
			return err
		}
		if r.IsEndOfContainer() {
			break
		}
		if !r.Tag().IsContext() {
			if err := r.Skip(); err != nil {
				return err
			}
			continue
		}
		switch r.Tag().TagNumber() {
		case attrDataTagDataVersion:
			v, err := r.Uint()
			if err != nil {
				return err
			}
			a.DataVersion = DataVersion(v)
			hasVersion = true
		case attrDataTagPath:
			if err := a.Path.DecodeFrom(r); err != nil {
				return err
			}
			hasPath = true
		case attrDataTagData:
			raw, err := r.RawBytes()
			if err != nil {
				return err
			}
			a.Data = anonymize(raw)
		default:
			if err := r.Skip(); err != nil {
				return err
			}
		}
	}
	if err := r.ExitContainer(); err != nil {
		return err
	}
	if !hasVersion || !hasPath {
		return ErrMissingField
	}
	return nil
}

// anonymize drops the tag of a raw element so it can be decoded standalone.
func anonymize(raw []byte) []byte {
	elemType, ctrl := tlv.ParseControlOctet(raw[0])
	out := []byte{tlv.BuildControlOctet(elemType, tlv.TagControlAnonymous)}
	return append(out, raw[1+ctrl.Size():]...)
}
