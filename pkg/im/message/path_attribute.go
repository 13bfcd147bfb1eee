package message

import (
	"github.com/backkem/dmprovider/pkg/tlv"
)

// AttributePathIB identifies an attribute, or one element of a list attribute.
// Spec: Section 10.6.2
// Container type: List
type AttributePathIB struct {
	EnableTagCompression *bool        // Tag 0
	Node                 *NodeID      // Tag 1
	Endpoint             *EndpointID  // Tag 2
	Cluster              *ClusterID   // Tag 3
	Attribute            *AttributeID // Tag 4
	ListIndex            *ListIndex   // Tag 5

	// AppendListItem encodes ListIndex as null, which addresses a new
	// element appended to the list. It takes precedence over ListIndex.
	AppendListItem bool
}

const (
	attrPathTagEnableTagCompression = 0
	attrPathTagNode                 = 1
	attrPathTagEndpoint             = 2
	attrPathTagCluster              = 3
	attrPathTagAttribute            = 4
	attrPathTagListIndex            = 5
)

// EncodeWithTag writes the path as a TLV list.
func (p *AttributePathIB) EncodeWithTag(w *tlv.Writer, tag tlv.Tag) error {
	if err := w.StartList(tag); err != nil {
		return err
	}
	if p.EnableTagCompression != nil {
		if err := w.PutBool(tlv.ContextTag(attrPathTagEnableTagCompression), *p.EnableTagCompression); err != nil {
			return err
		}
	}
	uints := []struct {
		tag uint8
		set bool
		val uint64
	}{
		{attrPathTagNode, p.Node != nil, derefUint(p.Node)},
		{attrPathTagEndpoint, p.Endpoint != nil, derefUint(p.Endpoint)},
		{attrPathTagCluster, p.Cluster != nil, derefUint(p.Cluster)},
		{attrPathTagAttribute, p.Attribute != nil, derefUint(p.Attribute)},
	}
	for _, f := range uints {
		if !f.set {
			continue
		}
		if err := w.PutUint(tlv.ContextTag(f.tag), f.val); err != nil {
			return err
		}
	}
	switch {
	case p.AppendListItem:
		if err := w.PutNull(tlv.ContextTag(attrPathTagListIndex)); err != nil {
			return err
		}
	case p.ListIndex != nil:
		if err := w.PutUint(tlv.ContextTag(attrPathTagListIndex), uint64(*p.ListIndex)); err != nil {
			return err
		}
	}
	return w.EndContainer()
}

// DecodeFrom reads the path. The reader must be positioned on the list
// element.
func (p *AttributePathIB) DecodeFrom(r *tlv.Reader) error {
	if r.Type() != tlv.ElementTypeList {
		return ErrInvalidType
	}
	if err := r.EnterContainer(); err != nil {
		return err
	}
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

		var err error
		switch r.Tag().TagNumber() {
		case attrPathTagEnableTagCompression:
			var v bool
			v, err = r.Bool()
			p.EnableTagCompression = &v
		case attrPathTagNode:
			p.Node, err = readUint[NodeID](r)
		case attrPathTagEndpoint:
			p.Endpoint, err = readUint[EndpointID](r)
		case attrPathTagCluster:
			p.Cluster, err = readUint[ClusterID](r)
		case attrPathTagAttribute:
			p.Attribute, err = readUint[AttributeID](r)
		case attrPathTagListIndex:
			if r.IsNull() {
				p.AppendListItem = true
				err = r.Null()
			} else {
				p.ListIndex, err = readUint[ListIndex](r)
			}
		default:
			err = r.Skip()
		}
		if err != nil {
			return err
		}
	}
	return r.ExitContainer()
}

type unsignedID interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func readUint[T unsignedID](r *tlv.Reader) (*T, error) {
	v, err := r.Uint()
	if err != nil {
		return nil, err
	}
	id := T(v)
	return &id, nil
}

func derefUint[T unsignedID](v *T) uint64 {
	if v == nil {
		return 0
	}
	return uint64(*v)
}
