package provider

import (
	"context"
	"fmt"

	"github.com/backkem/dmprovider/pkg/codec"
	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/tlv"
)

// ReadAttribute encodes the value of one attribute into enc.
//
// Access denials and unsupported reads on expanded paths return nil with
// nothing encoded, so wildcard reads skip them silently. For list
// attributes ErrBufferTooSmall means a valid prefix was encoded and
// enc.State() names where the next read should resume.
//
// Spec: Section 8.4.3.2
// C++ Reference: CodegenDataModelProvider::ReadAttribute
func (p *Provider) ReadAttribute(ctx context.Context, req datamodel.ReadAttributeRequest, enc *datamodel.AttributeValueEncoder) error {
	path := req.Path.ConcreteAttributePath

	r, err := p.resolveAttribute(path)
	if err != nil {
		p.debugf("read %s: %v", path, err)
		return err
	}

	priv := datamodel.PrivilegeView
	if r.info.ReadPrivilege != nil {
		priv = *r.info.ReadPrivilege
	}
	rp := datamodel.RequestPath{
		Endpoint:    path.Endpoint,
		Cluster:     path.Cluster,
		RequestType: datamodel.RequestTypeAttributeRead,
		EntityID:    uint32(path.Attribute),
	}
	if !p.allowed(req.Subject, req.IsInternal(), rp, priv) {
		p.debugf("read %s: access denied", path)
		if req.Path.Expanded {
			return nil
		}
		return fmt.Errorf("%w: %s", datamodel.ErrUnsupportedAccess, path)
	}

	enc.SetDataVersion(p.cluster(path.ClusterPath()).dataVersion())

	if r.isGlobal() {
		return readGlobal(r.cluster, path.Attribute, enc)
	}

	if aai := p.attributeAccess(path.ClusterPath()); aai != nil {
		if out := aai.Read(ctx, req.Path, enc); out.IsHandled() {
			return out.Err()
		}
	}

	if !r.info.IsReadable() || r.info.IsList() || !r.info.Type.HasStorage() {
		p.debugf("read %s: no access interface for %s attribute", path, r.info.Type)
		if req.Path.Expanded {
			return nil
		}
		return fmt.Errorf("%w: %s", datamodel.ErrUnsupportedRead, path)
	}

	return p.readStorage(path, r.info, enc)
}

// readStorage serves a scalar or string attribute from storage.
func (p *Provider) readStorage(path datamodel.ConcreteAttributePath, info datamodel.AttributeInfo, enc *datamodel.AttributeValueEncoder) error {
	buf := make([]byte, info.Type.StorageSize(info.MaxLength))
	n, t, err := p.store.ReadRaw(path, buf)
	if err != nil {
		p.warnf("read %s: storage: %v", path, err)
		return err
	}
	if t != info.Type {
		p.warnf("read %s: storage holds %s, metadata declares %s", path, t, info.Type)
		return fmt.Errorf("%w: %s type mismatch", datamodel.ErrFailure, path)
	}

	raw := buf[:n]
	nullable := info.IsNullable()
	return enc.Encode(func(w *tlv.Writer, tag tlv.Tag) error {
		return codec.Encode(w, tag, info.Type, nullable, raw)
	})
}
