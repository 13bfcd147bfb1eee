package provider

import (
	"context"
	"fmt"

	"github.com/backkem/dmprovider/pkg/codec"
	"github.com/backkem/dmprovider/pkg/datamodel"
)

// WriteAttribute applies the value in dec to one attribute.
//
// On success the cluster's data version is incremented and the listener is
// notified exactly once. A failed write changes nothing and notifies no one.
//
// Spec: Section 8.7.3.2
// C++ Reference: CodegenDataModelProvider::WriteAttribute
func (p *Provider) WriteAttribute(ctx context.Context, req datamodel.WriteAttributeRequest, dec *datamodel.AttributeValueDecoder) error {
	path := req.Path.ConcreteAttributePath

	c, err := p.resolveCluster(path.ClusterPath())
	if err != nil {
		p.debugf("write %s: %v", path, err)
		return err
	}
	if datamodel.IsGlobalAttribute(path.Attribute) {
		p.debugf("write %s: global attribute", path)
		return fmt.Errorf("%w: %s is global", datamodel.ErrUnsupportedWrite, path)
	}
	attr := c.Attribute(path.Attribute)
	if attr == nil {
		p.debugf("write %s: unknown attribute", path)
		return fmt.Errorf("%w: %s", datamodel.ErrUnsupportedAttribute, path)
	}
	info := attr.Info()

	if !info.IsWritable() && !req.IsInternal() {
		p.debugf("write %s: read-only", path)
		return fmt.Errorf("%w: %s is read-only", datamodel.ErrUnsupportedWrite, path)
	}
	if info.RequiresTimed() && !req.IsTimed() {
		p.debugf("write %s: needs timed interaction", path)
		return fmt.Errorf("%w: %s", datamodel.ErrNeedsTimedInteraction, path)
	}

	state := p.cluster(path.ClusterPath())
	state.mu.Lock()
	defer state.mu.Unlock()

	if req.DataVersion != nil && *req.DataVersion != state.dataVersion() {
		p.debugf("write %s: data version %d, current %d", path, *req.DataVersion, state.dataVersion())
		return fmt.Errorf("%w: %s", datamodel.ErrDataVersionMismatch, path)
	}

	priv := datamodel.PrivilegeOperate
	if info.WritePrivilege != nil {
		priv = *info.WritePrivilege
	}
	rp := datamodel.RequestPath{
		Endpoint:    path.Endpoint,
		Cluster:     path.Cluster,
		RequestType: datamodel.RequestTypeAttributeWrite,
		EntityID:    uint32(path.Attribute),
	}
	if !p.allowed(req.Subject, req.IsInternal(), rp, priv) {
		p.debugf("write %s: access denied", path)
		return fmt.Errorf("%w: %s", datamodel.ErrUnsupportedAccess, path)
	}

	if aai := p.attributeAccess(path.ClusterPath()); aai != nil {
		if out := aai.Write(ctx, req.Path, dec); out.IsHandled() {
			if err := out.Err(); err != nil {
				p.debugf("write %s: %v", path, err)
				return err
			}
			p.changed(state, path)
			return nil
		}
	}

	if req.IsListOperation() || info.IsList() || !info.Type.HasStorage() {
		p.debugf("write %s: no access interface for %s attribute", path, info.Type)
		return fmt.Errorf("%w: %s", datamodel.ErrUnsupportedWrite, path)
	}

	r, err := dec.Reader()
	if err != nil {
		p.debugf("write %s: %v", path, err)
		return fmt.Errorf("%w: %v", codec.ErrWrongType, err)
	}
	data, err := codec.Decode(r, info.Type, info.IsNullable(), info.MaxLength)
	if err != nil {
		p.debugf("write %s: %v", path, err)
		return err
	}
	if err := p.store.WriteRaw(path, data, info.Type); err != nil {
		p.warnf("write %s: storage: %v", path, err)
		return err
	}

	p.changed(state, path)
	return nil
}

// changed records a successful write. The caller holds state.mu.
func (p *Provider) changed(state *clusterState, path datamodel.ConcreteAttributePath) {
	state.version.Add(1)
	p.listener.MarkDirty(path)
}
