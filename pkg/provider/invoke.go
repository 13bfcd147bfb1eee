package provider

import (
	"context"
	"fmt"

	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/tlv"
)

// Invoke routes a command to exactly one handler: the one registered for
// the path's cluster if there is one, otherwise handler. r is positioned
// before the command fields. The handler's response and error are returned
// unchanged.
//
// Spec: Section 8.8.3.2
// C++ Reference: CodegenDataModelProvider::InvokeCommand
func (p *Provider) Invoke(ctx context.Context, req datamodel.InvokeRequest, r *tlv.Reader, handler datamodel.CommandHandler) ([]byte, error) {
	path := req.Path

	cmd, err := p.resolveAcceptedCommand(path)
	if err != nil {
		p.debugf("invoke %s: %v", path, err)
		return nil, err
	}

	rp := datamodel.RequestPath{
		Endpoint:    path.Endpoint,
		Cluster:     path.Cluster,
		RequestType: datamodel.RequestTypeCommandInvoke,
		EntityID:    uint32(path.Command),
	}
	if !p.allowed(req.Subject, req.OperationFlags.Has(datamodel.OpFlagInternal), rp, cmd.InvokePrivilege) {
		p.debugf("invoke %s: access denied", path)
		return nil, fmt.Errorf("%w: %s", datamodel.ErrUnsupportedAccess, path)
	}
	if cmd.Info().RequiresTimed() && !req.IsTimed() {
		p.debugf("invoke %s: needs timed interaction", path)
		return nil, fmt.Errorf("%w: %s", datamodel.ErrNeedsTimedInteraction, path)
	}

	if h := p.commandHandler(path.ClusterPath()); h != nil {
		return h.InvokeCommand(ctx, req, r)
	}
	if handler != nil {
		return handler.InvokeCommand(ctx, req, r)
	}
	p.debugf("invoke %s: no handler", path)
	return nil, fmt.Errorf("%w: %s has no handler", datamodel.ErrUnsupportedCommand, path)
}
