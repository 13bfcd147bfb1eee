package provider

import (
	"fmt"

	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/metadata"
)

// resolveCluster finds the cluster instance addressed by path.
func (p *Provider) resolveCluster(path datamodel.ConcreteClusterPath) (*metadata.Cluster, error) {
	ep := p.reg.Endpoint(path.Endpoint)
	if ep == nil {
		return nil, fmt.Errorf("%w: %d", datamodel.ErrUnsupportedEndpoint, path.Endpoint)
	}
	c := ep.Cluster(path.Cluster)
	if c == nil {
		return nil, fmt.Errorf("%w: %s", datamodel.ErrUnsupportedCluster, path)
	}
	return c, nil
}

// resolvedAttribute is an attribute found by resolveAttribute. attr is nil
// for globals.
type resolvedAttribute struct {
	cluster *metadata.Cluster
	attr    *metadata.Attribute
	info    datamodel.AttributeInfo
}

func (r *resolvedAttribute) isGlobal() bool { return r.attr == nil }

// resolveAttribute finds a declared attribute or a cataloged global.
func (p *Provider) resolveAttribute(path datamodel.ConcreteAttributePath) (resolvedAttribute, error) {
	c, err := p.resolveCluster(path.ClusterPath())
	if err != nil {
		return resolvedAttribute{}, err
	}
	if a := c.Attribute(path.Attribute); a != nil {
		return resolvedAttribute{cluster: c, attr: a, info: a.Info()}, nil
	}
	if info, ok := datamodel.LookupGlobalAttribute(path.Attribute); ok {
		return resolvedAttribute{cluster: c, info: info}, nil
	}
	return resolvedAttribute{}, fmt.Errorf("%w: %s", datamodel.ErrUnsupportedAttribute, path)
}

// resolveAcceptedCommand finds a command the cluster accepts.
func (p *Provider) resolveAcceptedCommand(path datamodel.ConcreteCommandPath) (*metadata.Command, error) {
	c, err := p.resolveCluster(path.ClusterPath())
	if err != nil {
		return nil, err
	}
	cmd := c.AcceptedCommand(path.Command)
	if cmd == nil {
		return nil, fmt.Errorf("%w: %s", datamodel.ErrUnsupportedCommand, path)
	}
	return cmd, nil
}
