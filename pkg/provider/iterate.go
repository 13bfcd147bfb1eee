package provider

import (
	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/metadata"
)

// Iteration walks the registry in declaration order. Next* re-derives the
// successor of the given path on every call, so iteration holds no state and
// an unknown path simply ends it.

// FirstEndpoint returns the first endpoint, or InvalidEndpointID if there
// are none.
func (p *Provider) FirstEndpoint() datamodel.EndpointID {
	eps := p.reg.Endpoints()
	if len(eps) == 0 {
		return datamodel.InvalidEndpointID
	}
	return eps[0].ID
}

// NextEndpoint returns the endpoint after id, or InvalidEndpointID.
func (p *Provider) NextEndpoint(id datamodel.EndpointID) datamodel.EndpointID {
	eps := p.reg.Endpoints()
	i := p.reg.EndpointIndex(id)
	if i < 0 || i+1 >= len(eps) {
		return datamodel.InvalidEndpointID
	}
	return eps[i+1].ID
}

// GetEndpointInfo returns the endpoint entry for id.
func (p *Provider) GetEndpointInfo(id datamodel.EndpointID) (datamodel.EndpointEntry, bool) {
	ep := p.reg.Endpoint(id)
	if ep == nil {
		return datamodel.EndpointEntry{}, false
	}
	return ep.Entry(), true
}

// DeviceTypes returns the device types hosted on an endpoint.
func (p *Provider) DeviceTypes(id datamodel.EndpointID) []datamodel.DeviceTypeEntry {
	ep := p.reg.Endpoint(id)
	if ep == nil {
		return nil
	}
	out := make([]datamodel.DeviceTypeEntry, len(ep.DeviceTypes))
	for i, dt := range ep.DeviceTypes {
		out[i] = datamodel.DeviceTypeEntry{DeviceType: dt.ID, Revision: dt.Revision}
	}
	return out
}

// FirstCluster returns the first cluster on an endpoint. The entry's path
// is invalid if the endpoint is unknown or has no clusters.
func (p *Provider) FirstCluster(endpoint datamodel.EndpointID) datamodel.ClusterEntry {
	ep := p.reg.Endpoint(endpoint)
	if ep == nil || len(ep.Clusters) == 0 {
		return datamodel.ClusterEntry{Path: datamodel.InvalidClusterPath}
	}
	return p.clusterEntry(endpoint, &ep.Clusters[0])
}

// NextCluster returns the cluster after path on the same endpoint.
func (p *Provider) NextCluster(path datamodel.ConcreteClusterPath) datamodel.ClusterEntry {
	ep := p.reg.Endpoint(path.Endpoint)
	if ep == nil {
		return datamodel.ClusterEntry{Path: datamodel.InvalidClusterPath}
	}
	i := ep.ClusterIndex(path.Cluster)
	if i < 0 || i+1 >= len(ep.Clusters) {
		return datamodel.ClusterEntry{Path: datamodel.InvalidClusterPath}
	}
	return p.clusterEntry(path.Endpoint, &ep.Clusters[i+1])
}

// GetClusterInfo returns the current state of a cluster instance.
func (p *Provider) GetClusterInfo(path datamodel.ConcreteClusterPath) (datamodel.ClusterInfo, bool) {
	c := p.reg.Cluster(path)
	if c == nil {
		return datamodel.ClusterInfo{}, false
	}
	return p.clusterEntry(path.Endpoint, c).Info, true
}

func (p *Provider) clusterEntry(endpoint datamodel.EndpointID, c *metadata.Cluster) datamodel.ClusterEntry {
	path := datamodel.ConcreteClusterPath{Endpoint: endpoint, Cluster: c.ID}
	return datamodel.ClusterEntry{
		Path: path,
		Info: datamodel.ClusterInfo{
			DataVersion: p.cluster(path).dataVersion(),
			Quality:     c.Quality,
		},
	}
}

// FirstAttribute returns the first attribute of a cluster. Globals come
// first, in AttributeList order, followed by the declared attributes.
func (p *Provider) FirstAttribute(path datamodel.ConcreteClusterPath) datamodel.AttributeEntry {
	c := p.reg.Cluster(path)
	if c == nil {
		return datamodel.AttributeEntry{Path: datamodel.InvalidAttributePath}
	}
	return attributeAt(path, c, 0)
}

// NextAttribute returns the attribute after path.
func (p *Provider) NextAttribute(path datamodel.ConcreteAttributePath) datamodel.AttributeEntry {
	c := p.reg.Cluster(path.ClusterPath())
	if c == nil {
		return datamodel.AttributeEntry{Path: datamodel.InvalidAttributePath}
	}
	pos := attributePosition(c, path.Attribute)
	if pos < 0 {
		return datamodel.AttributeEntry{Path: datamodel.InvalidAttributePath}
	}
	return attributeAt(path.ClusterPath(), c, pos+1)
}

// GetAttributeInfo returns the metadata of a declared or global attribute.
func (p *Provider) GetAttributeInfo(path datamodel.ConcreteAttributePath) (datamodel.AttributeInfo, bool) {
	r, err := p.resolveAttribute(path)
	if err != nil {
		return datamodel.AttributeInfo{}, false
	}
	return r.info, true
}

// attributePosition returns the iteration position of id in c, or -1.
func attributePosition(c *metadata.Cluster, id datamodel.AttributeID) int {
	globals := datamodel.GlobalAttributes()
	for i, g := range globals {
		if g.ID == id {
			return i
		}
	}
	if i := c.AttributeIndex(id); i >= 0 {
		return len(globals) + i
	}
	return -1
}

func attributeAt(path datamodel.ConcreteClusterPath, c *metadata.Cluster, pos int) datamodel.AttributeEntry {
	globals := datamodel.GlobalAttributes()
	var id datamodel.AttributeID
	var info datamodel.AttributeInfo
	switch {
	case pos < len(globals):
		id, info = globals[pos].ID, globals[pos].Info
	case pos-len(globals) < len(c.Attributes):
		a := &c.Attributes[pos-len(globals)]
		id, info = a.ID, a.Info()
	default:
		return datamodel.AttributeEntry{Path: datamodel.InvalidAttributePath}
	}
	return datamodel.AttributeEntry{
		Path: datamodel.ConcreteAttributePath{Endpoint: path.Endpoint, Cluster: path.Cluster, Attribute: id},
		Info: info,
	}
}

// FirstAcceptedCommand returns the first command the cluster accepts.
func (p *Provider) FirstAcceptedCommand(path datamodel.ConcreteClusterPath) datamodel.CommandEntry {
	c := p.reg.Cluster(path)
	if c == nil {
		return datamodel.CommandEntry{Path: datamodel.InvalidCommandPath}
	}
	return acceptedAt(path, c, 0)
}

// NextAcceptedCommand returns the accepted command after path.
func (p *Provider) NextAcceptedCommand(path datamodel.ConcreteCommandPath) datamodel.CommandEntry {
	c := p.reg.Cluster(path.ClusterPath())
	if c == nil {
		return datamodel.CommandEntry{Path: datamodel.InvalidCommandPath}
	}
	i := c.AcceptedCommandIndex(path.Command)
	if i < 0 {
		return datamodel.CommandEntry{Path: datamodel.InvalidCommandPath}
	}
	return acceptedAt(path.ClusterPath(), c, i+1)
}

// GetAcceptedCommandInfo returns the metadata of an accepted command.
func (p *Provider) GetAcceptedCommandInfo(path datamodel.ConcreteCommandPath) (datamodel.CommandInfo, bool) {
	cmd, err := p.resolveAcceptedCommand(path)
	if err != nil {
		return datamodel.CommandInfo{}, false
	}
	return cmd.Info(), true
}

func acceptedAt(path datamodel.ConcreteClusterPath, c *metadata.Cluster, i int) datamodel.CommandEntry {
	if i >= len(c.AcceptedCommands) {
		return datamodel.CommandEntry{Path: datamodel.InvalidCommandPath}
	}
	cmd := &c.AcceptedCommands[i]
	return datamodel.CommandEntry{
		Path: datamodel.ConcreteCommandPath{Endpoint: path.Endpoint, Cluster: path.Cluster, Command: cmd.ID},
		Info: cmd.Info(),
	}
}

// FirstGeneratedCommand returns the first command the cluster generates.
func (p *Provider) FirstGeneratedCommand(path datamodel.ConcreteClusterPath) datamodel.ConcreteCommandPath {
	c := p.reg.Cluster(path)
	if c == nil {
		return datamodel.InvalidCommandPath
	}
	return generatedAt(path, c, 0)
}

// NextGeneratedCommand returns the generated command after path.
func (p *Provider) NextGeneratedCommand(path datamodel.ConcreteCommandPath) datamodel.ConcreteCommandPath {
	c := p.reg.Cluster(path.ClusterPath())
	if c == nil {
		return datamodel.InvalidCommandPath
	}
	i := c.GeneratedCommandIndex(path.Command)
	if i < 0 {
		return datamodel.InvalidCommandPath
	}
	return generatedAt(path.ClusterPath(), c, i+1)
}

func generatedAt(path datamodel.ConcreteClusterPath, c *metadata.Cluster, i int) datamodel.ConcreteCommandPath {
	if i >= len(c.GeneratedCommands) {
		return datamodel.InvalidCommandPath
	}
	return datamodel.ConcreteCommandPath{Endpoint: path.Endpoint, Cluster: path.Cluster, Command: c.GeneratedCommands[i]}
}
