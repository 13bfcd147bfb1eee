package metadata

import (
	"errors"
	"fmt"

	"github.com/backkem/dmprovider/pkg/codec"
	"github.com/backkem/dmprovider/pkg/datamodel"
)

// Errors returned when building a registry.
var (
	ErrInvalidRegistry = errors.New("metadata: invalid registry")
	ErrDuplicateID     = errors.New("metadata: duplicate id")
)

// Registry is the validated, immutable metadata table of a node.
type Registry struct {
	endpoints     []Endpoint
	endpointIndex map[datamodel.EndpointID]int
}

// NewRegistry validates endpoints and builds a registry over a private copy
// of them.
func NewRegistry(endpoints []Endpoint) (*Registry, error) {
	r := &Registry{
		endpoints:     make([]Endpoint, len(endpoints)),
		endpointIndex: make(map[datamodel.EndpointID]int, len(endpoints)),
	}
	for i := range endpoints {
		ep := cloneEndpoint(&endpoints[i])
		if ep.ID == datamodel.InvalidEndpointID {
			return nil, fmt.Errorf("%w: endpoint id 0x%04x is reserved", ErrInvalidRegistry, ep.ID)
		}
		if _, dup := r.endpointIndex[ep.ID]; dup {
			return nil, fmt.Errorf("%w: endpoint %d", ErrDuplicateID, ep.ID)
		}
		if err := indexEndpoint(&ep); err != nil {
			return nil, err
		}
		r.endpoints[i] = ep
		r.endpointIndex[ep.ID] = i
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error. It is meant for
// tables declared as Go literals.
func MustNewRegistry(endpoints []Endpoint) *Registry {
	r, err := NewRegistry(endpoints)
	if err != nil {
		panic(err)
	}
	return r
}

func cloneEndpoint(src *Endpoint) Endpoint {
	ep := *src
	ep.DeviceTypes = append([]DeviceType(nil), src.DeviceTypes...)
	ep.Clusters = make([]Cluster, len(src.Clusters))
	for i := range src.Clusters {
		c := src.Clusters[i]
		c.Attributes = append([]Attribute(nil), c.Attributes...)
		c.AcceptedCommands = append([]Command(nil), c.AcceptedCommands...)
		c.GeneratedCommands = append([]datamodel.CommandID(nil), c.GeneratedCommands...)
		ep.Clusters[i] = c
	}
	return ep
}

func indexEndpoint(ep *Endpoint) error {
	ep.clusterIndex = make(map[datamodel.ClusterID]int, len(ep.Clusters))
	for i := range ep.Clusters {
		c := &ep.Clusters[i]
		if c.ID == datamodel.InvalidClusterID {
			return fmt.Errorf("%w: endpoint %d: cluster id 0x%08x is reserved", ErrInvalidRegistry, ep.ID, c.ID)
		}
		if _, dup := ep.clusterIndex[c.ID]; dup {
			return fmt.Errorf("%w: endpoint %d: cluster 0x%04x", ErrDuplicateID, ep.ID, c.ID)
		}
		if err := indexCluster(c); err != nil {
			return fmt.Errorf("endpoint %d: cluster 0x%04x: %w", ep.ID, c.ID, err)
		}
		ep.clusterIndex[c.ID] = i
	}
	return nil
}

func indexCluster(c *Cluster) error {
	c.attrIndex = make(map[datamodel.AttributeID]int, len(c.Attributes))
	for i := range c.Attributes {
		a := &c.Attributes[i]
		if err := validateAttribute(a); err != nil {
			return err
		}
		if _, dup := c.attrIndex[a.ID]; dup {
			return fmt.Errorf("%w: attribute 0x%04x", ErrDuplicateID, a.ID)
		}
		c.attrIndex[a.ID] = i
	}

	c.acceptedIndex = make(map[datamodel.CommandID]int, len(c.AcceptedCommands))
	for i, cmd := range c.AcceptedCommands {
		if cmd.ID == datamodel.InvalidCommandID {
			return fmt.Errorf("%w: accepted command id is reserved", ErrInvalidRegistry)
		}
		if !cmd.InvokePrivilege.IsValid() {
			return fmt.Errorf("%w: command 0x%02x: invalid invoke privilege", ErrInvalidRegistry, cmd.ID)
		}
		if _, dup := c.acceptedIndex[cmd.ID]; dup {
			return fmt.Errorf("%w: accepted command 0x%02x", ErrDuplicateID, cmd.ID)
		}
		c.acceptedIndex[cmd.ID] = i
	}

	c.generatedIndex = make(map[datamodel.CommandID]int, len(c.GeneratedCommands))
	for i, id := range c.GeneratedCommands {
		if id == datamodel.InvalidCommandID {
			return fmt.Errorf("%w: generated command id is reserved", ErrInvalidRegistry)
		}
		if _, dup := c.generatedIndex[id]; dup {
			return fmt.Errorf("%w: generated command 0x%02x", ErrDuplicateID, id)
		}
		c.generatedIndex[id] = i
	}
	return nil
}

func validateAttribute(a *Attribute) error {
	switch {
	case a.ID == datamodel.InvalidAttributeID:
		return fmt.Errorf("%w: attribute id is reserved", ErrInvalidRegistry)
	case datamodel.IsGlobalAttribute(a.ID):
		return fmt.Errorf("%w: attribute 0x%04x is global", ErrInvalidRegistry, a.ID)
	case !a.Type.IsValid():
		return fmt.Errorf("%w: attribute 0x%04x: invalid type", ErrInvalidRegistry, a.ID)
	case a.ReadPrivilege != nil && !a.ReadPrivilege.IsValid():
		return fmt.Errorf("%w: attribute 0x%04x: invalid read privilege", ErrInvalidRegistry, a.ID)
	case a.WritePrivilege != nil && !a.WritePrivilege.IsValid():
		return fmt.Errorf("%w: attribute 0x%04x: invalid write privilege", ErrInvalidRegistry, a.ID)
	}

	if a.Type.IsString() {
		// The all-ones length prefix is the null marker.
		limit := uint64(1)<<(8*a.Type.Width()) - 1
		if uint64(a.MaxLength) >= limit {
			return fmt.Errorf("%w: attribute 0x%04x: max length %d exceeds %d", ErrInvalidRegistry, a.ID, a.MaxLength, limit-1)
		}
	}

	if a.Default == nil {
		return nil
	}
	if !a.Type.HasStorage() {
		return fmt.Errorf("%w: attribute 0x%04x: %s has no default", ErrInvalidRegistry, a.ID, a.Type)
	}
	nullable := a.Quality&datamodel.AttrQualityNullable != 0
	if _, err := codec.FromValue(a.Type, nullable, a.MaxLength, a.Default); err != nil {
		return fmt.Errorf("%w: attribute 0x%04x: default: %v", ErrInvalidRegistry, a.ID, err)
	}
	return nil
}

// Endpoints returns the endpoints in declaration order. The slice must not
// be modified.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}

// Endpoint returns endpoint id, or nil.
func (r *Registry) Endpoint(id datamodel.EndpointID) *Endpoint {
	if i, ok := r.endpointIndex[id]; ok {
		return &r.endpoints[i]
	}
	return nil
}

// EndpointIndex returns the declaration index of id, or -1.
func (r *Registry) EndpointIndex(id datamodel.EndpointID) int {
	if i, ok := r.endpointIndex[id]; ok {
		return i
	}
	return -1
}

// Cluster returns the cluster at path, or nil.
func (r *Registry) Cluster(path datamodel.ConcreteClusterPath) *Cluster {
	ep := r.Endpoint(path.Endpoint)
	if ep == nil {
		return nil
	}
	return ep.Cluster(path.Cluster)
}

// Attribute returns the declared attribute at path, or nil. Global
// attributes are never declared.
func (r *Registry) Attribute(path datamodel.ConcreteAttributePath) *Attribute {
	c := r.Cluster(path.ClusterPath())
	if c == nil {
		return nil
	}
	return c.Attribute(path.Attribute)
}

// IsDeviceTypeOnEndpoint resolves device-type access control targets.
func (r *Registry) IsDeviceTypeOnEndpoint(deviceType uint32, endpoint uint16) bool {
	ep := r.Endpoint(datamodel.EndpointID(endpoint))
	return ep != nil && ep.HasDeviceType(datamodel.DeviceTypeID(deviceType))
}

// ForEachAttribute calls fn for every declared attribute in declaration
// order.
func (r *Registry) ForEachAttribute(fn func(path datamodel.ConcreteAttributePath, a *Attribute)) {
	for i := range r.endpoints {
		ep := &r.endpoints[i]
		for j := range ep.Clusters {
			c := &ep.Clusters[j]
			for k := range c.Attributes {
				a := &c.Attributes[k]
				fn(datamodel.ConcreteAttributePath{Endpoint: ep.ID, Cluster: c.ID, Attribute: a.ID}, a)
			}
		}
	}
}
