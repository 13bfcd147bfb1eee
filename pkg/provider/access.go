package provider

import (
	"fmt"

	"github.com/backkem/dmprovider/pkg/datamodel"
)

// handlerKey addresses a cluster on one endpoint, or on every endpoint when
// wildcard is set.
type handlerKey struct {
	endpoint datamodel.EndpointID
	wildcard bool
	cluster  datamodel.ClusterID
}

func keyFor(endpoint *datamodel.EndpointID, cluster datamodel.ClusterID) handlerKey {
	if endpoint == nil {
		return handlerKey{wildcard: true, cluster: cluster}
	}
	return handlerKey{endpoint: *endpoint, cluster: cluster}
}

// RegisterAttributeAccess installs aai for a cluster. A nil endpoint
// registers it for the cluster on every endpoint; an endpoint-specific
// registration takes precedence over it.
//
// C++ Reference: app/AttributeAccessInterfaceRegistry.h
func (p *Provider) RegisterAttributeAccess(endpoint *datamodel.EndpointID, cluster datamodel.ClusterID, aai datamodel.AttributeAccessInterface) error {
	k := keyFor(endpoint, cluster)
	p.handlersMu.Lock()
	defer p.handlersMu.Unlock()
	if _, ok := p.aais[k]; ok {
		return fmt.Errorf("%w: attribute access for cluster 0x%04x", ErrAlreadyRegistered, cluster)
	}
	p.aais[k] = aai
	return nil
}

// UnregisterAttributeAccess removes a registration made with the same
// endpoint and cluster.
func (p *Provider) UnregisterAttributeAccess(endpoint *datamodel.EndpointID, cluster datamodel.ClusterID) {
	p.handlersMu.Lock()
	defer p.handlersMu.Unlock()
	delete(p.aais, keyFor(endpoint, cluster))
}

// attributeAccess returns the interface serving path, or nil.
func (p *Provider) attributeAccess(path datamodel.ConcreteClusterPath) datamodel.AttributeAccessInterface {
	p.handlersMu.RLock()
	defer p.handlersMu.RUnlock()
	if aai, ok := p.aais[handlerKey{endpoint: path.Endpoint, cluster: path.Cluster}]; ok {
		return aai
	}
	return p.aais[handlerKey{wildcard: true, cluster: path.Cluster}]
}

// RegisterCommandHandler installs h for a cluster. A nil endpoint registers
// it on every endpoint.
//
// C++ Reference: app/CommandHandlerInterfaceRegistry.h
func (p *Provider) RegisterCommandHandler(endpoint *datamodel.EndpointID, cluster datamodel.ClusterID, h datamodel.CommandHandler) error {
	k := keyFor(endpoint, cluster)
	p.handlersMu.Lock()
	defer p.handlersMu.Unlock()
	if _, ok := p.commands[k]; ok {
		return fmt.Errorf("%w: command handler for cluster 0x%04x", ErrAlreadyRegistered, cluster)
	}
	p.commands[k] = h
	return nil
}

func (p *Provider) UnregisterCommandHandler(endpoint *datamodel.EndpointID, cluster datamodel.ClusterID) {
	p.handlersMu.Lock()
	defer p.handlersMu.Unlock()
	delete(p.commands, keyFor(endpoint, cluster))
}

func (p *Provider) commandHandler(path datamodel.ConcreteClusterPath) datamodel.CommandHandler {
	p.handlersMu.RLock()
	defer p.handlersMu.RUnlock()
	if h, ok := p.commands[handlerKey{endpoint: path.Endpoint, cluster: path.Cluster}]; ok {
		return h
	}
	return p.commands[handlerKey{wildcard: true, cluster: path.Cluster}]
}
