// Package datamodel defines the vocabulary of the Matter data model as seen
// by the data-model provider: identifiers and paths, attribute and command
// metadata, request descriptors, the collaborator interfaces the provider
// calls, and the encoder/decoder handed to attribute access interfaces.
//
// Spec References:
//   - Section 7.4: Element hierarchy
//   - Section 7.10: Cluster
//   - Section 7.12: Attribute
//   - Section 7.13: Global Elements
package datamodel

import (
	"fmt"

	"github.com/backkem/dmprovider/pkg/im/message"
)

type (
	NodeID      = message.NodeID
	EndpointID  = message.EndpointID
	ClusterID   = message.ClusterID
	AttributeID = message.AttributeID
	CommandID   = message.CommandID
	ListIndex   = message.ListIndex
	DataVersion = message.DataVersion
	FabricIndex = message.FabricIndex
	GroupID     = message.GroupID
)

// DeviceTypeID is a 32-bit device type identifier.
type DeviceTypeID uint32

// Invalid identifiers. No registry may declare these values, so they mark
// the end of an iteration or an unset path.
const (
	InvalidEndpointID  EndpointID  = 0xFFFF
	InvalidClusterID   ClusterID   = 0xFFFFFFFF
	InvalidAttributeID AttributeID = 0xFFFFFFFF
	InvalidCommandID   CommandID   = 0xFFFFFFFF
)

// ConcreteClusterPath identifies a cluster instance on an endpoint.
type ConcreteClusterPath struct {
	Endpoint EndpointID
	Cluster  ClusterID
}

// InvalidClusterPath is returned when a cluster iteration is exhausted.
var InvalidClusterPath = ConcreteClusterPath{Endpoint: InvalidEndpointID, Cluster: InvalidClusterID}

func (p ConcreteClusterPath) IsValid() bool {
	return p.Endpoint != InvalidEndpointID && p.Cluster != InvalidClusterID
}

func (p ConcreteClusterPath) String() string {
	return fmt.Sprintf("%d/0x%04x", p.Endpoint, p.Cluster)
}

// ConcreteAttributePath identifies a single attribute.
// Spec: Section 8.2.1.1
type ConcreteAttributePath struct {
	Endpoint  EndpointID
	Cluster   ClusterID
	Attribute AttributeID
}

// InvalidAttributePath is returned when an attribute iteration is exhausted.
var InvalidAttributePath = ConcreteAttributePath{
	Endpoint:  InvalidEndpointID,
	Cluster:   InvalidClusterID,
	Attribute: InvalidAttributeID,
}

func (p ConcreteAttributePath) ClusterPath() ConcreteClusterPath {
	return ConcreteClusterPath{Endpoint: p.Endpoint, Cluster: p.Cluster}
}

func (p ConcreteAttributePath) IsValid() bool {
	return p.ClusterPath().IsValid() && p.Attribute != InvalidAttributeID
}

func (p ConcreteAttributePath) String() string {
	return fmt.Sprintf("%d/0x%04x/0x%04x", p.Endpoint, p.Cluster, p.Attribute)
}

// ConcreteReadAttributePath is the path of a read request.
type ConcreteReadAttributePath struct {
	ConcreteAttributePath

	// ListIndex addresses a single list element. nil reads the whole value.
	ListIndex *ListIndex

	// Expanded is set when the path was produced by wildcard expansion rather
	// than addressed directly. Access denials and unsupported reads on
	// expanded paths are silently skipped.
	Expanded bool
}

// ConcreteDataAttributePath is the path of a write request.
type ConcreteDataAttributePath struct {
	ConcreteAttributePath

	// ListIndex is non-nil for list item operations.
	ListIndex *ListIndex
}

// ConcreteCommandPath identifies a single command.
// Spec: Section 8.2.1.2
type ConcreteCommandPath struct {
	Endpoint EndpointID
	Cluster  ClusterID
	Command  CommandID
}

// InvalidCommandPath is returned when a command iteration is exhausted.
var InvalidCommandPath = ConcreteCommandPath{
	Endpoint: InvalidEndpointID,
	Cluster:  InvalidClusterID,
	Command:  InvalidCommandID,
}

func (p ConcreteCommandPath) ClusterPath() ConcreteClusterPath {
	return ConcreteClusterPath{Endpoint: p.Endpoint, Cluster: p.Cluster}
}

func (p ConcreteCommandPath) IsValid() bool {
	return p.ClusterPath().IsValid() && p.Command != InvalidCommandID
}

func (p ConcreteCommandPath) String() string {
	return fmt.Sprintf("%d/0x%04x/cmd 0x%02x", p.Endpoint, p.Cluster, p.Command)
}
