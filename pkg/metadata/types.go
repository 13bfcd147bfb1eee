// Package metadata holds the static data model of a node: its endpoints, the
// clusters on each endpoint, and the attributes and commands of each cluster.
//
// A Registry is built once, validated, and then read concurrently. It never
// changes after construction. Declaration order is preserved and defines
// iteration order.
package metadata

import (
	"github.com/backkem/dmprovider/pkg/codec"
	"github.com/backkem/dmprovider/pkg/datamodel"
)

// Attribute is a declared (non-global) attribute.
type Attribute struct {
	ID        datamodel.AttributeID
	Type      codec.AttributeType
	MaxLength uint16
	Quality   datamodel.AttributeQuality

	// ReadPrivilege is nil for write-only attributes. WritePrivilege is nil
	// for read-only attributes.
	ReadPrivilege  *datamodel.Privilege
	WritePrivilege *datamodel.Privilege

	// Default is the initial storage value, as accepted by codec.FromValue.
	// A nil Default starts nullable attributes at null and all others at
	// zero or empty.
	Default any
}

// Info returns the attribute metadata as seen by the provider.
func (a *Attribute) Info() datamodel.AttributeInfo {
	return datamodel.AttributeInfo{
		Type:           a.Type,
		Quality:        a.Quality,
		MaxLength:      a.MaxLength,
		ReadPrivilege:  a.ReadPrivilege,
		WritePrivilege: a.WritePrivilege,
	}
}

// Command is an accepted command.
type Command struct {
	ID              datamodel.CommandID
	Quality         datamodel.CommandQuality
	InvokePrivilege datamodel.Privilege
}

func (c *Command) Info() datamodel.CommandInfo {
	return datamodel.CommandInfo{Quality: c.Quality, InvokePrivilege: c.InvokePrivilege}
}

// Cluster is a cluster instance on one endpoint.
type Cluster struct {
	ID         datamodel.ClusterID
	Revision   uint16
	FeatureMap uint32
	Quality    datamodel.ClusterQuality

	Attributes        []Attribute
	AcceptedCommands  []Command
	GeneratedCommands []datamodel.CommandID

	attrIndex      map[datamodel.AttributeID]int
	acceptedIndex  map[datamodel.CommandID]int
	generatedIndex map[datamodel.CommandID]int
}

// Attribute returns the declared attribute id, or nil.
func (c *Cluster) Attribute(id datamodel.AttributeID) *Attribute {
	if i, ok := c.attrIndex[id]; ok {
		return &c.Attributes[i]
	}
	return nil
}

// AttributeIndex returns the declaration index of id, or -1.
func (c *Cluster) AttributeIndex(id datamodel.AttributeID) int {
	if i, ok := c.attrIndex[id]; ok {
		return i
	}
	return -1
}

// AcceptedCommand returns the accepted command id, or nil.
func (c *Cluster) AcceptedCommand(id datamodel.CommandID) *Command {
	if i, ok := c.acceptedIndex[id]; ok {
		return &c.AcceptedCommands[i]
	}
	return nil
}

func (c *Cluster) AcceptedCommandIndex(id datamodel.CommandID) int {
	if i, ok := c.acceptedIndex[id]; ok {
		return i
	}
	return -1
}

func (c *Cluster) GeneratedCommandIndex(id datamodel.CommandID) int {
	if i, ok := c.generatedIndex[id]; ok {
		return i
	}
	return -1
}

// DeviceType is a device type hosted on an endpoint.
type DeviceType struct {
	ID       datamodel.DeviceTypeID
	Revision uint8
}

// Endpoint is an endpoint with its clusters in declaration order.
type Endpoint struct {
	ID          datamodel.EndpointID
	ParentID    datamodel.EndpointID
	Composition datamodel.EndpointComposition
	DeviceTypes []DeviceType
	Clusters    []Cluster

	clusterIndex map[datamodel.ClusterID]int
}

// Entry returns the endpoint as seen by iteration.
func (e *Endpoint) Entry() datamodel.EndpointEntry {
	return datamodel.EndpointEntry{ID: e.ID, ParentID: e.ParentID, Composition: e.Composition}
}

// Cluster returns the cluster id on this endpoint, or nil.
func (e *Endpoint) Cluster(id datamodel.ClusterID) *Cluster {
	if i, ok := e.clusterIndex[id]; ok {
		return &e.Clusters[i]
	}
	return nil
}

func (e *Endpoint) ClusterIndex(id datamodel.ClusterID) int {
	if i, ok := e.clusterIndex[id]; ok {
		return i
	}
	return -1
}

// HasDeviceType reports whether the endpoint hosts the device type.
func (e *Endpoint) HasDeviceType(id datamodel.DeviceTypeID) bool {
	for _, dt := range e.DeviceTypes {
		if dt.ID == id {
			return true
		}
	}
	return false
}
