package datamodel

import "github.com/backkem/dmprovider/pkg/codec"

// AttributeInfo is the immutable metadata of an attribute.
// C++ Reference: MetadataTypes.h::AttributeEntry
type AttributeInfo struct {
	Type    codec.AttributeType
	Quality AttributeQuality

	// MaxLength is the maximum payload length of string types.
	MaxLength uint16

	// ReadPrivilege is nil for write-only attributes.
	ReadPrivilege *Privilege

	// WritePrivilege is nil for read-only attributes.
	WritePrivilege *Privilege
}

func (a AttributeInfo) IsReadable() bool  { return a.ReadPrivilege != nil }
func (a AttributeInfo) IsWritable() bool  { return a.WritePrivilege != nil }
func (a AttributeInfo) IsNullable() bool  { return a.Quality&AttrQualityNullable != 0 }
func (a AttributeInfo) RequiresTimed() bool {
	return a.Quality&AttrQualityTimed != 0
}

// IsList reports whether the attribute is a list, by quality or by type.
func (a AttributeInfo) IsList() bool {
	return a.Quality&AttrQualityList != 0 || a.Type.IsList()
}

// AttributeEntry is an attribute returned by iteration.
type AttributeEntry struct {
	Path ConcreteAttributePath
	Info AttributeInfo
}

// ClusterInfo is the mutable state of a cluster instance.
type ClusterInfo struct {
	DataVersion DataVersion
	Quality     ClusterQuality
}

// ClusterEntry is a cluster returned by iteration. An exhausted iteration
// returns an entry whose path is not valid.
type ClusterEntry struct {
	Path ConcreteClusterPath
	Info ClusterInfo
}

// CommandInfo is the metadata of an accepted command.
// C++ Reference: MetadataTypes.h::AcceptedCommandEntry
type CommandInfo struct {
	Quality         CommandQuality
	InvokePrivilege Privilege
}

func (c CommandInfo) RequiresTimed() bool {
	return c.Quality&CmdQualityTimed != 0
}

// CommandEntry is an accepted command returned by iteration.
type CommandEntry struct {
	Path ConcreteCommandPath
	Info CommandInfo
}

// DeviceTypeEntry is a device type hosted on an endpoint.
type DeviceTypeEntry struct {
	DeviceType DeviceTypeID
	Revision   uint8
}

// EndpointEntry describes an endpoint.
// C++ Reference: MetadataTypes.h::EndpointEntry
type EndpointEntry struct {
	ID          EndpointID
	ParentID    EndpointID
	Composition EndpointComposition
}
