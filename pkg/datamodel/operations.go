package datamodel

// SubjectDescriptor identifies the requester. The provider does not inspect
// it; it is passed to the AccessChecker unchanged.
type SubjectDescriptor struct {
	FabricIndex FabricIndex
	AuthMode    AuthMode

	// Subject is the operational node ID (CASE), the PAKE key ID (PASE) or
	// the group ID (Group).
	Subject uint64

	// Groups lists the groups the requester is a member of.
	Groups []GroupID

	// IsCommissioning is set for PASE sessions during commissioning.
	IsCommissioning bool
}

// OperationFlags are flags common to all operations.
type OperationFlags uint32

const (
	// OpFlagInternal marks an operation initiated by the node itself. It
	// bypasses access control and the read-only check on writes.
	OpFlagInternal OperationFlags = 1 << iota
)

func (f OperationFlags) Has(flag OperationFlags) bool {
	return f&flag != 0
}

// WriteFlags are flags specific to writes.
type WriteFlags uint32

const (
	// WriteFlagTimed marks a write that is part of a timed interaction.
	WriteFlagTimed WriteFlags = 1 << iota
)

func (f WriteFlags) Has(flag WriteFlags) bool {
	return f&flag != 0
}

// InvokeFlags are flags specific to invokes.
type InvokeFlags uint32

const (
	InvokeFlagTimed InvokeFlags = 1 << iota
)

func (f InvokeFlags) Has(flag InvokeFlags) bool {
	return f&flag != 0
}

// ReadAttributeRequest contains parameters for reading an attribute.
type ReadAttributeRequest struct {
	Path           ConcreteReadAttributePath
	OperationFlags OperationFlags

	// Subject is nil for requests that carry no requester identity; access
	// control is then skipped.
	Subject *SubjectDescriptor
}

func (r *ReadAttributeRequest) IsInternal() bool {
	return r.OperationFlags.Has(OpFlagInternal)
}

// WriteAttributeRequest contains parameters for writing an attribute.
type WriteAttributeRequest struct {
	Path           ConcreteDataAttributePath
	OperationFlags OperationFlags
	WriteFlags     WriteFlags
	Subject        *SubjectDescriptor

	// DataVersion is the expected cluster data version. nil skips the check.
	DataVersion *DataVersion
}

func (r *WriteAttributeRequest) IsTimed() bool {
	return r.WriteFlags.Has(WriteFlagTimed)
}

func (r *WriteAttributeRequest) IsInternal() bool {
	return r.OperationFlags.Has(OpFlagInternal)
}

// IsListOperation reports whether the write targets a single list item.
func (r *WriteAttributeRequest) IsListOperation() bool {
	return r.Path.ListIndex != nil
}

// InvokeRequest contains parameters for invoking a command.
type InvokeRequest struct {
	Path           ConcreteCommandPath
	OperationFlags OperationFlags
	InvokeFlags    InvokeFlags
	Subject        *SubjectDescriptor
}

func (r *InvokeRequest) IsTimed() bool {
	return r.InvokeFlags.Has(InvokeFlagTimed)
}

// RequestType is the kind of operation an access check is made for.
type RequestType int

const (
	RequestTypeUnknown RequestType = iota
	RequestTypeAttributeRead
	RequestTypeAttributeWrite
	RequestTypeCommandInvoke
)

// RequestPath is the target of an access check.
type RequestPath struct {
	Endpoint    EndpointID
	Cluster     ClusterID
	RequestType RequestType

	// EntityID is the attribute or command ID.
	EntityID uint32
}
