// Package message holds the Interaction Model identifiers, status codes and
// the information blocks the data-model provider produces when it encodes
// attribute reports.
package message

type (
	NodeID      uint64
	EndpointID  uint16
	ClusterID   uint32
	AttributeID uint32
	CommandID   uint32
	GroupID     uint16
	FabricIndex uint8

	// ListIndex addresses a single element of a list attribute.
	ListIndex uint16

	// DataVersion is the per-cluster version reported with attribute data.
	DataVersion uint32
)

// Ptr returns a pointer to v, for filling optional IB fields.
func Ptr[T any](v T) *T {
	return &v
}
