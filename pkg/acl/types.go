package acl

import "github.com/backkem/dmprovider/pkg/datamodel"

// Node ID ranges.
// Spec: Section 2.5.5
const (
	NodeIDMinOperational uint64 = 0x0000_0000_0000_0001
	NodeIDMaxOperational uint64 = 0xFFFF_FFEF_FFFF_FFFF

	NodeIDMinGroup uint64 = 0xFFFF_FFFF_FFFF_0001
	NodeIDMaxGroup uint64 = 0xFFFF_FFFF_FFFF_FFFF

	NodeIDMinPAKE uint64 = 0xFFFF_FFFB_0000_0000
	NodeIDMaxPAKE uint64 = 0xFFFF_FFFB_0000_FFFF
)

func IsOperationalNodeID(id uint64) bool {
	return id >= NodeIDMinOperational && id <= NodeIDMaxOperational
}

func IsGroupNodeID(id uint64) bool {
	return id >= NodeIDMinGroup && id <= NodeIDMaxGroup
}

func IsPAKENodeID(id uint64) bool {
	return id >= NodeIDMinPAKE && id <= NodeIDMaxPAKE
}

// NodeIDFromGroupID returns the group node ID of a group.
func NodeIDFromGroupID(group datamodel.GroupID) uint64 {
	return 0xFFFF_FFFF_FFFF_0000 | uint64(group)
}

// GroupIDFromNodeID returns the group of a group node ID, or 0.
func GroupIDFromNodeID(id uint64) datamodel.GroupID {
	if !IsGroupNodeID(id) {
		return 0
	}
	return datamodel.GroupID(id & 0xFFFF)
}

// Target selects the endpoints and clusters an entry applies to. A nil
// field matches anything. Endpoint and DeviceType are mutually exclusive.
// Spec: Section 9.10.5.5
type Target struct {
	Cluster    *datamodel.ClusterID
	Endpoint   *datamodel.EndpointID
	DeviceType *datamodel.DeviceTypeID
}

func TargetCluster(c datamodel.ClusterID) Target { return Target{Cluster: &c} }

func TargetEndpoint(e datamodel.EndpointID) Target { return Target{Endpoint: &e} }

func TargetDeviceType(d datamodel.DeviceTypeID) Target { return Target{DeviceType: &d} }

func TargetClusterEndpoint(c datamodel.ClusterID, e datamodel.EndpointID) Target {
	return Target{Cluster: &c, Endpoint: &e}
}

func (t Target) IsEmpty() bool {
	return t.Cluster == nil && t.Endpoint == nil && t.DeviceType == nil
}

// Entry grants Privilege to Subjects on Targets within one fabric. Empty
// Subjects matches every CASE or Group subject; empty Targets matches every
// path.
// Spec: Section 9.10.5.6
type Entry struct {
	FabricIndex datamodel.FabricIndex
	Privilege   datamodel.Privilege
	AuthMode    datamodel.AuthMode
	Subjects    []uint64
	Targets     []Target
}
