package datamodel

import (
	"fmt"
	"strings"
)

// Privilege is an access privilege level.
// Spec: Section 7.6
type Privilege int

const (
	PrivilegeUnknown Privilege = iota
	PrivilegeView
	PrivilegeProxyView
	PrivilegeOperate
	PrivilegeManage
	PrivilegeAdminister
)

var privilegeNames = [...]string{"Unknown", "View", "ProxyView", "Operate", "Manage", "Administer"}

func (p Privilege) String() string {
	if p < 0 || int(p) >= len(privilegeNames) {
		return "Unknown"
	}
	return privilegeNames[p]
}

func (p Privilege) IsValid() bool {
	return p >= PrivilegeView && p <= PrivilegeAdminister
}

// ParsePrivilege looks a privilege up by name, case-insensitively.
func ParsePrivilege(name string) (Privilege, error) {
	for i, n := range privilegeNames[1:] {
		if strings.EqualFold(n, name) {
			return Privilege(i + 1), nil
		}
	}
	return PrivilegeUnknown, fmt.Errorf("datamodel: unknown privilege %q", name)
}

// PrivilegePtr returns a pointer to p, for AttributeInfo privilege fields.
func PrivilegePtr(p Privilege) *Privilege {
	return &p
}

// AttributeQuality holds attribute quality flags.
// Spec: Section 7.7
type AttributeQuality uint32

const (
	// AttrQualityChangesOmitted marks fast-changing data (C).
	AttrQualityChangesOmitted AttributeQuality = 1 << iota
	// AttrQualityFixed marks data that does not change at runtime (F).
	AttrQualityFixed
	// AttrQualityNonVolatile marks data persisted across restarts (N).
	AttrQualityNonVolatile
	// AttrQualityNullable marks a nullable data type (X).
	AttrQualityNullable
	AttrQualityList
	AttrQualityFabricScoped
	AttrQualityFabricSensitive
	// AttrQualityTimed requires writes to be part of a timed interaction.
	AttrQualityTimed
)

var attributeQualityNames = []struct {
	q    AttributeQuality
	name string
}{
	{AttrQualityChangesOmitted, "changes_omitted"},
	{AttrQualityFixed, "fixed"},
	{AttrQualityNonVolatile, "nonvolatile"},
	{AttrQualityNullable, "nullable"},
	{AttrQualityList, "list"},
	{AttrQualityFabricScoped, "fabric_scoped"},
	{AttrQualityFabricSensitive, "fabric_sensitive"},
	{AttrQualityTimed, "timed"},
}

func (q AttributeQuality) String() string {
	var parts []string
	for _, n := range attributeQualityNames {
		if q&n.q != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseAttributeQuality parses a single quality name as printed by String.
func ParseAttributeQuality(name string) (AttributeQuality, error) {
	for _, n := range attributeQualityNames {
		if strings.EqualFold(n.name, name) {
			return n.q, nil
		}
	}
	return 0, fmt.Errorf("datamodel: unknown attribute quality %q", name)
}

// ClusterQuality holds cluster flags reported in ClusterInfo.
type ClusterQuality uint32

const (
	// ClusterQualityDiagnostics marks verbose diagnostics clusters (K).
	ClusterQualityDiagnostics ClusterQuality = 1 << iota
)

// CommandQuality holds command quality flags.
// Spec: Section 7.11
type CommandQuality uint32

const (
	CmdQualityFabricScoped CommandQuality = 1 << iota
	CmdQualityTimed
	CmdQualityLargeMessage
)

// AuthMode is the authentication mode of the session a request arrived on.
// Spec: Section 9.10.5.4
type AuthMode int

const (
	AuthModeUnknown AuthMode = iota
	AuthModePASE
	AuthModeCASE
	AuthModeGroup
)

func (m AuthMode) String() string {
	switch m {
	case AuthModeCASE:
		return "CASE"
	case AuthModePASE:
		return "PASE"
	case AuthModeGroup:
		return "Group"
	default:
		return "Unknown"
	}
}

// EndpointComposition is the composition pattern of an endpoint's children.
// Spec: Section 9.2.1
type EndpointComposition int

const (
	CompositionUnknown EndpointComposition = iota
	CompositionTree
	CompositionFullFamily
)
