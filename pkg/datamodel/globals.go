package datamodel

import "github.com/backkem/dmprovider/pkg/codec"

// Global attribute IDs.
// Spec: Section 7.13, Table 93
const (
	GlobalAttrClusterRevision      AttributeID = 0xFFFD
	GlobalAttrFeatureMap           AttributeID = 0xFFFC
	GlobalAttrAttributeList        AttributeID = 0xFFFB
	GlobalAttrEventList            AttributeID = 0xFFFA
	GlobalAttrAcceptedCommandList  AttributeID = 0xFFF9
	GlobalAttrGeneratedCommandList AttributeID = 0xFFF8
)

// IsGlobalAttribute reports whether id is in the global attribute range.
// Global attributes are never writable.
func IsGlobalAttribute(id AttributeID) bool {
	return id >= GlobalAttrGeneratedCommandList && id <= GlobalAttrClusterRevision
}

// GlobalAttribute is one entry of the synthesized global attribute catalog.
type GlobalAttribute struct {
	ID   AttributeID
	Info AttributeInfo
}

func globalInfo(t codec.AttributeType, q AttributeQuality) AttributeInfo {
	return AttributeInfo{Type: t, Quality: AttrQualityFixed | q, ReadPrivilege: PrivilegePtr(PrivilegeView)}
}

// Catalog-only globals: they are served from the cluster's command and
// attribute tables, never from storage.
var catalogOnlyGlobals = []GlobalAttribute{
	{GlobalAttrGeneratedCommandList, globalInfo(codec.TypeArray, AttrQualityList)},
	{GlobalAttrAcceptedCommandList, globalInfo(codec.TypeArray, AttrQualityList)},
	{GlobalAttrAttributeList, globalInfo(codec.TypeArray, AttrQualityList)},
}

// Early globals: their values come from the cluster metadata record.
var earlyGlobals = []GlobalAttribute{
	{GlobalAttrClusterRevision, globalInfo(codec.TypeInt16U, 0)},
	{GlobalAttrFeatureMap, globalInfo(codec.TypeBitmap32, 0)},
}

// GlobalAttributes returns the synthesized attributes in the order they lead
// every AttributeList: the catalog-only globals, then ClusterRevision and
// FeatureMap.
func GlobalAttributes() []GlobalAttribute {
	out := make([]GlobalAttribute, 0, len(catalogOnlyGlobals)+len(earlyGlobals))
	out = append(out, catalogOnlyGlobals...)
	return append(out, earlyGlobals...)
}

// LookupGlobalAttribute returns the catalog entry for id. EventList is in
// the global range but not in the catalog.
func LookupGlobalAttribute(id AttributeID) (AttributeInfo, bool) {
	for _, g := range catalogOnlyGlobals {
		if g.ID == id {
			return g.Info, true
		}
	}
	for _, g := range earlyGlobals {
		if g.ID == id {
			return g.Info, true
		}
	}
	return AttributeInfo{}, false
}
