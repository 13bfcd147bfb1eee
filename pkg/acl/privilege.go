package acl

import "github.com/backkem/dmprovider/pkg/datamodel"

// Grants reports whether an entry holding granted satisfies a request for
// requested. Higher privileges subsume lower ones; ProxyView implies only
// View and is implied only by Administer.
// Spec: Section 6.6.2.2
func Grants(granted, requested datamodel.Privilege) bool {
	switch granted {
	case datamodel.PrivilegeView:
		return requested == datamodel.PrivilegeView
	case datamodel.PrivilegeProxyView:
		return requested == datamodel.PrivilegeProxyView || requested == datamodel.PrivilegeView
	case datamodel.PrivilegeOperate, datamodel.PrivilegeManage:
		return requested != datamodel.PrivilegeProxyView && requested.IsValid() && requested <= granted
	case datamodel.PrivilegeAdminister:
		return requested.IsValid()
	}
	return false
}

// Result is the outcome of a check.
type Result uint8

const (
	ResultDenied Result = iota
	ResultAllowed
)

func (r Result) String() string {
	if r == ResultAllowed {
		return "Allowed"
	}
	return "Denied"
}
