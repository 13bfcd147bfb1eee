package provider

import (
	"github.com/backkem/dmprovider/pkg/acl"
	"github.com/backkem/dmprovider/pkg/datamodel"
)

// aclOracle adapts an acl.Checker to datamodel.AccessChecker.
type aclOracle struct {
	checker *acl.Checker
}

// ACLOracle returns an AccessChecker backed by the access control list in c.
func ACLOracle(c *acl.Checker) datamodel.AccessChecker {
	return aclOracle{checker: c}
}

func (o aclOracle) Check(subject datamodel.SubjectDescriptor, path datamodel.RequestPath, priv datamodel.Privilege) bool {
	return o.checker.Check(subject, path, priv) == acl.ResultAllowed
}
