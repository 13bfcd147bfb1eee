package acl

import (
	"errors"
	"fmt"

	"github.com/backkem/dmprovider/pkg/datamodel"
)

// Validation errors.
var (
	ErrInvalidFabricIndex    = errors.New("acl: invalid fabric index")
	ErrInvalidAuthMode       = errors.New("acl: invalid auth mode")
	ErrInvalidPrivilege      = errors.New("acl: invalid privilege")
	ErrGroupAdminister       = errors.New("acl: group auth mode cannot have administer privilege")
	ErrInvalidSubject        = errors.New("acl: invalid subject for auth mode")
	ErrTargetEmpty           = errors.New("acl: target must have at least one field set")
	ErrTargetEndpointAndType = errors.New("acl: target cannot have both endpoint and device type")
	ErrInvalidTarget         = errors.New("acl: invalid target")
)

// ValidateEntry checks an entry before it is installed. Only CASE and Group
// entries are stored; PASE access comes from commissioning.
// C++ Reference: AccessControl::IsValid()
func ValidateEntry(e *Entry) error {
	if e.FabricIndex == 0 || e.FabricIndex == 0xFF {
		return ErrInvalidFabricIndex
	}
	if e.AuthMode != datamodel.AuthModeCASE && e.AuthMode != datamodel.AuthModeGroup {
		return ErrInvalidAuthMode
	}
	if !e.Privilege.IsValid() {
		return ErrInvalidPrivilege
	}
	if e.AuthMode == datamodel.AuthModeGroup && e.Privilege == datamodel.PrivilegeAdminister {
		return ErrGroupAdminister
	}
	for _, s := range e.Subjects {
		if !validSubject(e.AuthMode, s) {
			return fmt.Errorf("%w: 0x%016x", ErrInvalidSubject, s)
		}
	}
	for i := range e.Targets {
		if err := validateTarget(&e.Targets[i]); err != nil {
			return err
		}
	}
	return nil
}

func validSubject(mode datamodel.AuthMode, s uint64) bool {
	switch mode {
	case datamodel.AuthModeCASE:
		return IsOperationalNodeID(s)
	case datamodel.AuthModeGroup:
		return IsGroupNodeID(s)
	case datamodel.AuthModePASE:
		return IsPAKENodeID(s)
	}
	return false
}

func validateTarget(t *Target) error {
	switch {
	case t.IsEmpty():
		return ErrTargetEmpty
	case t.Endpoint != nil && t.DeviceType != nil:
		return ErrTargetEndpointAndType
	case t.Cluster != nil && *t.Cluster == datamodel.InvalidClusterID:
		return fmt.Errorf("%w: wildcard cluster", ErrInvalidTarget)
	case t.Endpoint != nil && *t.Endpoint == datamodel.InvalidEndpointID:
		return fmt.Errorf("%w: wildcard endpoint", ErrInvalidTarget)
	case t.DeviceType != nil && *t.DeviceType&0xFFFF > 0xBFFF:
		return fmt.Errorf("%w: device type 0x%08x", ErrInvalidTarget, *t.DeviceType)
	}
	return nil
}
