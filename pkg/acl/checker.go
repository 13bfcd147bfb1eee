package acl

import (
	"slices"
	"sync"

	"github.com/backkem/dmprovider/pkg/datamodel"
)

// DeviceTypeResolver answers device-type targets. metadata.Registry
// implements it.
type DeviceTypeResolver interface {
	IsDeviceTypeOnEndpoint(deviceType uint32, endpoint uint16) bool
}

// NullDeviceTypeResolver matches no device type.
type NullDeviceTypeResolver struct{}

func (NullDeviceTypeResolver) IsDeviceTypeOnEndpoint(uint32, uint16) bool { return false }

// Checker evaluates requests against a list of entries. It is safe for
// concurrent use.
// Spec: Section 6.6.6.2
type Checker struct {
	mu       sync.RWMutex
	entries  []Entry
	resolver DeviceTypeResolver
}

// NewChecker returns a Checker with no entries. A nil resolver matches no
// device type.
func NewChecker(resolver DeviceTypeResolver) *Checker {
	if resolver == nil {
		resolver = NullDeviceTypeResolver{}
	}
	return &Checker{resolver: resolver}
}

// SetEntries validates and installs entries, replacing the current list.
// Nothing changes if any entry is invalid.
func (c *Checker) SetEntries(entries []Entry) error {
	for i := range entries {
		if err := ValidateEntry(&entries[i]); err != nil {
			return err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = slices.Clone(entries)
	return nil
}

// AddEntry validates and appends an entry.
func (c *Checker) AddEntry(e Entry) error {
	if err := ValidateEntry(&e); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return nil
}

// Entries returns a copy of the installed entries.
func (c *Checker) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.entries)
}

// Check returns ResultAllowed if some entry grants required on path to
// subject.
func (c *Checker) Check(subject datamodel.SubjectDescriptor, path datamodel.RequestPath, required datamodel.Privilege) Result {
	// Spec 6.6.2.9: commissioning PASE sessions bootstrap the ACL.
	if subject.AuthMode == datamodel.AuthModePASE && subject.IsCommissioning {
		return ResultAllowed
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.entries {
		e := &c.entries[i]
		if e.FabricIndex != subject.FabricIndex || e.AuthMode != subject.AuthMode {
			continue
		}
		if !Grants(e.Privilege, required) {
			continue
		}
		if !subjectMatches(e, &subject) || !c.targetMatches(e, &path) {
			continue
		}
		return ResultAllowed
	}
	return ResultDenied
}

func subjectMatches(e *Entry, subject *datamodel.SubjectDescriptor) bool {
	if len(e.Subjects) == 0 {
		return e.AuthMode == datamodel.AuthModeCASE || e.AuthMode == datamodel.AuthModeGroup
	}
	for _, s := range e.Subjects {
		if s == subject.Subject {
			return true
		}
		if e.AuthMode == datamodel.AuthModeGroup && slices.Contains(subject.Groups, GroupIDFromNodeID(s)) {
			return true
		}
	}
	return false
}

func (c *Checker) targetMatches(e *Entry, path *datamodel.RequestPath) bool {
	if len(e.Targets) == 0 {
		return true
	}
	for i := range e.Targets {
		t := &e.Targets[i]
		if t.Cluster != nil && *t.Cluster != path.Cluster {
			continue
		}
		if t.Endpoint != nil && *t.Endpoint != path.Endpoint {
			continue
		}
		if t.DeviceType != nil && !c.resolver.IsDeviceTypeOnEndpoint(uint32(*t.DeviceType), uint16(path.Endpoint)) {
			continue
		}
		return true
	}
	return false
}
