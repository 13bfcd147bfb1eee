package provider

import (
	"fmt"
	"testing"

	"github.com/backkem/dmprovider/pkg/datamodel"
)

func TestEndpointIteration(t *testing.T) {
	f := newFixture(t, nil)

	var got []datamodel.EndpointID
	for ep := f.p.FirstEndpoint(); ep != datamodel.InvalidEndpointID; ep = f.p.NextEndpoint(ep) {
		got = append(got, ep)
	}
	if fmt.Sprint(got) != "[0 1 2]" {
		t.Errorf("endpoints = %v, want [0 1 2]", got)
	}
	if next := f.p.NextEndpoint(42); next != datamodel.InvalidEndpointID {
		t.Errorf("NextEndpoint(42) = %d, want invalid", next)
	}

	entry, ok := f.p.GetEndpointInfo(1)
	if !ok || entry.ParentID != 0 {
		t.Errorf("GetEndpointInfo(1) = %+v, %v", entry, ok)
	}
	dts := f.p.DeviceTypes(1)
	if len(dts) != 1 || dts[0].DeviceType != 0x0100 {
		t.Errorf("DeviceTypes(1) = %+v, want on/off light", dts)
	}
}

func TestEmptyRegistryIteration(t *testing.T) {
	p, err := New(Config{Registry: emptyRegistry(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ep := p.FirstEndpoint(); ep != datamodel.InvalidEndpointID {
		t.Errorf("FirstEndpoint() = %d, want invalid", ep)
	}
	if c := p.FirstCluster(0); c.Path.IsValid() {
		t.Errorf("FirstCluster(0) = %v, want invalid", c.Path)
	}
}

func TestClusterIteration(t *testing.T) {
	f := newFixture(t, nil)

	var got []datamodel.ClusterID
	for c := f.p.FirstCluster(1); c.Path.IsValid(); c = f.p.NextCluster(c.Path) {
		got = append(got, c.Path.Cluster)
	}
	want := []datamodel.ClusterID{clusterOnOff, clusterTest}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("clusters on endpoint 1 = %v, want %v", got, want)
	}

	tests := []struct {
		name string
		path datamodel.ConcreteClusterPath
	}{
		{"unknown endpoint", datamodel.ConcreteClusterPath{Endpoint: 9, Cluster: clusterOnOff}},
		{"unknown cluster", datamodel.ConcreteClusterPath{Endpoint: 1, Cluster: clusterAbsent}},
		{"last cluster", datamodel.ConcreteClusterPath{Endpoint: 1, Cluster: clusterTest}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if next := f.p.NextCluster(tc.path); next.Path.IsValid() {
				t.Errorf("NextCluster(%v) = %v, want invalid", tc.path, next.Path)
			}
		})
	}
}

// Next* re-derives the successor from the path alone, so repeating a walk
// yields the same sequence and Next(x) is stable.
func TestAttributeIterationIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	cluster := datamodel.ConcreteClusterPath{Endpoint: 1, Cluster: clusterOnOff}

	walk := func() []datamodel.AttributeID {
		var ids []datamodel.AttributeID
		for a := f.p.FirstAttribute(cluster); a.Path.IsValid(); a = f.p.NextAttribute(a.Path) {
			ids = append(ids, a.Path.Attribute)
		}
		return ids
	}

	first := walk()
	want := []datamodel.AttributeID{0xFFF8, 0xFFF9, 0xFFFB, 0xFFFD, 0xFFFC, 0x0000, 0x4001, 0x4003}
	if fmt.Sprint(first) != fmt.Sprint(want) {
		t.Fatalf("attributes = %x, want %x", first, want)
	}
	if second := walk(); fmt.Sprint(second) != fmt.Sprint(first) {
		t.Errorf("second walk = %x, want %x", second, first)
	}

	for _, id := range first {
		p := attrPath(1, clusterOnOff, id)
		a, b := f.p.NextAttribute(p), f.p.NextAttribute(p)
		if a.Path != b.Path {
			t.Errorf("NextAttribute(%s) not stable: %s then %s", p, a.Path, b.Path)
		}
	}

	if next := f.p.NextAttribute(attrPath(1, clusterOnOff, 0x1234)); next.Path.IsValid() {
		t.Errorf("NextAttribute(unknown) = %s, want invalid", next.Path)
	}
	if first := f.p.FirstAttribute(datamodel.ConcreteClusterPath{Endpoint: 7, Cluster: clusterOnOff}); first.Path.IsValid() {
		t.Errorf("FirstAttribute(unknown endpoint) = %s, want invalid", first.Path)
	}
}

func TestGetAttributeInfo(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name     string
		path     datamodel.ConcreteAttributePath
		wantOK   bool
		writable bool
	}{
		{"declared", attrPath(1, clusterOnOff, 0x4001), true, true},
		{"read-only", attrPath(1, clusterOnOff, 0x0000), true, false},
		{"global", attrPath(1, clusterOnOff, datamodel.GlobalAttrAttributeList), true, false},
		{"event list", attrPath(1, clusterOnOff, datamodel.GlobalAttrEventList), false, false},
		{"unknown", attrPath(1, clusterOnOff, 0x1234), false, false},
		{"other endpoint", attrPath(2, clusterOnOff, 0x4001), false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, ok := f.p.GetAttributeInfo(tc.path)
			if ok != tc.wantOK {
				t.Fatalf("GetAttributeInfo(%s) ok = %v, want %v", tc.path, ok, tc.wantOK)
			}
			if ok && info.IsWritable() != tc.writable {
				t.Errorf("IsWritable() = %v, want %v", info.IsWritable(), tc.writable)
			}
		})
	}
}

func TestCommandIteration(t *testing.T) {
	f := newFixture(t, nil)
	cluster := datamodel.ConcreteClusterPath{Endpoint: 1, Cluster: clusterTest}

	var accepted []datamodel.CommandID
	for c := f.p.FirstAcceptedCommand(cluster); c.Path.IsValid(); c = f.p.NextAcceptedCommand(c.Path) {
		accepted = append(accepted, c.Path.Command)
	}
	if fmt.Sprint(accepted) != "[0 1]" {
		t.Errorf("accepted = %v, want [0 1]", accepted)
	}

	var generated []datamodel.CommandID
	for c := f.p.FirstGeneratedCommand(cluster); c.IsValid(); c = f.p.NextGeneratedCommand(c) {
		generated = append(generated, c.Command)
	}
	if fmt.Sprint(generated) != "[0 1]" {
		t.Errorf("generated = %v, want [0 1]", generated)
	}

	info, ok := f.p.GetAcceptedCommandInfo(datamodel.ConcreteCommandPath{Endpoint: 1, Cluster: clusterTest, Command: 1})
	if !ok || !info.RequiresTimed() || info.InvokePrivilege != datamodel.PrivilegeManage {
		t.Errorf("GetAcceptedCommandInfo(1) = %+v, %v", info, ok)
	}
	if _, ok := f.p.GetAcceptedCommandInfo(datamodel.ConcreteCommandPath{Endpoint: 1, Cluster: clusterTest, Command: 9}); ok {
		t.Error("GetAcceptedCommandInfo(9) found an undeclared command")
	}

	// No generated commands on OnOff.
	onoff := datamodel.ConcreteClusterPath{Endpoint: 1, Cluster: clusterOnOff}
	if c := f.p.FirstGeneratedCommand(onoff); c.IsValid() {
		t.Errorf("FirstGeneratedCommand(OnOff) = %s, want invalid", c)
	}
}
