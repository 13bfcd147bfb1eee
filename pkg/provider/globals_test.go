package provider

import (
	"errors"
	"fmt"
	"testing"

	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/metadata"
)

func emptyRegistry(t *testing.T) *metadata.Registry {
	t.Helper()
	reg, err := metadata.NewRegistry(nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestReadAttributeList(t *testing.T) {
	f := newFixture(t, nil)

	units, _, err := f.read(t, readReq(attrPath(1, clusterOnOff, datamodel.GlobalAttrAttributeList)), datamodel.DefaultMaxPayload, datamodel.AttributeEncodeState{})
	if err != nil {
		t.Fatalf("ReadAttribute: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("units = %d, want 1", len(units))
	}
	got := decodeUintArray(t, units[0].Data)
	want := []uint64{0xFFF8, 0xFFF9, 0xFFFB, 0xFFFD, 0xFFFC, 0x0000, 0x4001, 0x4003}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("AttributeList = %x, want %x", got, want)
	}
}

func TestReadGlobals(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name string
		attr datamodel.AttributeID
		want string
	}{
		{"AcceptedCommandList", datamodel.GlobalAttrAcceptedCommandList, "[0 1]"},
		{"GeneratedCommandList", datamodel.GlobalAttrGeneratedCommandList, "[0 1]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			units, _, err := f.read(t, readReq(testAttr(tc.attr)), datamodel.DefaultMaxPayload, datamodel.AttributeEncodeState{})
			if err != nil {
				t.Fatalf("ReadAttribute: %v", err)
			}
			if got := fmt.Sprint(decodeUintArray(t, units[0].Data)); got != tc.want {
				t.Errorf("%s = %s, want %s", tc.name, got, tc.want)
			}
		})
	}

	scalars := []struct {
		attr datamodel.AttributeID
		want uint64
	}{
		{datamodel.GlobalAttrClusterRevision, 1},
		{datamodel.GlobalAttrFeatureMap, 3},
	}
	for _, tc := range scalars {
		data := f.readValue(t, testAttr(tc.attr))
		v, err := datamodel.NewAttributeValueDecoderBytes(data).DecodeUint()
		if err != nil || v != tc.want {
			t.Errorf("global 0x%04X = %d, %v, want %d", tc.attr, v, err, tc.want)
		}
	}
}

func TestEventListNotCataloged(t *testing.T) {
	f := newFixture(t, nil)
	path := attrPath(1, clusterOnOff, datamodel.GlobalAttrEventList)

	_, _, err := f.read(t, readReq(path), datamodel.DefaultMaxPayload, datamodel.AttributeEncodeState{})
	if !errors.Is(err, datamodel.ErrUnsupportedAttribute) {
		t.Errorf("read EventList error = %v, want ErrUnsupportedAttribute", err)
	}

	err = f.write(t, writeReq(path), putUint(1))
	if !errors.Is(err, datamodel.ErrUnsupportedWrite) {
		t.Errorf("write EventList error = %v, want ErrUnsupportedWrite", err)
	}
}

func TestGlobalsAreNotWritable(t *testing.T) {
	f := newFixture(t, nil)
	for _, g := range datamodel.GlobalAttributes() {
		req := writeReq(attrPath(1, clusterOnOff, g.ID))
		req.OperationFlags = datamodel.OpFlagInternal
		if err := f.write(t, req, putUint(1)); !errors.Is(err, datamodel.ErrUnsupportedWrite) {
			t.Errorf("write global 0x%04X error = %v, want ErrUnsupportedWrite", g.ID, err)
		}
	}
	if n := f.listener.count(); n != 0 {
		t.Errorf("MarkDirty called %d times", n)
	}
}

// Global lists go through the bounded list encoder and resume like any other
// list.
func TestAttributeListChunked(t *testing.T) {
	f := newFixture(t, nil)
	req := readReq(attrPath(1, clusterOnOff, datamodel.GlobalAttrAttributeList))

	var got []uint64
	state := datamodel.AttributeEncodeState{}
	for round := 0; round < 20; round++ {
		units, enc, err := f.read(t, req, 48, state)
		if err != nil && !errors.Is(err, datamodel.ErrBufferTooSmall) {
			t.Fatalf("round %d: %v", round, err)
		}
		for _, u := range units {
			if u.Path.AppendListItem {
				v, derr := datamodel.NewAttributeValueDecoderBytes(u.Data).DecodeUint()
				if derr != nil {
					t.Fatalf("DecodeUint: %v", derr)
				}
				got = append(got, v)
				continue
			}
			got = append(got[:0], decodeUintArray(t, u.Data)...)
		}
		if err == nil {
			break
		}
		state = enc.State()
	}
	want := []uint64{0xFFF8, 0xFFF9, 0xFFFB, 0xFFFD, 0xFFFC, 0x0000, 0x4001, 0x4003}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("AttributeList = %x, want %x", got, want)
	}
}
