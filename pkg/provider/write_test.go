package provider

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/backkem/dmprovider/pkg/codec"
	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/im/message"
	"github.com/backkem/dmprovider/pkg/tlv"
)

func putUint(v uint64) datamodel.ValueFunc {
	return func(w *tlv.Writer, tag tlv.Tag) error { return w.PutUint(tag, v) }
}

func putInt(v int64) datamodel.ValueFunc {
	return func(w *tlv.Writer, tag tlv.Tag) error { return w.PutInt(tag, v) }
}

func putString(v string) datamodel.ValueFunc {
	return func(w *tlv.Writer, tag tlv.Tag) error { return w.PutString(tag, v) }
}

func putNull() datamodel.ValueFunc {
	return func(w *tlv.Writer, tag tlv.Tag) error { return w.PutNull(tag) }
}

func (f *fixture) version(t *testing.T, cluster datamodel.ClusterID) datamodel.DataVersion {
	t.Helper()
	info, ok := f.p.GetClusterInfo(datamodel.ConcreteClusterPath{Endpoint: 1, Cluster: cluster})
	if !ok {
		t.Fatalf("cluster 0x%04x not found", cluster)
	}
	return info.DataVersion
}

// Every value a type can hold survives a write followed by a read.
func TestWriteReadRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		attr  datamodel.AttributeID
		value datamodel.ValueFunc
	}{
		{"int24u max", attrInt24U, putUint(0xFFFFFF)},
		{"int24s min", attrInt24S, putInt(-0x800000)},
		{"int24s max", attrInt24S, putInt(0x7FFFFF)},
		{"int40u max", attrInt40U, putUint(0xFF_FFFF_FFFF)},
		{"int48s min", attrInt48S, putInt(-0x8000_0000_0000)},
		{"int48s negative", attrInt48S, putInt(-2)},
		{"int56u max", attrInt56U, putUint(0xFF_FFFF_FFFF_FFFF)},
		{"int64s min", attrInt64S, putInt(-1 << 63)},
		{"int64s -1", attrInt64S, putInt(-1)},
		{"int48u below null", attrInt48U, putUint(0xFFFF_FFFF_FFFE)},
		{"int8u below null", attrInt8U, putUint(254)},
		{"single", attrSingle, func(w *tlv.Writer, tag tlv.Tag) error { return w.PutFloat32(tag, 1.5) }},
		{"double", attrDouble, func(w *tlv.Writer, tag tlv.Tag) error { return w.PutFloat64(tag, -2.25) }},
		{"boolean", attrBoolean, func(w *tlv.Writer, tag tlv.Tag) error { return w.PutBool(tag, true) }},
		{"char string", attrCharString, putString("kitchen")},
		{"char string at max length", attrCharString, putString("12345678")},
		{"empty char string", attrCharString, putString("")},
		{"octet string", attrOctetString, func(w *tlv.Writer, tag tlv.Tag) error { return w.PutBytes(tag, []byte{1, 2, 3, 4}) }},
		{"long char string", attrLongString, putString(strings.Repeat("a", 300))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			path := testAttr(tc.attr)
			if err := f.write(t, writeReq(path), tc.value); err != nil {
				t.Fatalf("WriteAttribute(%s): %v", path, err)
			}
			got := f.readValue(t, path)
			if want := tlvBytes(t, tc.value); !bytes.Equal(got, want) {
				t.Errorf("read back %x, want %x", got, want)
			}
		})
	}
}

// Null on a nullable attribute stores the all-ones pattern of the type.
func TestWriteNullStoresSentinel(t *testing.T) {
	tests := []struct {
		attr  datamodel.AttributeID
		value datamodel.ValueFunc
		want  []byte
	}{
		{attrInt24S, putInt(-5), []byte{0xFF, 0xFF, 0xFF}},
		{attrInt48U, putUint(1), []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{attrInt8U, putUint(1), []byte{0xFF}},
		{attrDouble, func(w *tlv.Writer, tag tlv.Tag) error { return w.PutFloat64(tag, 1) }, bytes.Repeat([]byte{0xFF}, 8)},
		{attrBoolean, func(w *tlv.Writer, tag tlv.Tag) error { return w.PutBool(tag, false) }, []byte{0xFF}},
		{attrCharString, putString("den"), []byte{0xFF}},
	}
	for _, tc := range tests {
		f := newFixture(t, nil)
		path := testAttr(tc.attr)
		if err := f.write(t, writeReq(path), tc.value); err != nil {
			t.Fatalf("WriteAttribute(%s): %v", path, err)
		}
		if err := f.write(t, writeReq(path), putNull()); err != nil {
			t.Fatalf("WriteAttribute(%s, null): %v", path, err)
		}

		buf := make([]byte, 64)
		n, _, err := f.mem.ReadRaw(path, buf)
		if err != nil {
			t.Fatalf("ReadRaw(%s): %v", path, err)
		}
		if n < len(tc.want) || !bytes.Equal(buf[:len(tc.want)], tc.want) {
			t.Errorf("storage for %s = %x, want %x", path, buf[:n], tc.want)
		}
		if got, want := f.readValue(t, path), tlvBytes(t, putNull()); !bytes.Equal(got, want) {
			t.Errorf("read back %x, want null", got)
		}
	}
}

func TestWriteCodecErrors(t *testing.T) {
	tests := []struct {
		name       string
		attr       datamodel.AttributeID
		value      datamodel.ValueFunc
		want       error
		wantStatus message.Status
	}{
		{"null to non-nullable", attrInt24U, putNull(), codec.ErrWrongType, message.StatusInvalidDataType},
		{"string to integer", attrInt24U, putString("1"), codec.ErrWrongType, message.StatusInvalidDataType},
		{"int24u overflow", attrInt24U, putUint(0x1000000), codec.ErrInvalidArgument, message.StatusFailure},
		{"int40u overflow", attrInt40U, putUint(1 << 40), codec.ErrInvalidArgument, message.StatusFailure},
		{"int56u overflow", attrInt56U, putUint(1 << 56), codec.ErrInvalidArgument, message.StatusFailure},
		{"int24s overflow", attrInt24S, putInt(0x800000), codec.ErrInvalidArgument, message.StatusFailure},
		{"int48s underflow", attrInt48S, putInt(-0x8000_0000_0000 - 1), codec.ErrInvalidArgument, message.StatusFailure},
		{"negative to unsigned", attrInt40U, putInt(-1), codec.ErrInvalidArgument, message.StatusFailure},
		{"int8u null sentinel", attrInt8U, putUint(255), codec.ErrConstraint, message.StatusConstraintError},
		{"int24s null sentinel", attrInt24S, putInt(-1), codec.ErrConstraint, message.StatusConstraintError},
		{"int48u null sentinel", attrInt48U, putUint(0xFFFF_FFFF_FFFF), codec.ErrConstraint, message.StatusConstraintError},
		{"string too long", attrCharString, putString("123456789"), codec.ErrInvalidValue, message.StatusConstraintError},
		{"octet string too long", attrOctetString, func(w *tlv.Writer, tag tlv.Tag) error { return w.PutBytes(tag, make([]byte, 5)) }, codec.ErrInvalidValue, message.StatusConstraintError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			path := testAttr(tc.attr)
			before := f.readValue(t, path)
			v := f.version(t, clusterTest)

			err := f.write(t, writeReq(path), tc.value)
			if !errors.Is(err, tc.want) {
				t.Fatalf("WriteAttribute error = %v, want %v", err, tc.want)
			}
			if got := datamodel.ErrorToStatus(err); got != tc.wantStatus {
				t.Errorf("status = %v, want %v", got, tc.wantStatus)
			}
			if after := f.readValue(t, path); !bytes.Equal(after, before) {
				t.Errorf("value changed from %x to %x", before, after)
			}
			if got := f.version(t, clusterTest); got != v {
				t.Errorf("DataVersion = %d, want %d", got, v)
			}
			if n := f.listener.count(); n != 0 {
				t.Errorf("MarkDirty called %d times", n)
			}
		})
	}
}

func TestWriteMalformedValue(t *testing.T) {
	f := newFixture(t, nil)
	dec := datamodel.NewAttributeValueDecoderBytes(nil)
	err := f.p.WriteAttribute(context.Background(), writeReq(testAttr(attrInt24U)), dec)
	if !errors.Is(err, codec.ErrWrongType) {
		t.Errorf("error = %v, want ErrWrongType", err)
	}
}

func TestWriteResolution(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name string
		path datamodel.ConcreteAttributePath
		want error
	}{
		{"unknown endpoint", attrPath(9, clusterOnOff, 0x4001), datamodel.ErrUnsupportedEndpoint},
		{"unknown cluster", attrPath(1, clusterAbsent, 0x4001), datamodel.ErrUnsupportedCluster},
		{"unknown attribute", attrPath(1, clusterOnOff, 0x1234), datamodel.ErrUnsupportedAttribute},
		{"global", attrPath(1, clusterOnOff, datamodel.GlobalAttrClusterRevision), datamodel.ErrUnsupportedWrite},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := f.write(t, writeReq(tc.path), putUint(1)); !errors.Is(err, tc.want) {
				t.Errorf("WriteAttribute(%s) error = %v, want %v", tc.path, err, tc.want)
			}
		})
	}
}

// Expected-version writes succeed only against the current version, and a
// successful write moves it on.
func TestWriteDataVersion(t *testing.T) {
	f := newFixture(t, nil)
	path := attrPath(1, clusterOnOff, 0x4001)
	v := f.version(t, clusterOnOff)

	stale := v + 1
	req := writeReq(path)
	req.DataVersion = &stale
	if err := f.write(t, req, putUint(10)); !errors.Is(err, datamodel.ErrDataVersionMismatch) {
		t.Fatalf("stale write error = %v, want ErrDataVersionMismatch", err)
	}
	if n := f.listener.count(); n != 0 {
		t.Errorf("MarkDirty called %d times after mismatch", n)
	}

	req.DataVersion = &v
	if err := f.write(t, req, putUint(10)); err != nil {
		t.Fatalf("write with current version: %v", err)
	}
	if got := f.version(t, clusterOnOff); got != v+1 {
		t.Errorf("DataVersion = %d, want %d", got, v+1)
	}
	if err := f.write(t, req, putUint(11)); !errors.Is(err, datamodel.ErrDataVersionMismatch) {
		t.Errorf("replayed write error = %v, want ErrDataVersionMismatch", err)
	}
}

func TestWriteTimed(t *testing.T) {
	f := newFixture(t, nil)
	req := writeReq(testAttr(attrTimed))

	if err := f.write(t, req, putUint(5)); !errors.Is(err, datamodel.ErrNeedsTimedInteraction) {
		t.Errorf("untimed write error = %v, want ErrNeedsTimedInteraction", err)
	}
	req.WriteFlags = datamodel.WriteFlagTimed
	if err := f.write(t, req, putUint(5)); err != nil {
		t.Errorf("timed write: %v", err)
	}
}

func TestWriteReadOnly(t *testing.T) {
	f := newFixture(t, nil)
	req := writeReq(testAttr(attrReadOnly))

	if err := f.write(t, req, putUint(7)); !errors.Is(err, datamodel.ErrUnsupportedWrite) {
		t.Errorf("write error = %v, want ErrUnsupportedWrite", err)
	}

	req.OperationFlags = datamodel.OpFlagInternal
	if err := f.write(t, req, putUint(7)); err != nil {
		t.Fatalf("internal write: %v", err)
	}
	if got, want := f.readValue(t, testAttr(attrReadOnly)), tlvBytes(t, putUint(7)); !bytes.Equal(got, want) {
		t.Errorf("read back %x, want %x", got, want)
	}
}

func TestWriteAccessDenied(t *testing.T) {
	deny := &denyChecker{}
	f := newFixture(t, deny)
	path := attrPath(1, clusterOnOff, 0x4001)

	req := writeReq(path)
	req.Subject = subject()
	if err := f.write(t, req, putUint(3)); !errors.Is(err, datamodel.ErrUnsupportedAccess) {
		t.Errorf("write error = %v, want ErrUnsupportedAccess", err)
	}
	if n := f.listener.count(); n != 0 {
		t.Errorf("MarkDirty called %d times", n)
	}

	req.OperationFlags = datamodel.OpFlagInternal
	if err := f.write(t, req, putUint(3)); err != nil {
		t.Errorf("internal write: %v", err)
	}
	if deny.calls != 1 {
		t.Errorf("access checker called %d times, want 1", deny.calls)
	}
}

func TestWritePrivilege(t *testing.T) {
	var got []datamodel.Privilege
	f := newFixture(t, checkerFunc(func(_ datamodel.SubjectDescriptor, rp datamodel.RequestPath, priv datamodel.Privilege) bool {
		if rp.RequestType != datamodel.RequestTypeAttributeWrite || rp.EntityID != 0x4003 {
			t.Errorf("request path = %+v", rp)
		}
		got = append(got, priv)
		return true
	}))

	req := writeReq(attrPath(1, clusterOnOff, 0x4003))
	req.Subject = subject()
	if err := f.write(t, req, putUint(1)); err != nil {
		t.Fatalf("WriteAttribute: %v", err)
	}
	if len(got) != 1 || got[0] != datamodel.PrivilegeManage {
		t.Errorf("privileges checked = %v, want [Manage]", got)
	}
}

func TestWriteNotifiesOnce(t *testing.T) {
	f := newFixture(t, nil)
	path := attrPath(1, clusterOnOff, 0x4001)
	v := f.version(t, clusterOnOff)

	if err := f.write(t, writeReq(path), putUint(30)); err != nil {
		t.Fatalf("WriteAttribute: %v", err)
	}
	if len(f.listener.paths) != 1 || f.listener.paths[0] != path {
		t.Errorf("MarkDirty calls = %v, want [%s]", f.listener.paths, path)
	}
	if got := f.version(t, clusterOnOff); got != v+1 {
		t.Errorf("DataVersion = %d, want %d", got, v+1)
	}
}

func TestWriteStorageFault(t *testing.T) {
	f := newFixture(t, nil)
	path := attrPath(1, clusterOnOff, 0x4001)
	v := f.version(t, clusterOnOff)

	for _, fault := range []error{datamodel.ErrBusy, datamodel.ErrFailure} {
		f.faulty.FailWrites(path, fault)
		err := f.write(t, writeReq(path), putUint(30))
		if !errors.Is(err, fault) {
			t.Errorf("error = %v, want %v", err, fault)
		}
	}
	if n := f.listener.count(); n != 0 {
		t.Errorf("MarkDirty called %d times", n)
	}
	if got := f.version(t, clusterOnOff); got != v {
		t.Errorf("DataVersion = %d, want %d", got, v)
	}
}

func TestWriteWithoutStorageForm(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.write(t, writeReq(testAttr(attrStruct)), putUint(1)); !errors.Is(err, datamodel.ErrUnsupportedWrite) {
		t.Errorf("struct write error = %v, want ErrUnsupportedWrite", err)
	}

	idx := datamodel.ListIndex(0)
	req := writeReq(testAttr(attrInt24U))
	req.Path.ListIndex = &idx
	if err := f.write(t, req, putUint(1)); !errors.Is(err, datamodel.ErrUnsupportedWrite) {
		t.Errorf("list item write error = %v, want ErrUnsupportedWrite", err)
	}
}

func TestWriteAccessInterface(t *testing.T) {
	f := newFixture(t, nil)
	var stored uint64
	aai := &funcAccess{write: func(path datamodel.ConcreteDataAttributePath, dec *datamodel.AttributeValueDecoder) datamodel.AccessOutcome {
		switch path.Attribute {
		case attrStruct:
			v, err := dec.DecodeUint()
			if err != nil {
				return datamodel.Handled(codec.ErrWrongType)
			}
			stored = v
			return datamodel.Handled(nil)
		case attrInt40U:
			return datamodel.Handled(datamodel.StatusError(message.StatusConstraintError))
		}
		return datamodel.NotHandled
	}}
	if err := f.p.RegisterAttributeAccess(nil, clusterTest, aai); err != nil {
		t.Fatalf("RegisterAttributeAccess: %v", err)
	}
	v := f.version(t, clusterTest)

	if err := f.write(t, writeReq(testAttr(attrStruct)), putUint(77)); err != nil {
		t.Fatalf("handled write: %v", err)
	}
	if stored != 77 {
		t.Errorf("access interface stored %d, want 77", stored)
	}
	if got := f.version(t, clusterTest); got != v+1 {
		t.Errorf("DataVersion = %d, want %d", got, v+1)
	}

	err := f.write(t, writeReq(testAttr(attrInt40U)), putUint(1))
	if datamodel.ErrorToStatus(err) != message.StatusConstraintError {
		t.Errorf("handled error status = %v, want ConstraintError", datamodel.ErrorToStatus(err))
	}

	// Not handled falls through to the storage codec.
	if err := f.write(t, writeReq(testAttr(attrInt24U)), putUint(9)); err != nil {
		t.Errorf("fall-through write: %v", err)
	}
	if n := f.listener.count(); n != 2 {
		t.Errorf("MarkDirty called %d times, want 2", n)
	}
	if got := f.version(t, clusterTest); got != v+2 {
		t.Errorf("DataVersion = %d, want %d", got, v+2)
	}
}

func TestConcurrentWrites(t *testing.T) {
	const writers, perWriter = 8, 25
	f := newFixture(t, nil)
	v := f.version(t, clusterOnOff)
	path := attrPath(1, clusterOnOff, 0x4001)

	values := make([][]byte, writers)
	for i := range values {
		values[i] = tlvBytes(t, putUint(uint64(i)))
	}

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(value []byte) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				dec := datamodel.NewAttributeValueDecoderBytes(value)
				if err := f.p.WriteAttribute(context.Background(), writeReq(path), dec); err != nil {
					t.Errorf("WriteAttribute: %v", err)
				}
				enc := datamodel.NewAttributeValueEncoder(tlv.NewBuffer(datamodel.DefaultMaxPayload), path, 0, datamodel.AttributeEncodeState{})
				if err := f.p.ReadAttribute(context.Background(), readReq(path), enc); err != nil {
					t.Errorf("ReadAttribute: %v", err)
				}
			}
		}(values[i])
	}
	wg.Wait()

	if got, want := f.version(t, clusterOnOff), v+writers*perWriter; got != want {
		t.Errorf("DataVersion = %d, want %d", got, want)
	}
	if n := f.listener.count(); n != writers*perWriter {
		t.Errorf("MarkDirty called %d times, want %d", n, writers*perWriter)
	}
}
