package datamodel

import (
	"errors"
	"fmt"

	"github.com/backkem/dmprovider/pkg/im/message"
	"github.com/backkem/dmprovider/pkg/tlv"
)

// Report budget defaults. A report must fit one message on the IPv6 minimum
// MTU after header and encryption overhead.
const (
	DefaultMTU            = 1280
	MessageHeaderOverhead = 100
	DefaultMaxPayload     = DefaultMTU - MessageHeaderOverhead
)

// listCloseOverhead is the end-of-container octets of the value array and of
// the enclosing AttributeDataIB.
const listCloseOverhead = 2

// AttributeEncodeState is the resume point of a list read. The caller owns it
// and threads it from one read to the next; the provider never retains it.
type AttributeEncodeState struct {
	// CurrentIndex is the first list element the next read emits.
	CurrentIndex ListIndex

	// AllowPartialData selects chunked encoding, where every list element is
	// its own append unit.
	AllowPartialData bool
}

// IsResume reports whether the state selects chunked list encoding.
func (s AttributeEncodeState) IsResume() bool {
	return s.AllowPartialData || s.CurrentIndex > 0
}

// ValueFunc writes one TLV value under tag.
type ValueFunc func(w *tlv.Writer, tag tlv.Tag) error

// AttributeValueEncoder writes the value of one attribute into a bounded
// report buffer as AttributeDataIB elements with anonymous tags, ready to be
// placed in an AttributeReportIBs array.
//
// Scalars are all-or-nothing. Lists are encoded element by element and stop
// at the first element that does not fit; see EncodeList.
//
// C++ Reference: app/AttributeValueEncoder.h
type AttributeValueEncoder struct {
	buf     *tlv.Buffer
	w       *tlv.Writer
	path    ConcreteAttributePath
	version DataVersion
	state   AttributeEncodeState

	triedEncode bool
}

// NewAttributeValueEncoder returns an encoder that appends to buf. The buffer
// may already hold other attributes of the same report.
func NewAttributeValueEncoder(buf *tlv.Buffer, path ConcreteAttributePath, version DataVersion, state AttributeEncodeState) *AttributeValueEncoder {
	return &AttributeValueEncoder{
		buf:     buf,
		w:       tlv.NewWriter(buf),
		path:    path,
		version: version,
		state:   state,
	}
}

// Path returns the attribute being encoded.
func (e *AttributeValueEncoder) Path() ConcreteAttributePath { return e.path }

// DataVersion returns the cluster data version written into each unit.
func (e *AttributeValueEncoder) DataVersion() DataVersion { return e.version }

// SetDataVersion replaces the data version written into subsequent units.
// The provider stamps the cluster's current version before a read.
func (e *AttributeValueEncoder) SetDataVersion(v DataVersion) { e.version = v }

// State returns the resume state after the last encode. After a list
// overflow it names the first element that was not delivered.
func (e *AttributeValueEncoder) State() AttributeEncodeState { return e.state }

// TriedEncode reports whether any Encode method was called.
func (e *AttributeValueEncoder) TriedEncode() bool { return e.triedEncode }

// Encode writes a single, non-list value.
func (e *AttributeValueEncoder) Encode(fn ValueFunc) error {
	e.triedEncode = true
	cp := e.w.Checkpoint()

	ib := e.dataIB(false)
	err := ib.EncodeHeader(e.w, tlv.Anonymous())
	if err == nil {
		err = fn(e.w, ib.DataTag())
	}
	if err == nil {
		err = e.w.EndContainer()
	}
	if err != nil {
		if rerr := e.w.Rollback(cp); rerr != nil {
			return rerr
		}
		return bufferError(err)
	}
	return nil
}

func (e *AttributeValueEncoder) EncodeUint(v uint64) error {
	return e.Encode(func(w *tlv.Writer, tag tlv.Tag) error { return w.PutUint(tag, v) })
}

func (e *AttributeValueEncoder) EncodeInt(v int64) error {
	return e.Encode(func(w *tlv.Writer, tag tlv.Tag) error { return w.PutInt(tag, v) })
}

func (e *AttributeValueEncoder) EncodeBool(v bool) error {
	return e.Encode(func(w *tlv.Writer, tag tlv.Tag) error { return w.PutBool(tag, v) })
}

func (e *AttributeValueEncoder) EncodeString(v string) error {
	return e.Encode(func(w *tlv.Writer, tag tlv.Tag) error { return w.PutString(tag, v) })
}

func (e *AttributeValueEncoder) EncodeBytes(v []byte) error {
	return e.Encode(func(w *tlv.Writer, tag tlv.Tag) error { return w.PutBytes(tag, v) })
}

func (e *AttributeValueEncoder) EncodeNull() error {
	return e.Encode(func(w *tlv.Writer, tag tlv.Tag) error { return w.PutNull(tag) })
}

// EncodeEmptyList writes a list value with no elements.
func (e *AttributeValueEncoder) EncodeEmptyList() error {
	return e.EncodeList(func(*ListEncoder) error { return nil })
}

// EncodeList writes a list value. fn is called once and emits the elements in
// order through the ListEncoder.
//
// Without a resume state the list is one AttributeDataIB holding an array.
// If an element does not fit, the array is closed after the last element
// that did, State reports the next index with AllowPartialData set, and
// ErrBufferTooSmall is returned. If no element fits, nothing is written.
//
// With a resume state each element is a separate AttributeDataIB whose path
// addresses an appended list item. A read starting at index 0 first writes an
// empty list to replace the current value. Elements before CurrentIndex are
// skipped. On overflow State names the element that did not fit.
//
// Errors other than ErrBufferTooSmall discard everything this call wrote.
func (e *AttributeValueEncoder) EncodeList(fn func(*ListEncoder) error) error {
	e.triedEncode = true
	if e.state.IsResume() {
		return e.encodeChunked(fn)
	}
	return e.encodeWhole(fn)
}

func (e *AttributeValueEncoder) encodeWhole(fn func(*ListEncoder) error) error {
	cp := e.w.Checkpoint()
	overflow := func() error {
		if err := e.w.Rollback(cp); err != nil {
			return err
		}
		e.state = AttributeEncodeState{AllowPartialData: true}
		return ErrBufferTooSmall
	}

	ib := e.dataIB(false)
	if err := ib.EncodeHeader(e.w, tlv.Anonymous()); err != nil {
		if errors.Is(err, tlv.ErrBufferFull) {
			return overflow()
		}
		return err
	}
	if err := e.w.StartArray(ib.DataTag()); err != nil {
		if errors.Is(err, tlv.ErrBufferFull) {
			return overflow()
		}
		return err
	}
	if err := e.buf.Reserve(listCloseOverhead); err != nil {
		return overflow()
	}

	le := &ListEncoder{enc: e}
	err := fn(le)
	e.buf.Release(listCloseOverhead)

	if err == nil && le.overflowed {
		err = ErrBufferTooSmall
	}
	if err != nil && !errors.Is(err, ErrBufferTooSmall) && !errors.Is(err, tlv.ErrBufferFull) {
		if rerr := e.w.Rollback(cp); rerr != nil {
			return rerr
		}
		return err
	}
	if err != nil && le.count == 0 {
		return overflow()
	}

	if cerr := e.w.EndContainer(); cerr != nil {
		return cerr
	}
	if cerr := e.w.EndContainer(); cerr != nil {
		return cerr
	}
	if err != nil {
		e.state = AttributeEncodeState{CurrentIndex: le.index, AllowPartialData: true}
		return ErrBufferTooSmall
	}
	return nil
}

func (e *AttributeValueEncoder) encodeChunked(fn func(*ListEncoder) error) error {
	cp := e.w.Checkpoint()

	if e.state.CurrentIndex == 0 {
		ib := e.dataIB(false)
		err := ib.EncodeHeader(e.w, tlv.Anonymous())
		if err == nil {
			err = e.w.StartArray(ib.DataTag())
		}
		if err == nil {
			err = e.w.EndContainer()
		}
		if err == nil {
			err = e.w.EndContainer()
		}
		if err != nil {
			if rerr := e.w.Rollback(cp); rerr != nil {
				return rerr
			}
			return bufferError(err)
		}
	}

	le := &ListEncoder{enc: e, chunked: true, start: e.state.CurrentIndex}
	err := fn(le)
	if err == nil && le.overflowed {
		err = ErrBufferTooSmall
	}
	switch {
	case err == nil:
		e.state.CurrentIndex = 0
		return nil
	case errors.Is(err, ErrBufferTooSmall), errors.Is(err, tlv.ErrBufferFull):
		e.state.CurrentIndex = le.index
		return ErrBufferTooSmall
	default:
		if rerr := e.w.Rollback(cp); rerr != nil {
			return rerr
		}
		return err
	}
}

func (e *AttributeValueEncoder) dataIB(appendItem bool) *message.AttributeDataIB {
	return &message.AttributeDataIB{
		DataVersion: e.version,
		Path: message.AttributePathIB{
			Endpoint:       message.Ptr(e.path.Endpoint),
			Cluster:        message.Ptr(e.path.Cluster),
			Attribute:      message.Ptr(e.path.Attribute),
			AppendListItem: appendItem,
		},
	}
}

// ListEncoder emits the elements of one list attribute.
type ListEncoder struct {
	enc     *AttributeValueEncoder
	chunked bool
	start   ListIndex

	// index is the next element to be produced. count is how many were
	// written by this call.
	index      ListIndex
	count      int
	overflowed bool
}

// Encode writes the next element. It returns ErrBufferTooSmall once the
// budget is exhausted; the caller should stop and return that error.
func (l *ListEncoder) Encode(fn ValueFunc) error {
	if l.overflowed {
		return ErrBufferTooSmall
	}
	if l.chunked && l.index < l.start {
		l.index++
		return nil
	}

	w := l.enc.w
	cp := w.Checkpoint()
	var err error
	if l.chunked {
		ib := l.enc.dataIB(true)
		err = ib.EncodeHeader(w, tlv.Anonymous())
		if err == nil {
			err = fn(w, ib.DataTag())
		}
		if err == nil {
			err = w.EndContainer()
		}
	} else {
		err = fn(w, tlv.Anonymous())
	}
	if err != nil {
		if rerr := w.Rollback(cp); rerr != nil {
			return rerr
		}
		if errors.Is(err, tlv.ErrBufferFull) {
			l.overflowed = true
			return ErrBufferTooSmall
		}
		return err
	}
	l.index++
	l.count++
	return nil
}

func (l *ListEncoder) EncodeUint(v uint64) error {
	return l.Encode(func(w *tlv.Writer, tag tlv.Tag) error { return w.PutUint(tag, v) })
}

func (l *ListEncoder) EncodeString(v string) error {
	return l.Encode(func(w *tlv.Writer, tag tlv.Tag) error { return w.PutString(tag, v) })
}

// Index returns the index of the next element.
func (l *ListEncoder) Index() ListIndex { return l.index }

func bufferError(err error) error {
	if errors.Is(err, tlv.ErrBufferFull) {
		return fmt.Errorf("%w: %v", ErrBufferTooSmall, err)
	}
	return err
}
