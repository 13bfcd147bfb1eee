package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/im/message"
	"github.com/backkem/dmprovider/pkg/provider"
	"github.com/backkem/dmprovider/pkg/tlv"
)

const (
	clusterOnOff datamodel.ClusterID   = 0x0006
	attrOnOff    datamodel.AttributeID = 0x0000
)

// onOffHandler implements the Off, On and Toggle commands by writing the
// OnOff attribute through the provider.
type onOffHandler struct {
	p *provider.Provider
}

func (h *onOffHandler) InvokeCommand(ctx context.Context, req datamodel.InvokeRequest, _ *tlv.Reader) ([]byte, error) {
	path := datamodel.ConcreteAttributePath{Endpoint: req.Path.Endpoint, Cluster: req.Path.Cluster, Attribute: attrOnOff}

	var on bool
	switch req.Path.Command {
	case 0x00:
		on = false
	case 0x01:
		on = true
	case 0x02:
		current, err := readAttribute(ctx, h.p, path)
		if err != nil {
			return nil, err
		}
		on = current != "true"
	default:
		return nil, datamodel.StatusError(message.StatusUnsupportedCommand)
	}

	err := writeAttribute(ctx, h.p, path, true, func(w *tlv.Writer, tag tlv.Tag) error {
		return w.PutBool(tag, on)
	})
	return nil, err
}

func writeAttribute(ctx context.Context, p *provider.Provider, path datamodel.ConcreteAttributePath, internal bool, fn datamodel.ValueFunc) error {
	var b bytes.Buffer
	if err := fn(tlv.NewWriter(&b), tlv.Anonymous()); err != nil {
		return err
	}
	req := datamodel.WriteAttributeRequest{Path: datamodel.ConcreteDataAttributePath{ConcreteAttributePath: path}}
	if internal {
		req.OperationFlags = datamodel.OpFlagInternal
	}
	return p.WriteAttribute(ctx, req, datamodel.NewAttributeValueDecoderBytes(b.Bytes()))
}

func readAttribute(ctx context.Context, p *provider.Provider, path datamodel.ConcreteAttributePath) (string, error) {
	return read(ctx, p, datamodel.ConcreteReadAttributePath{ConcreteAttributePath: path})
}

// readExpanded reads path as part of a wildcard: attributes the requester
// may not read yield an empty string.
func readExpanded(ctx context.Context, p *provider.Provider, path datamodel.ConcreteAttributePath) (string, error) {
	return read(ctx, p, datamodel.ConcreteReadAttributePath{ConcreteAttributePath: path, Expanded: true})
}

// read collects every report unit of an attribute, resuming lists that
// overflow one report, and formats the value.
func read(ctx context.Context, p *provider.Provider, path datamodel.ConcreteReadAttributePath) (string, error) {
	var (
		value  string
		items  []string
		isList bool
	)
	state := datamodel.AttributeEncodeState{}
	for {
		buf := tlv.NewBuffer(datamodel.DefaultMaxPayload)
		enc := datamodel.NewAttributeValueEncoder(buf, path.ConcreteAttributePath, 0, state)
		err := p.ReadAttribute(ctx, datamodel.ReadAttributeRequest{Path: path}, enc)
		if err != nil && !errors.Is(err, datamodel.ErrBufferTooSmall) {
			return "", err
		}

		units, derr := decodeUnits(buf.Bytes())
		if derr != nil {
			return "", derr
		}
		for _, u := range units {
			if u.Path.AppendListItem {
				items = append(items, formatValue(u.Data))
				continue
			}
			items, isList = listItems(u.Data)
			value = formatValue(u.Data)
		}
		if err == nil {
			break
		}
		state = enc.State()
	}

	if isList {
		return "[" + strings.Join(items, " ") + "]", nil
	}
	return value, nil
}

// listItems returns the formatted elements of data when it is an array.
func listItems(data []byte) ([]string, bool) {
	r := tlv.NewReader(bytes.NewReader(data))
	if err := r.Next(); err != nil || r.Type() != tlv.ElementTypeArray {
		return nil, false
	}
	if err := r.EnterContainer(); err != nil {
		return nil, false
	}
	items := []string{}
	for {
		if err := r.Next(); err != nil || r.IsEndOfContainer() {
			return items, true
		}
		items = append(items, formatElement(r))
	}
}

func decodeUnits(data []byte) ([]message.AttributeDataIB, error) {
	r := tlv.NewReader(bytes.NewReader(data))
	var out []message.AttributeDataIB
	for {
		if err := r.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		var ib message.AttributeDataIB
		if err := ib.DecodeFrom(r); err != nil {
			return nil, err
		}
		out = append(out, ib)
	}
}

// formatValue renders one anonymous TLV element for display.
func formatValue(data []byte) string {
	r := tlv.NewReader(bytes.NewReader(data))
	if err := r.Next(); err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return formatElement(r)
}

func formatElement(r *tlv.Reader) string {
	t := r.Type()
	switch {
	case t == tlv.ElementTypeNull:
		return "null"
	case t.IsBool():
		v, _ := r.Bool()
		return fmt.Sprint(v)
	case t.IsUnsignedInt():
		v, _ := r.Uint()
		return fmt.Sprint(v)
	case t.IsSignedInt():
		v, _ := r.Int()
		return fmt.Sprint(v)
	case t.IsFloat():
		v, _ := r.Float64()
		return fmt.Sprint(v)
	case t.IsUTF8String():
		v, _ := r.String()
		return fmt.Sprintf("%q", v)
	case t.IsBytes():
		v, _ := r.Bytes()
		return fmt.Sprintf("%x", v)
	case t.IsContainer():
		open, closing := "[", "]"
		if t == tlv.ElementTypeStruct {
			open, closing = "{", "}"
		}
		if err := r.EnterContainer(); err != nil {
			return fmt.Sprintf("<%v>", err)
		}
		var items []string
		for {
			if err := r.Next(); err != nil {
				return fmt.Sprintf("<%v>", err)
			}
			if r.IsEndOfContainer() {
				break
			}
			items = append(items, formatElement(r))
		}
		if err := r.ExitContainer(); err != nil {
			return fmt.Sprintf("<%v>", err)
		}
		return open + strings.Join(items, " ") + closing
	}
	return fmt.Sprintf("<%s>", t)
}
