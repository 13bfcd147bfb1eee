package provider

import (
	"fmt"

	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/metadata"
)

// readGlobal encodes a global attribute from the cluster's metadata.
// Spec: Section 7.13
func readGlobal(c *metadata.Cluster, id datamodel.AttributeID, enc *datamodel.AttributeValueEncoder) error {
	switch id {
	case datamodel.GlobalAttrClusterRevision:
		return enc.EncodeUint(uint64(c.Revision))

	case datamodel.GlobalAttrFeatureMap:
		return enc.EncodeUint(uint64(c.FeatureMap))

	case datamodel.GlobalAttrAttributeList:
		return enc.EncodeList(func(le *datamodel.ListEncoder) error {
			for _, g := range datamodel.GlobalAttributes() {
				if err := le.EncodeUint(uint64(g.ID)); err != nil {
					return err
				}
			}
			for i := range c.Attributes {
				if err := le.EncodeUint(uint64(c.Attributes[i].ID)); err != nil {
					return err
				}
			}
			return nil
		})

	case datamodel.GlobalAttrAcceptedCommandList:
		return enc.EncodeList(func(le *datamodel.ListEncoder) error {
			for i := range c.AcceptedCommands {
				if err := le.EncodeUint(uint64(c.AcceptedCommands[i].ID)); err != nil {
					return err
				}
			}
			return nil
		})

	case datamodel.GlobalAttrGeneratedCommandList:
		return enc.EncodeList(func(le *datamodel.ListEncoder) error {
			for _, id := range c.GeneratedCommands {
				if err := le.EncodeUint(uint64(id)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return fmt.Errorf("%w: global 0x%04x", datamodel.ErrUnsupportedAttribute, id)
}
