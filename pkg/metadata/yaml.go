package metadata

import (
	"fmt"
	"os"
	"strings"

	"github.com/pion/logging"
	"gopkg.in/yaml.v3"

	"github.com/backkem/dmprovider/pkg/codec"
	"github.com/backkem/dmprovider/pkg/datamodel"
)

// LoadOptions configures the YAML loader.
type LoadOptions struct {
	// LoggerFactory is optional.
	LoggerFactory logging.LoggerFactory
}

// rawRegistry is the YAML document layout. IDs may be written in decimal or
// 0x-prefixed hex.
type rawRegistry struct {
	Endpoints []rawEndpoint `yaml:"endpoints"`
}

type rawEndpoint struct {
	ID          uint16          `yaml:"id"`
	Parent      *uint16         `yaml:"parent"`
	Composition string          `yaml:"composition"` // "tree", "full_family"
	DeviceTypes []rawDeviceType `yaml:"device_types"`
	Clusters    []rawCluster    `yaml:"clusters"`
}

type rawDeviceType struct {
	ID       uint32 `yaml:"id"`
	Revision uint8  `yaml:"revision"`
}

type rawCluster struct {
	ID                uint32         `yaml:"id"`
	Name              string         `yaml:"name"`
	Revision          uint16         `yaml:"revision"`
	FeatureMap        uint32         `yaml:"feature_map"`
	Diagnostics       bool           `yaml:"diagnostics"`
	Attributes        []rawAttribute `yaml:"attributes"`
	AcceptedCommands  []rawCommand   `yaml:"accepted_commands"`
	GeneratedCommands []uint32       `yaml:"generated_commands"`
}

type rawAttribute struct {
	ID        uint32   `yaml:"id"`
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"` // codec type name: "int16u", "char_string", ...
	MaxLength uint16   `yaml:"max_length"`
	Qualities []string `yaml:"qualities"` // "nullable", "timed", "nonvolatile", ...
	Read      string   `yaml:"read"`      // privilege name, empty for write-only
	Write     string   `yaml:"write"`     // privilege name, empty for read-only
	Default   any      `yaml:"default"`
}

type rawCommand struct {
	ID        uint32   `yaml:"id"`
	Name      string   `yaml:"name"`
	Invoke    string   `yaml:"invoke"`
	Qualities []string `yaml:"qualities"` // "timed", "fabric_scoped", "large_message"
}

// ParseYAML builds a registry from a YAML document.
func ParseYAML(data []byte, opts LoadOptions) (*Registry, error) {
	var log logging.LeveledLogger
	if opts.LoggerFactory != nil {
		log = opts.LoggerFactory.NewLogger("dm-metadata")
	}

	var raw rawRegistry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}

	endpoints := make([]Endpoint, 0, len(raw.Endpoints))
	for _, re := range raw.Endpoints {
		ep, err := re.build()
		if err != nil {
			return nil, fmt.Errorf("endpoint %d: %w", re.ID, err)
		}
		endpoints = append(endpoints, ep)
	}

	reg, err := NewRegistry(endpoints)
	if err != nil {
		return nil, err
	}
	if log != nil {
		log.Infof("Loaded registry with %d endpoints", len(endpoints))
	}
	return reg, nil
}

// LoadFile reads and parses a YAML registry file.
func LoadFile(path string, opts LoadOptions) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseYAML(data, opts)
}

func (re *rawEndpoint) build() (Endpoint, error) {
	ep := Endpoint{ID: datamodel.EndpointID(re.ID), ParentID: datamodel.InvalidEndpointID}
	if re.Parent != nil {
		ep.ParentID = datamodel.EndpointID(*re.Parent)
	}
	switch strings.ToLower(re.Composition) {
	case "":
		ep.Composition = datamodel.CompositionUnknown
	case "tree":
		ep.Composition = datamodel.CompositionTree
	case "full_family":
		ep.Composition = datamodel.CompositionFullFamily
	default:
		return Endpoint{}, fmt.Errorf("%w: unknown composition %q", ErrInvalidRegistry, re.Composition)
	}
	for _, dt := range re.DeviceTypes {
		ep.DeviceTypes = append(ep.DeviceTypes, DeviceType{ID: datamodel.DeviceTypeID(dt.ID), Revision: dt.Revision})
	}
	for _, rc := range re.Clusters {
		c, err := rc.build()
		if err != nil {
			return Endpoint{}, fmt.Errorf("cluster 0x%04x: %w", rc.ID, err)
		}
		ep.Clusters = append(ep.Clusters, c)
	}
	return ep, nil
}

func (rc *rawCluster) build() (Cluster, error) {
	c := Cluster{
		ID:         datamodel.ClusterID(rc.ID),
		Revision:   rc.Revision,
		FeatureMap: rc.FeatureMap,
	}
	if rc.Diagnostics {
		c.Quality |= datamodel.ClusterQualityDiagnostics
	}
	for _, ra := range rc.Attributes {
		a, err := ra.build()
		if err != nil {
			return Cluster{}, fmt.Errorf("attribute 0x%04x: %w", ra.ID, err)
		}
		c.Attributes = append(c.Attributes, a)
	}
	for _, rcmd := range rc.AcceptedCommands {
		cmd, err := rcmd.build()
		if err != nil {
			return Cluster{}, fmt.Errorf("command 0x%02x: %w", rcmd.ID, err)
		}
		c.AcceptedCommands = append(c.AcceptedCommands, cmd)
	}
	for _, id := range rc.GeneratedCommands {
		c.GeneratedCommands = append(c.GeneratedCommands, datamodel.CommandID(id))
	}
	return c, nil
}

func (ra *rawAttribute) build() (Attribute, error) {
	t, err := codec.ParseAttributeType(ra.Type)
	if err != nil {
		return Attribute{}, err
	}
	a := Attribute{
		ID:        datamodel.AttributeID(ra.ID),
		Type:      t,
		MaxLength: ra.MaxLength,
		Default:   ra.Default,
	}
	for _, name := range ra.Qualities {
		q, err := datamodel.ParseAttributeQuality(name)
		if err != nil {
			return Attribute{}, err
		}
		a.Quality |= q
	}
	if a.ReadPrivilege, err = optionalPrivilege(ra.Read); err != nil {
		return Attribute{}, err
	}
	if a.WritePrivilege, err = optionalPrivilege(ra.Write); err != nil {
		return Attribute{}, err
	}
	return a, nil
}

func (rc *rawCommand) build() (Command, error) {
	cmd := Command{ID: datamodel.CommandID(rc.ID), InvokePrivilege: datamodel.PrivilegeOperate}
	if rc.Invoke != "" {
		p, err := datamodel.ParsePrivilege(rc.Invoke)
		if err != nil {
			return Command{}, err
		}
		cmd.InvokePrivilege = p
	}
	for _, name := range rc.Qualities {
		switch strings.ToLower(name) {
		case "timed":
			cmd.Quality |= datamodel.CmdQualityTimed
		case "fabric_scoped":
			cmd.Quality |= datamodel.CmdQualityFabricScoped
		case "large_message":
			cmd.Quality |= datamodel.CmdQualityLargeMessage
		default:
			return Command{}, fmt.Errorf("%w: unknown command quality %q", ErrInvalidRegistry, name)
		}
	}
	return cmd, nil
}

func optionalPrivilege(name string) (*datamodel.Privilege, error) {
	if name == "" {
		return nil, nil
	}
	p, err := datamodel.ParsePrivilege(name)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
