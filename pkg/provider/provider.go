// Package provider implements the data-model provider of a Matter node: the
// layer between the Interaction Model and the attribute and command data of
// each cluster.
//
// A Provider resolves concrete paths against an immutable metadata registry,
// enforces access, timing and data-version rules, and routes every read,
// write and invoke to one of three places:
//   - the global attribute synthesizer, for ClusterRevision, FeatureMap and
//     the attribute and command lists;
//   - a registered AttributeAccessInterface or CommandHandler;
//   - the generic storage codec, for plain scalars and strings.
//
// Spec References:
//   - Section 7.13: Global Elements
//   - Section 8.4: Read Interaction
//   - Section 8.7: Write Interaction
//   - Section 8.8: Invoke Interaction
//
// C++ Reference: app/data-model-provider/Provider.h, CodegenDataModelProvider
package provider

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pion/logging"

	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/metadata"
	"github.com/backkem/dmprovider/pkg/storage"
)

// Configuration errors.
var (
	ErrInvalidConfig     = errors.New("provider: invalid config")
	ErrRegistryRequired  = errors.New("provider: registry is required")
	ErrAlreadyRegistered = errors.New("provider: already registered")
)

// Config configures a Provider.
type Config struct {
	// Registry is the node's endpoint, cluster, attribute and command table.
	// Required.
	Registry *metadata.Registry

	// Storage holds attribute values served by the generic codec.
	// Defaults to a storage.Memory built from Registry.
	Storage datamodel.AttributeStorage

	// AccessChecker decides access for requests that carry a subject.
	// Defaults to datamodel.AllowAllChecker.
	AccessChecker datamodel.AccessChecker

	// Listener is notified once per successful write.
	// Defaults to datamodel.NopChangeListener.
	Listener datamodel.AttributeChangeListener

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

func (c *Config) validate() error {
	if c.Registry == nil {
		return ErrRegistryRequired
	}
	return nil
}

func (c *Config) applyDefaults() error {
	if c.Storage == nil {
		mem, err := storage.NewMemory(c.Registry)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.Storage = mem
	}
	if c.AccessChecker == nil {
		c.AccessChecker = datamodel.AllowAllChecker{}
	}
	if c.Listener == nil {
		c.Listener = datamodel.NopChangeListener{}
	}
	return nil
}

// clusterState is the mutable state of one cluster instance.
type clusterState struct {
	// mu serialises the write pipeline from the data-version check to the
	// version increment.
	mu      sync.Mutex
	version atomic.Uint32
}

func (s *clusterState) dataVersion() datamodel.DataVersion {
	return datamodel.DataVersion(s.version.Load())
}

// Provider is the data-model provider. It is safe for concurrent use.
type Provider struct {
	reg      *metadata.Registry
	store    datamodel.AttributeStorage
	access   datamodel.AccessChecker
	listener datamodel.AttributeChangeListener

	// clusters maps ConcreteClusterPath to *clusterState. Entries are
	// created on first access with a random data version.
	clusters sync.Map

	handlersMu sync.RWMutex
	aais       map[handlerKey]datamodel.AttributeAccessInterface
	commands   map[handlerKey]datamodel.CommandHandler

	log logging.LeveledLogger
}

// New creates a Provider.
func New(config Config) (*Provider, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}

	p := &Provider{
		reg:      config.Registry,
		store:    config.Storage,
		access:   config.AccessChecker,
		listener: config.Listener,
		aais:     make(map[handlerKey]datamodel.AttributeAccessInterface),
		commands: make(map[handlerKey]datamodel.CommandHandler),
	}
	if config.LoggerFactory != nil {
		p.log = config.LoggerFactory.NewLogger("dm-provider")
	}
	return p, nil
}

// Registry returns the metadata registry the provider serves.
func (p *Provider) Registry() *metadata.Registry { return p.reg }

// cluster returns the state of a cluster that exists in the registry.
func (p *Provider) cluster(path datamodel.ConcreteClusterPath) *clusterState {
	if s, ok := p.clusters.Load(path); ok {
		return s.(*clusterState)
	}
	s := &clusterState{}
	s.version.Store(randomVersion())
	actual, _ := p.clusters.LoadOrStore(path, s)
	return actual.(*clusterState)
}

// randomVersion returns the initial data version of a cluster.
// Spec: Section 7.10.3 "the initial value SHOULD be random"
func randomVersion() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b[:])
}

// allowed runs the access check. Requests without a subject, and internal
// requests, are not checked.
func (p *Provider) allowed(subject *datamodel.SubjectDescriptor, internal bool, path datamodel.RequestPath, priv datamodel.Privilege) bool {
	if internal || subject == nil {
		return true
	}
	return p.access.Check(*subject, path, priv)
}

func (p *Provider) debugf(format string, args ...interface{}) {
	if p.log != nil {
		p.log.Debugf(format, args...)
	}
}

func (p *Provider) warnf(format string, args ...interface{}) {
	if p.log != nil {
		p.log.Warnf(format, args...)
	}
}
