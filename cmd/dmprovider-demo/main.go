// dmprovider-demo loads a data model, serves reads, writes and invokes
// through the data-model provider, and persists non-volatile attributes.
//
// Usage:
//
//	dmprovider-demo [options]
//
// Options:
//
//	--registry    YAML registry file (default: built-in light)
//	--snapshot    Snapshot file for non-volatile attributes
//	--log-level   disabled, error, warn, info, debug, trace (default: warn)
//	--endpoint    Endpoint ID (default: 1)
//	--cluster     Cluster ID (default: 0x0006)
//	--attribute   Attribute ID to read (default: print everything)
//	--write-uint  Unsigned value written to --attribute before the read
//	--command     Command ID invoked on --cluster
//
// Example:
//
//	dmprovider-demo --snapshot light.snap --cluster 0x0702 --attribute 0x0301 --write-uint 10
package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pion/logging"
	"github.com/spf13/pflag"

	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/metadata"
	"github.com/backkem/dmprovider/pkg/provider"
	"github.com/backkem/dmprovider/pkg/storage"
	"github.com/backkem/dmprovider/pkg/tlv"
)

//go:embed registry.yaml
var builtinRegistry []byte

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "dmprovider-demo: %v\n", err)
		os.Exit(1)
	}
}

// dirtyTracker remembers whether any attribute changed during the run.
type dirtyTracker struct {
	dirty bool
	log   logging.LeveledLogger
}

func (d *dirtyTracker) MarkDirty(path datamodel.ConcreteAttributePath) {
	d.dirty = true
	d.log.Infof("Attribute %s changed", path)
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := ParseFlags(args, stderr)
	if err != nil {
		return err
	}

	loggerFactory := logging.NewDefaultLoggerFactory()
	loggerFactory.Writer = stderr
	loggerFactory.DefaultLogLevel = opts.LogLevel
	log := loggerFactory.NewLogger("demo")

	var reg *metadata.Registry
	loadOpts := metadata.LoadOptions{LoggerFactory: loggerFactory}
	if opts.RegistryPath != "" {
		reg, err = metadata.LoadFile(opts.RegistryPath, loadOpts)
	} else {
		reg, err = metadata.ParseYAML(builtinRegistry, loadOpts)
	}
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	mem, err := storage.NewMemory(reg)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}

	var snap *storage.Snapshot
	if opts.SnapshotPath != "" {
		snap, err = storage.NewSnapshot(mem, reg, storage.SnapshotConfig{
			Path:          opts.SnapshotPath,
			LoggerFactory: loggerFactory,
		})
		if err != nil {
			return fmt.Errorf("open snapshot: %w", err)
		}
		n, err := snap.Load()
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		log.Infof("Restored %d attributes from %s", n, opts.SnapshotPath)
	}

	tracker := &dirtyTracker{log: log}
	p, err := provider.New(provider.Config{
		Registry:      reg,
		Storage:       mem,
		Listener:      tracker,
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	if err := p.RegisterCommandHandler(nil, clusterOnOff, &onOffHandler{p: p}); err != nil {
		return err
	}

	ctx := context.Background()
	cluster := datamodel.ConcreteClusterPath{
		Endpoint: datamodel.EndpointID(opts.Endpoint),
		Cluster:  datamodel.ClusterID(opts.Cluster),
	}

	if opts.HasCommand {
		req := datamodel.InvokeRequest{Path: datamodel.ConcreteCommandPath{
			Endpoint: cluster.Endpoint,
			Cluster:  cluster.Cluster,
			Command:  datamodel.CommandID(opts.Command),
		}}
		if _, err := p.Invoke(ctx, req, nil, nil); err != nil {
			return fmt.Errorf("invoke %s: %w (status %s)", req.Path, err, datamodel.ErrorToStatus(err))
		}
		fmt.Fprintf(stdout, "invoked %s\n", req.Path)
	}

	if opts.HasAttribute {
		path := datamodel.ConcreteAttributePath{
			Endpoint:  cluster.Endpoint,
			Cluster:   cluster.Cluster,
			Attribute: datamodel.AttributeID(opts.Attribute),
		}
		if opts.HasWriteUint {
			err := writeAttribute(ctx, p, path, false, func(w *tlv.Writer, tag tlv.Tag) error {
				return w.PutUint(tag, opts.WriteUint)
			})
			if err != nil {
				return fmt.Errorf("write %s: %w (status %s)", path, err, datamodel.ErrorToStatus(err))
			}
		}
		value, err := readAttribute(ctx, p, path)
		if err != nil {
			return fmt.Errorf("read %s: %w (status %s)", path, err, datamodel.ErrorToStatus(err))
		}
		fmt.Fprintf(stdout, "%s = %s\n", path, value)
	} else if !opts.HasCommand {
		if err := dump(ctx, stdout, p); err != nil {
			return err
		}
	}

	if snap != nil && tracker.dirty {
		if err := snap.Save(); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		log.Infof("Saved snapshot %s", snap.InstanceID())
	}
	return nil
}

// dump prints every attribute of every cluster, walking the provider's
// iteration API as a wildcard read would.
func dump(ctx context.Context, w io.Writer, p *provider.Provider) error {
	for ep := p.FirstEndpoint(); ep != datamodel.InvalidEndpointID; ep = p.NextEndpoint(ep) {
		fmt.Fprintf(w, "endpoint %d\n", ep)
		for c := p.FirstCluster(ep); c.Path.IsValid(); c = p.NextCluster(c.Path) {
			fmt.Fprintf(w, "  cluster 0x%04X (data version %d)\n", c.Path.Cluster, c.Info.DataVersion)
			for a := p.FirstAttribute(c.Path); a.Path.IsValid(); a = p.NextAttribute(a.Path) {
				value, err := readExpanded(ctx, p, a.Path)
				if err != nil {
					value = fmt.Sprintf("<%s>", datamodel.ErrorToStatus(err))
				}
				fmt.Fprintf(w, "    0x%04X %-14s %s\n", a.Path.Attribute, a.Info.Type, value)
			}
		}
	}
	return nil
}
