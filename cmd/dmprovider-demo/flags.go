package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pion/logging"
	"github.com/spf13/pflag"
)

// Options holds the CLI flags of the demo.
type Options struct {
	// RegistryPath is a YAML registry file. Empty uses the built-in
	// registry of an on/off light with a metering cluster.
	RegistryPath string

	// SnapshotPath persists non-volatile attributes between runs.
	// If empty, values live in memory only.
	SnapshotPath string

	LogLevel logging.LogLevel

	// Endpoint, Cluster and Attribute select a single attribute. With no
	// attribute set the whole data model is printed.
	Endpoint     uint16
	Cluster      uint32
	Attribute    uint32
	HasAttribute bool

	// WriteUint is written to the selected attribute before it is read.
	WriteUint    uint64
	HasWriteUint bool

	// Command is invoked on the selected cluster.
	Command    uint32
	HasCommand bool
}

// DefaultOptions returns Options selecting the light's OnOff cluster.
func DefaultOptions() Options {
	return Options{
		LogLevel: logging.LogLevelWarn,
		Endpoint: 1,
		Cluster:  0x0006,
	}
}

var logLevels = map[string]logging.LogLevel{
	"disabled": logging.LogLevelDisabled,
	"error":    logging.LogLevelError,
	"warn":     logging.LogLevelWarn,
	"info":     logging.LogLevelInfo,
	"debug":    logging.LogLevelDebug,
	"trace":    logging.LogLevelTrace,
}

// ParseFlags parses args into Options. IDs accept decimal or 0x-prefixed
// hex. It returns pflag.ErrHelp when help was requested.
func ParseFlags(args []string, stderr io.Writer) (Options, error) {
	o := DefaultOptions()
	var (
		logLevel  string
		cluster   string
		attribute string
		command   string
		writeUint string
	)

	fs := pflag.NewFlagSet("dmprovider-demo", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.RegistryPath, "registry", "", "YAML registry file (default: built-in light)")
	fs.StringVar(&o.SnapshotPath, "snapshot", "", "snapshot file for non-volatile attributes (default: none)")
	fs.StringVar(&logLevel, "log-level", "warn", "log level: disabled, error, warn, info, debug, trace")
	fs.Uint16Var(&o.Endpoint, "endpoint", o.Endpoint, "endpoint ID")
	fs.StringVar(&cluster, "cluster", fmt.Sprintf("0x%04X", o.Cluster), "cluster ID")
	fs.StringVar(&attribute, "attribute", "", "attribute ID to read (default: print everything)")
	fs.StringVar(&writeUint, "write-uint", "", "unsigned value to write to --attribute first")
	fs.StringVar(&command, "command", "", "command ID to invoke on --cluster")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	level, ok := logLevels[strings.ToLower(logLevel)]
	if !ok {
		return Options{}, fmt.Errorf("unknown log level %q", logLevel)
	}
	o.LogLevel = level

	var err error
	if o.Cluster, err = parseID(cluster, "cluster"); err != nil {
		return Options{}, err
	}
	if attribute != "" {
		if o.Attribute, err = parseID(attribute, "attribute"); err != nil {
			return Options{}, err
		}
		o.HasAttribute = true
	}
	if command != "" {
		if o.Command, err = parseID(command, "command"); err != nil {
			return Options{}, err
		}
		o.HasCommand = true
	}
	if writeUint != "" {
		if !o.HasAttribute {
			return Options{}, fmt.Errorf("--write-uint needs --attribute")
		}
		if o.WriteUint, err = strconv.ParseUint(writeUint, 0, 64); err != nil {
			return Options{}, fmt.Errorf("--write-uint: %w", err)
		}
		o.HasWriteUint = true
	}
	return o, nil
}

func parseID(s, name string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return uint32(v), nil
}
