package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/pion/logging"
	"golang.org/x/crypto/blake2b"

	"github.com/backkem/dmprovider/pkg/codec"
	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/metadata"
)

// Snapshot errors.
var (
	ErrSnapshotChecksum = errors.New("storage: snapshot checksum mismatch")
	ErrSnapshotVersion  = errors.New("storage: unsupported snapshot version")
)

const snapshotFormatVersion = 1

var (
	snapshotEncMode cbor.EncMode
	snapshotDecMode cbor.DecMode
)

func init() {
	var err error
	snapshotEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("storage: CBOR encoder mode: %v", err))
	}
	snapshotDecMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("storage: CBOR decoder mode: %v", err))
	}
}

// snapshotFile is the on-disk layout. Body is the CBOR encoding of the
// record list; Checksum is its BLAKE2b-256 digest.
type snapshotFile struct {
	Version    uint8  `cbor:"1,keyasint"`
	InstanceID string `cbor:"2,keyasint"`
	Checksum   []byte `cbor:"3,keyasint"`
	Body       []byte `cbor:"4,keyasint"`
}

type snapshotRecord struct {
	Endpoint  uint16 `cbor:"1,keyasint"`
	Cluster   uint32 `cbor:"2,keyasint"`
	Attribute uint32 `cbor:"3,keyasint"`
	Type      uint8  `cbor:"4,keyasint"`
	Data      []byte `cbor:"5,keyasint"`
}

// SnapshotConfig configures a Snapshot.
type SnapshotConfig struct {
	// Path is the snapshot file. Required.
	Path string

	// LoggerFactory is optional.
	LoggerFactory logging.LoggerFactory
}

// Snapshot saves and restores the non-volatile attributes of a Memory store.
type Snapshot struct {
	path       string
	reg        *metadata.Registry
	mem        *Memory
	instanceID uuid.UUID
	log        logging.LeveledLogger
}

// NewSnapshot binds a snapshot file to a store and the registry it was
// built from.
func NewSnapshot(mem *Memory, reg *metadata.Registry, cfg SnapshotConfig) (*Snapshot, error) {
	if mem == nil || reg == nil {
		return nil, errors.New("storage: snapshot needs a store and a registry")
	}
	if cfg.Path == "" {
		return nil, errors.New("storage: snapshot path is required")
	}
	s := &Snapshot{
		path:       cfg.Path,
		reg:        reg,
		mem:        mem,
		instanceID: uuid.New(),
	}
	if cfg.LoggerFactory != nil {
		s.log = cfg.LoggerFactory.NewLogger("dm-storage")
	}
	return s, nil
}

// InstanceID identifies the process that writes this snapshot. Load adopts
// the ID found in the file.
func (s *Snapshot) InstanceID() uuid.UUID {
	return s.instanceID
}

// Save writes every non-volatile attribute to the snapshot file. The file is
// replaced atomically.
func (s *Snapshot) Save() error {
	var records []snapshotRecord
	var readErr error
	s.reg.ForEachAttribute(func(path datamodel.ConcreteAttributePath, a *metadata.Attribute) {
		if readErr != nil || a.Quality&datamodel.AttrQualityNonVolatile == 0 || !a.Type.HasStorage() {
			return
		}
		buf := make([]byte, a.Type.StorageSize(a.MaxLength))
		n, t, err := s.mem.ReadRaw(path, buf)
		if err != nil {
			readErr = err
			return
		}
		records = append(records, snapshotRecord{
			Endpoint:  uint16(path.Endpoint),
			Cluster:   uint32(path.Cluster),
			Attribute: uint32(path.Attribute),
			Type:      uint8(t),
			Data:      buf[:n],
		})
	})
	if readErr != nil {
		return readErr
	}

	body, err := snapshotEncMode.Marshal(records)
	if err != nil {
		return fmt.Errorf("storage: encode snapshot body: %w", err)
	}
	sum := blake2b.Sum256(body)
	data, err := snapshotEncMode.Marshal(snapshotFile{
		Version:    snapshotFormatVersion,
		InstanceID: s.instanceID.String(),
		Checksum:   sum[:],
		Body:       body,
	})
	if err != nil {
		return fmt.Errorf("storage: encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: %w", err)
	}

	if s.log != nil {
		s.log.Infof("Saved snapshot %s with %d attributes", s.path, len(records))
	}
	return nil
}

// Load restores attributes from the snapshot file. A missing file is not an
// error. Records that no longer match the registry are skipped.
func (s *Snapshot) Load() (int, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if s.log != nil {
			s.log.Infof("No snapshot at %s", s.path)
		}
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: %w", err)
	}

	var file snapshotFile
	if err := snapshotDecMode.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("storage: decode snapshot: %w", err)
	}
	if file.Version != snapshotFormatVersion {
		return 0, fmt.Errorf("%w: %d", ErrSnapshotVersion, file.Version)
	}
	sum := blake2b.Sum256(file.Body)
	if !bytes.Equal(sum[:], file.Checksum) {
		return 0, ErrSnapshotChecksum
	}
	if id, err := uuid.Parse(file.InstanceID); err == nil {
		s.instanceID = id
	}

	var records []snapshotRecord
	if err := snapshotDecMode.Unmarshal(file.Body, &records); err != nil {
		return 0, fmt.Errorf("storage: decode snapshot body: %w", err)
	}

	restored := 0
	for _, rec := range records {
		path := datamodel.ConcreteAttributePath{
			Endpoint:  datamodel.EndpointID(rec.Endpoint),
			Cluster:   datamodel.ClusterID(rec.Cluster),
			Attribute: datamodel.AttributeID(rec.Attribute),
		}
		a := s.reg.Attribute(path)
		if a == nil || a.Quality&datamodel.AttrQualityNonVolatile == 0 || a.Type != codec.AttributeType(rec.Type) {
			if s.log != nil {
				s.log.Warnf("Skipping snapshot record for %v", path)
			}
			continue
		}
		if err := s.mem.WriteRaw(path, rec.Data, a.Type); err != nil {
			if s.log != nil {
				s.log.Warnf("Skipping snapshot record for %v: %v", path, err)
			}
			continue
		}
		restored++
	}

	if s.log != nil {
		s.log.Infof("Restored %d attributes from %s", restored, s.path)
	}
	return restored, nil
}
