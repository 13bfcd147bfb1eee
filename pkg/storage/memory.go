// Package storage provides attribute byte stores for the data-model provider.
//
// Memory keeps every attribute that has a storage form in RAM, sized and
// initialised from the metadata registry. Snapshot persists the
// non-volatile subset of a Memory to a file. Faulty wraps any store and
// injects busy or failure outcomes.
package storage

import (
	"fmt"
	"sync"

	"github.com/backkem/dmprovider/pkg/codec"
	"github.com/backkem/dmprovider/pkg/datamodel"
	"github.com/backkem/dmprovider/pkg/metadata"
)

type slot struct {
	t        codec.AttributeType
	capacity int
	data     []byte
}

// Memory is an in-memory AttributeStorage. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	slots map[datamodel.ConcreteAttributePath]*slot
}

var _ datamodel.AttributeStorage = (*Memory)(nil)

// NewMemory allocates a slot for every attribute of reg that has a storage
// form and fills it with the attribute's default.
func NewMemory(reg *metadata.Registry) (*Memory, error) {
	m := &Memory{slots: make(map[datamodel.ConcreteAttributePath]*slot)}

	var firstErr error
	reg.ForEachAttribute(func(path datamodel.ConcreteAttributePath, a *metadata.Attribute) {
		if firstErr != nil || !a.Type.HasStorage() {
			return
		}
		initial, err := initialValue(a)
		if err != nil {
			firstErr = fmt.Errorf("storage: %v: %w", path, err)
			return
		}
		s := &slot{t: a.Type, capacity: a.Type.StorageSize(a.MaxLength)}
		s.data = append(make([]byte, 0, s.capacity), initial...)
		m.slots[path] = s
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return m, nil
}

func initialValue(a *metadata.Attribute) ([]byte, error) {
	nullable := a.Quality&datamodel.AttrQualityNullable != 0
	switch {
	case a.Default != nil:
		return codec.FromValue(a.Type, nullable, a.MaxLength, a.Default)
	case nullable:
		return codec.NullValue(a.Type)
	case a.Type.IsString():
		// Zero length prefix.
		return make([]byte, a.Type.Width()), nil
	default:
		return make([]byte, a.Type.StorageSize(0)), nil
	}
}

// ReadRaw copies the stored value of path into buf.
func (m *Memory) ReadRaw(path datamodel.ConcreteAttributePath, buf []byte) (int, codec.AttributeType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.slots[path]
	if !ok {
		return 0, codec.TypeUnknown, fmt.Errorf("%w: no storage for %v", datamodel.ErrFailure, path)
	}
	if len(buf) < len(s.data) {
		return 0, s.t, fmt.Errorf("%w: %v needs %d bytes, buffer has %d", datamodel.ErrFailure, path, len(s.data), len(buf))
	}
	return copy(buf, s.data), s.t, nil
}

// WriteRaw replaces the stored value of path. The type must match the slot
// and the value must fit its capacity.
func (m *Memory) WriteRaw(path datamodel.ConcreteAttributePath, data []byte, t codec.AttributeType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[path]
	if !ok {
		return fmt.Errorf("%w: no storage for %v", datamodel.ErrFailure, path)
	}
	if t != s.t {
		return fmt.Errorf("%w: %v holds %s, not %s", datamodel.ErrFailure, path, s.t, t)
	}
	if len(data) > s.capacity {
		return fmt.Errorf("%w: %v holds %d bytes, got %d", datamodel.ErrFailure, path, s.capacity, len(data))
	}
	s.data = append(s.data[:0], data...)
	return nil
}

// Len returns the number of attribute slots.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slots)
}
