package storage

import (
	"sync"

	"github.com/backkem/dmprovider/pkg/codec"
	"github.com/backkem/dmprovider/pkg/datamodel"
)

// Faulty wraps an AttributeStorage and fails selected paths with a fixed
// error, such as datamodel.ErrBusy or datamodel.ErrFailure.
type Faulty struct {
	inner datamodel.AttributeStorage

	mu          sync.Mutex
	readFaults  map[datamodel.ConcreteAttributePath]error
	writeFaults map[datamodel.ConcreteAttributePath]error
}

var _ datamodel.AttributeStorage = (*Faulty)(nil)

func NewFaulty(inner datamodel.AttributeStorage) *Faulty {
	return &Faulty{
		inner:       inner,
		readFaults:  make(map[datamodel.ConcreteAttributePath]error),
		writeFaults: make(map[datamodel.ConcreteAttributePath]error),
	}
}

// FailReads makes reads of path return err. A nil err clears the fault.
func (f *Faulty) FailReads(path datamodel.ConcreteAttributePath, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	setFault(f.readFaults, path, err)
}

// FailWrites makes writes of path return err. A nil err clears the fault.
func (f *Faulty) FailWrites(path datamodel.ConcreteAttributePath, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	setFault(f.writeFaults, path, err)
}

func setFault(m map[datamodel.ConcreteAttributePath]error, path datamodel.ConcreteAttributePath, err error) {
	if err == nil {
		delete(m, path)
		return
	}
	m[path] = err
}

func (f *Faulty) ReadRaw(path datamodel.ConcreteAttributePath, buf []byte) (int, codec.AttributeType, error) {
	f.mu.Lock()
	err := f.readFaults[path]
	f.mu.Unlock()
	if err != nil {
		return 0, codec.TypeUnknown, err
	}
	return f.inner.ReadRaw(path, buf)
}

func (f *Faulty) WriteRaw(path datamodel.ConcreteAttributePath, data []byte, t codec.AttributeType) error {
	f.mu.Lock()
	err := f.writeFaults[path]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.inner.WriteRaw(path, data, t)
}
