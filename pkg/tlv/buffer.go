package tlv

// Buffer is an append-only byte buffer with a hard size limit. A Write that
// would cross the limit fails with ErrBufferFull and writes nothing.
//
// Part of the limit can be reserved up front so that closing octets of
// already open containers are guaranteed to fit.
type Buffer struct {
	data     []byte
	limit    int
	reserved int
}

// NewBuffer returns a Buffer that holds at most limit bytes.
func NewBuffer(limit int) *Buffer {
	return &Buffer{limit: limit}
}

func (b *Buffer) Write(p []byte) (int, error) {
	if len(b.data)+len(p) > b.limit-b.reserved {
		return 0, ErrBufferFull
	}
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *Buffer) Len() int { return len(b.data) }

// Truncate discards all but the first n bytes.
func (b *Buffer) Truncate(n int) {
	if n < len(b.data) {
		b.data = b.data[:n]
	}
}

// Bytes returns the buffered bytes. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte { return b.data }

// Remaining returns how many more bytes may be written.
func (b *Buffer) Remaining() int {
	return b.limit - b.reserved - len(b.data)
}

// Reserve sets aside n bytes of the limit. It fails if they are not available.
func (b *Buffer) Reserve(n int) error {
	if n > b.Remaining() {
		return ErrBufferFull
	}
	b.reserved += n
	return nil
}

// Release returns n previously reserved bytes to the writable budget.
func (b *Buffer) Release(n int) {
	b.reserved -= n
	if b.reserved < 0 {
		b.reserved = 0
	}
}
