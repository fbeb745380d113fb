package protocol

// OutputBuffer provides an abstraction for writing outgoing protocol data
type OutputBuffer interface {
	// Output writes data to the buffer
	Output(data []byte)

	// CurPosition returns the current write position
	CurPosition() int

	// Update modifies a byte at a specific position
	Update(pos int, val byte)

	// DataSince returns data from a specific position to current
	DataSince(pos int) []byte
}

// ScratchOutput implements OutputBuffer using a fixed-size scratch buffer.
// Writes past the end are dropped and counted
type ScratchOutput struct {
	buf     [MessageMax]byte
	pos     int
	dropped int
}

// NewScratchOutput creates a new ScratchOutput
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

func (s *ScratchOutput) Output(data []byte) {
	n := copy(s.buf[s.pos:], data)
	s.pos += n
	s.dropped += len(data) - n
}

func (s *ScratchOutput) CurPosition() int {
	return s.pos
}

func (s *ScratchOutput) Update(pos int, val byte) {
	if pos < s.pos {
		s.buf[pos] = val
	}
}

func (s *ScratchOutput) DataSince(pos int) []byte {
	if pos > s.pos {
		return nil
	}
	return s.buf[pos:s.pos]
}

// Result returns the accumulated output data
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

// Dropped returns the number of bytes that did not fit since the last Reset
func (s *ScratchOutput) Dropped() int {
	return s.dropped
}

// Reset clears the buffer
func (s *ScratchOutput) Reset() {
	s.pos = 0
	s.dropped = 0
}

// FifoBuffer queues received bytes for the frame decoder. Unread data is
// kept contiguous so a frame can be parsed in place; consumed space is
// reclaimed by moving the unread bytes to the front when a write needs room
type FifoBuffer struct {
	buf  []byte
	head int // first unread byte
	tail int // one past the last unread byte
}

// NewFifoBuffer creates a FifoBuffer holding up to capacity bytes
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{buf: make([]byte, capacity)}
}

// Write appends as much of data as fits and returns the count
func (f *FifoBuffer) Write(data []byte) int {
	if len(data) > len(f.buf)-f.tail && f.head > 0 {
		f.tail = copy(f.buf, f.buf[f.head:f.tail])
		f.head = 0
	}
	n := copy(f.buf[f.tail:], data)
	f.tail += n
	return n
}

// Available returns the number of unread bytes
func (f *FifoBuffer) Available() int {
	return f.tail - f.head
}

// Free returns how many more bytes Write accepts
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.Available()
}

// Data returns the unread bytes. The slice is valid until the next Write
func (f *FifoBuffer) Data() []byte {
	return f.buf[f.head:f.tail]
}

// Pop discards n unread bytes
func (f *FifoBuffer) Pop(n int) {
	if n >= f.Available() {
		f.Reset()
		return
	}
	f.head += n
}

// IsEmpty reports whether there is nothing to read
func (f *FifoBuffer) IsEmpty() bool {
	return f.head == f.tail
}

// Reset discards everything
func (f *FifoBuffer) Reset() {
	f.head = 0
	f.tail = 0
}
