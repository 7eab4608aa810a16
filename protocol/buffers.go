package protocol

import (
	"errors"
	"io"
	"sync"
)

// ErrBufferEmpty is returned by ReadByte when no byte is buffered
var ErrBufferEmpty = errors.New("buffer empty")

// OutputBuffer provides an abstraction for writing outgoing protocol data
type OutputBuffer interface {
	// Output writes data to the buffer
	Output(data []byte)

	// OutputString writes s to the buffer
	OutputString(s string)
}

// ScratchOutput implements OutputBuffer using a fixed-size scratch buffer.
// Data past ResponseMax is dropped.
type ScratchOutput struct {
	buf [ResponseMax]byte
	pos int
}

// NewScratchOutput creates a new ScratchOutput
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{pos: 0}
}

func (s *ScratchOutput) Output(data []byte) {
	n := copy(s.buf[s.pos:], data)
	s.pos += n
}

func (s *ScratchOutput) OutputString(str string) {
	n := copy(s.buf[s.pos:], str)
	s.pos += n
}

// Result returns the accumulated output data
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

// Reset clears the buffer
func (s *ScratchOutput) Reset() {
	s.pos = 0
}

// FifoBuffer is a circular buffer for serial I/O
type FifoBuffer struct {
	buf   []byte
	read  int
	write int
	size  int
}

// NewFifoBuffer creates a new FifoBuffer holding up to capacity-1 bytes
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:  make([]byte, capacity),
		size: capacity,
	}
}

// Write appends data to the FIFO buffer and returns how many bytes fit
func (f *FifoBuffer) Write(data []byte) int {
	written := 0
	for _, b := range data {
		nextWrite := (f.write + 1) % f.size
		if nextWrite == f.read {
			// Buffer full
			break
		}
		f.buf[f.write] = b
		f.write = nextWrite
		written++
	}
	return written
}

// Read reads up to len(data) bytes from the FIFO buffer
func (f *FifoBuffer) Read(data []byte) int {
	read := 0
	for i := range data {
		if f.read == f.write {
			// Buffer empty
			break
		}
		data[i] = f.buf[f.read]
		f.read = (f.read + 1) % f.size
		read++
	}
	return read
}

// ReadByte removes and returns the oldest byte
func (f *FifoBuffer) ReadByte() (byte, error) {
	if f.read == f.write {
		return 0, ErrBufferEmpty
	}
	b := f.buf[f.read]
	f.read = (f.read + 1) % f.size
	return b, nil
}

// Available returns the number of bytes available for reading
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Free returns the number of bytes available for writing
func (f *FifoBuffer) Free() int {
	return f.size - f.Available() - 1
}

// IsEmpty returns true if the buffer is empty
func (f *FifoBuffer) IsEmpty() bool {
	return f.read == f.write
}

// Reset clears the buffer
func (f *FifoBuffer) Reset() {
	f.read = 0
	f.write = 0
}

// SharedFifo is a FifoBuffer shared between a reader goroutine that fills
// it and the main loop that drains it.
type SharedFifo struct {
	mu   sync.Mutex
	fifo *FifoBuffer
}

// NewSharedFifo creates a SharedFifo with the given capacity
func NewSharedFifo(capacity int) *SharedFifo {
	return &SharedFifo{fifo: NewFifoBuffer(capacity)}
}

// Write stores as much of data as fits and returns the count stored
func (s *SharedFifo) Write(data []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fifo.Write(data)
}

// Buffered returns the number of bytes waiting to be read
func (s *SharedFifo) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fifo.Available()
}

func (s *SharedFifo) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fifo.ReadByte()
}

// Free returns the space left for writing
func (s *SharedFifo) Free() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fifo.Free()
}

func (s *SharedFifo) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fifo.Reset()
}

// ByteSource is the non-blocking read half of a serial transport
type ByteSource interface {
	Buffered() int
	ReadByte() (byte, error)
}

// SplitTransport joins a ByteSource and a writer into one transport
type SplitTransport struct {
	In  ByteSource
	Out io.Writer
}

func (t SplitTransport) Buffered() int {
	return t.In.Buffered()
}

func (t SplitTransport) ReadByte() (byte, error) {
	return t.In.ReadByte()
}

func (t SplitTransport) Write(p []byte) (int, error) {
	return t.Out.Write(p)
}

// Flush flushes Out when it supports flushing
func (t SplitTransport) Flush() error {
	if f, ok := t.Out.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
