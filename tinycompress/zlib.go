// Package tinycompress reads and writes zlib streams built from stored
// (uncompressed) DEFLATE blocks. The output is readable by any zlib
// decoder, and the encoder needs no tables, which keeps it small enough for
// firmware. Decode only accepts stored blocks
package tinycompress

import (
	"errors"
	"hash/adler32"
	"io"
)

const (
	headerCMF = 0x78
	headerFLG = 0x9C

	// Largest stored block DEFLATE allows
	maxStoredBlock = 0xFFFF

	blockFinal  = 0x01
	blockStored = 0x00
)

var (
	ErrHeader      = errors.New("tinycompress: invalid zlib header")
	ErrBlockType   = errors.New("tinycompress: only stored blocks are supported")
	ErrBlockLength = errors.New("tinycompress: block length check failed")
	ErrTruncated   = errors.New("tinycompress: truncated stream")
	ErrChecksum    = errors.New("tinycompress: adler-32 mismatch")
)

// EncodedLen returns the size of the stream Encode produces for n bytes
func EncodedLen(n int) int {
	blocks := (n + maxStoredBlock - 1) / maxStoredBlock
	if blocks == 0 {
		blocks = 1
	}
	return 2 + blocks*5 + n + 4
}

// Encode returns data as a zlib stream
func Encode(data []byte) []byte {
	return AppendEncode(make([]byte, 0, EncodedLen(len(data))), data)
}

// AppendEncode appends the zlib stream for data to dst
func AppendEncode(dst, data []byte) []byte {
	dst = append(dst, headerCMF, headerFLG)

	rest := data
	for {
		n := len(rest)
		if n > maxStoredBlock {
			n = maxStoredBlock
		}
		header := byte(blockStored)
		if n == len(rest) {
			header |= blockFinal
		}
		length := uint16(n)
		dst = append(dst, header,
			byte(length), byte(length>>8),
			byte(^length), byte(^length>>8))
		dst = append(dst, rest[:n]...)
		rest = rest[n:]
		if header&blockFinal != 0 {
			break
		}
	}

	sum := adler32.Checksum(data)
	return append(dst, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))
}

// Decode returns the data held in a zlib stream of stored blocks
func Decode(stream []byte) ([]byte, error) {
	if len(stream) < 2 || stream[0]&0x0F != 8 || (uint16(stream[0])<<8|uint16(stream[1]))%31 != 0 {
		return nil, ErrHeader
	}
	if stream[1]&0x20 != 0 {
		// Preset dictionaries are not used
		return nil, ErrHeader
	}
	pos := 2

	var out []byte
	for {
		if pos+5 > len(stream) {
			return nil, ErrTruncated
		}
		header := stream[pos]
		if header>>1&0x03 != blockStored {
			return nil, ErrBlockType
		}
		length := uint16(stream[pos+1]) | uint16(stream[pos+2])<<8
		nlength := uint16(stream[pos+3]) | uint16(stream[pos+4])<<8
		if length != ^nlength {
			return nil, ErrBlockLength
		}
		pos += 5

		if pos+int(length) > len(stream) {
			return nil, ErrTruncated
		}
		out = append(out, stream[pos:pos+int(length)]...)
		pos += int(length)

		if header&blockFinal != 0 {
			break
		}
	}

	if pos+4 > len(stream) {
		return nil, ErrTruncated
	}
	expected := uint32(stream[pos])<<24 | uint32(stream[pos+1])<<16 |
		uint32(stream[pos+2])<<8 | uint32(stream[pos+3])
	if adler32.Checksum(out) != expected {
		return nil, ErrChecksum
	}
	return out, nil
}

// Writer buffers everything written to it and emits the zlib stream on
// Close
type Writer struct {
	output io.Writer
	buf    []byte
	closed bool
}

// NewWriter creates a Writer sending the stream to w
func NewWriter(w io.Writer) *Writer {
	return &Writer{output: w}
}

// Write implements io.Writer
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	w.buf = append(w.buf, p...)
	return len(p), nil
}

// Close writes the stream. It does not close the underlying writer
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_, err := w.output.Write(Encode(w.buf))
	w.buf = nil
	return err
}
