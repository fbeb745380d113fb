package protocol

import "errors"

var (
	ErrFrameTooLong = errors.New("frame exceeds maximum length")
	ErrBufferFull   = errors.New("decoder buffer full")
)

// EncodeFrame writes a complete frame to output. body writes the payload
func EncodeFrame(output OutputBuffer, seq uint8, body func(output OutputBuffer)) error {
	cursor := output.CurPosition()

	// Header: length placeholder and sequence
	output.Output([]byte{0, seq})
	if body != nil {
		body(output)
	}

	frame := output.DataSince(cursor)
	msgLen := len(frame) + MessageTrailerSize
	if msgLen > MessageLengthMax {
		return ErrFrameTooLong
	}
	output.Update(cursor, uint8(msgLen))

	trailer := crcTrailer(output.DataSince(cursor))
	output.Output(trailer[:])
	return nil
}

// BuildFrame returns a standalone frame holding the given payload writer
func BuildFrame(seq uint8, body func(output OutputBuffer)) ([]byte, error) {
	scratch := NewScratchOutput()
	if err := EncodeFrame(scratch, seq, body); err != nil {
		return nil, err
	}
	frame := make([]byte, len(scratch.Result()))
	copy(frame, scratch.Result())
	return frame, nil
}

// Decoder extracts frames from a byte stream. Corrupt data is skipped by
// resynchronizing on the next sync byte
type Decoder struct {
	input        *FifoBuffer
	synchronized bool

	// Frames discarded for bad length, sequence, CRC or trailer
	Errors uint32
}

// NewDecoder creates a decoder buffering up to capacity bytes
func NewDecoder(capacity int) *Decoder {
	return &Decoder{
		input:        NewFifoBuffer(capacity),
		synchronized: true,
	}
}

// Write queues received bytes. Returns ErrBufferFull if not everything fit;
// call Next to drain and retry with the rest
func (d *Decoder) Write(data []byte) (int, error) {
	n := d.input.Write(data)
	if n < len(data) {
		return n, ErrBufferFull
	}
	return n, nil
}

// Next returns the next complete frame, or false if more data is needed.
// The returned payload is a copy
func (d *Decoder) Next() (Message, bool) {
	data := d.input.Data()
	defer func() {
		consumed := d.input.Available() - len(data)
		if consumed > 0 {
			d.input.Pop(consumed)
		}
	}()

	for len(data) > 0 {
		if !d.synchronized {
			// Skip everything up to and including the next sync byte
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			d.synchronized = true
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.desync()
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}

		// Wait for the full frame
		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		payload := make([]byte, msgLen-MessageLengthMin)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		data = data[msgLen:]
		return Message{Sequence: seq, Payload: payload}, true
	}
	return Message{}, false
}

func (d *Decoder) desync() {
	d.synchronized = false
	d.Errors++
}

// Buffered returns the number of bytes waiting to be decoded
func (d *Decoder) Buffered() int {
	return d.input.Available()
}

// Reset drops buffered data and resynchronizes
func (d *Decoder) Reset() {
	d.input.Reset()
	d.synchronized = true
}
