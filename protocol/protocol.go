// Package protocol implements the framed serial protocol used to carry time
// messages between a board and the host.
//
// Frame layout (Klipper message block):
//
//	[len][seq][payload ...][crc16 hi][crc16 lo][0x7E]
//
// len counts the whole frame. The payload is a sequence of VLQ encoded
// integers starting with a message ID
package protocol

// Version represents the protocol version
const Version = "0.1.0"

// Frame constants
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePayloadMax  = MessageLengthMax - MessageLengthMin
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Scratch buffer size, room for several frames
	MessageMax = 512

	// Message sequence masks
	MessageSeqMask = 0x0F

	// Sequence carried by board messages that answer no request.
	// Hosts never use it for requests
	SequenceReport = MessageDest
)

// Message is a decoded frame
type Message struct {
	Sequence uint8
	Payload  []byte // frame data without header/trailer
}

// NextRequestSequence returns the sequence following seq, skipping SequenceReport
func NextRequestSequence(seq uint8) uint8 {
	seq = NextSequence(seq)
	if seq == SequenceReport {
		seq = NextSequence(seq)
	}
	return seq
}

// NextSequence returns the sequence number following seq (0x10-0x1F, wrapping)
func NextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}
