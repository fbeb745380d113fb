package protocol

import "errors"

var (
	ErrInvalidVLQ     = errors.New("invalid VLQ encoding")
	ErrBufferTooSmall = errors.New("buffer too small for VLQ")
)

// VLQ integers are sent most significant group first, seven bits per byte,
// with the high bit marking a continuation. The first byte's 0x60 bits act as
// a sign, so small negative values stay short and a uint32 sent as its int32
// bit pattern survives the round trip.

// VLQLen returns the encoded size of v, 1 to 5 bytes
func VLQLen(v int32) int {
	n := 1
	for shift := 7; shift < 32; shift += 7 {
		// Values in [-2^(shift-2), 3*2^(shift-2)) fit in the bytes so far
		if int64(v) >= -(int64(1)<<(shift-2)) && int64(v) < int64(3)<<(shift-2) {
			break
		}
		n++
	}
	return n
}

// AppendVLQInt appends the encoding of v to dst
func AppendVLQInt(dst []byte, v int32) []byte {
	for i := VLQLen(v) - 1; i > 0; i-- {
		dst = append(dst, byte(v>>(7*i))&0x7F|0x80)
	}
	return append(dst, byte(v)&0x7F)
}

// EncodeVLQInt writes a signed integer
func EncodeVLQInt(output OutputBuffer, v int32) {
	var buf [5]byte
	output.Output(AppendVLQInt(buf[:0], v))
}

// EncodeVLQUint writes an unsigned integer
func EncodeVLQUint(output OutputBuffer, v uint32) {
	EncodeVLQInt(output, int32(v))
}

// DecodeVLQInt decodes a signed integer and advances data past it. On error
// data is left unchanged
func DecodeVLQInt(data *[]byte) (int32, error) {
	buf := *data
	if len(buf) == 0 {
		return 0, ErrBufferTooSmall
	}

	c := buf[0]
	v := uint32(c & 0x7F)
	if c&0x60 == 0x60 {
		v |= ^uint32(0x1F)
	}

	i := 1
	for c&0x80 != 0 {
		if i == 5 {
			return 0, ErrInvalidVLQ
		}
		if i >= len(buf) {
			return 0, ErrBufferTooSmall
		}
		c = buf[i]
		i++
		v = v<<7 | uint32(c&0x7F)
	}

	*data = buf[i:]
	return int32(v), nil
}

// DecodeVLQUint decodes an unsigned integer
func DecodeVLQUint(data *[]byte) (uint32, error) {
	v, err := DecodeVLQInt(data)
	return uint32(v), err
}

// EncodeVLQBytes writes a length-prefixed byte string
func EncodeVLQBytes(output OutputBuffer, data []byte) {
	EncodeVLQUint(output, uint32(len(data)))
	output.Output(data)
}

// DecodeVLQBytes decodes a length-prefixed byte string. The result aliases
// data
func DecodeVLQBytes(data *[]byte) ([]byte, error) {
	rest := *data
	length, err := DecodeVLQUint(&rest)
	if err != nil {
		return nil, err
	}
	if uint32(len(rest)) < length {
		return nil, ErrBufferTooSmall
	}
	*data = rest[length:]
	return rest[:length], nil
}
