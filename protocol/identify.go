package protocol

// IdentifyChunkMax is the largest dictionary chunk one identify_response
// carries. It leaves room for the message ID, offset and length prefix
const IdentifyChunkMax = 40

// IdentifyResponse is one chunk of the board's compressed dictionary
type IdentifyResponse struct {
	Offset uint32
	Data   []byte
}

// EncodeIdentify writes an identify command asking for count bytes of the
// dictionary starting at offset
func EncodeIdentify(output OutputBuffer, offset uint32, count uint8) {
	EncodeVLQUint(output, CmdIdentify)
	EncodeVLQUint(output, offset)
	EncodeVLQUint(output, uint32(count))
}

// DecodeIdentify decodes the arguments of an identify command
func DecodeIdentify(data *[]byte) (offset uint32, count uint8, err error) {
	if offset, err = DecodeVLQUint(data); err != nil {
		return 0, 0, err
	}
	c, err := DecodeVLQUint(data)
	if err != nil {
		return 0, 0, err
	}
	return offset, uint8(c), nil
}

// EncodeIdentifyResponse writes an identify_response message including its ID
func EncodeIdentifyResponse(output OutputBuffer, r IdentifyResponse) {
	EncodeVLQUint(output, MsgIdentifyResponse)
	EncodeVLQUint(output, r.Offset)
	EncodeVLQBytes(output, r.Data)
}

// DecodeIdentifyResponse decodes the arguments of an identify_response.
// Data is copied out of the payload
func DecodeIdentifyResponse(data *[]byte) (IdentifyResponse, error) {
	offset, err := DecodeVLQUint(data)
	if err != nil {
		return IdentifyResponse{}, err
	}
	chunk, err := DecodeVLQBytes(data)
	if err != nil {
		return IdentifyResponse{}, err
	}
	r := IdentifyResponse{Offset: offset, Data: make([]byte, len(chunk))}
	copy(r.Data, chunk)
	return r, nil
}
