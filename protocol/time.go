package protocol

import "errors"

// Message IDs. Registration order on the board must match
const (
	MsgTimeReport = 0 // time_report ticks=%u msec=%u sec=%u offset=%i
	CmdGetTime    = 1 // get_time
	CmdSetTime    = 2 // set_time sec=%u
	CmdAdjustTime = 3 // adjust_time delta=%i
	MsgTimeStatus = 4 // time_status cmd=%c status=%c

	MsgIdentifyResponse = 5 // identify_response offset=%u data=%*s
	CmdIdentify         = 6 // identify offset=%u count=%c
)

// Status codes carried by time_status
const (
	StatusOK             = 0
	StatusUnknownCommand = 1
	StatusBadArguments   = 2

	// time_status cmd value for command IDs above 254
	StatusCommandOverflow = 0xFF
)

var ErrUnexpectedMessage = errors.New("unexpected message ID")

// TimeReport is the board's view of its clocks
type TimeReport struct {
	Ticks  uint32
	Msec   uint32
	Sec    uint32 // wall seconds
	Offset int32  // wall seconds minus internal seconds
}

// UptimeSeconds returns the internal (unadjusted) second count
func (r TimeReport) UptimeSeconds() uint32 {
	return r.Sec - uint32(r.Offset)
}

// EncodeTimeReport writes a time_report message including its ID
func EncodeTimeReport(output OutputBuffer, r TimeReport) {
	EncodeVLQUint(output, MsgTimeReport)
	EncodeVLQUint(output, r.Ticks)
	EncodeVLQUint(output, r.Msec)
	EncodeVLQUint(output, r.Sec)
	EncodeVLQInt(output, r.Offset)
}

// DecodeTimeReport decodes the arguments of a time_report message
func DecodeTimeReport(data *[]byte) (TimeReport, error) {
	var r TimeReport
	var err error
	if r.Ticks, err = DecodeVLQUint(data); err != nil {
		return r, err
	}
	if r.Msec, err = DecodeVLQUint(data); err != nil {
		return r, err
	}
	if r.Sec, err = DecodeVLQUint(data); err != nil {
		return r, err
	}
	if r.Offset, err = DecodeVLQInt(data); err != nil {
		return r, err
	}
	return r, nil
}

// TimeStatus reports the outcome of a command that produced no time report
type TimeStatus struct {
	Command uint8
	Status  uint8
}

// EncodeTimeStatus writes a time_status message including its ID
func EncodeTimeStatus(output OutputBuffer, s TimeStatus) {
	EncodeVLQUint(output, MsgTimeStatus)
	EncodeVLQUint(output, uint32(s.Command))
	EncodeVLQUint(output, uint32(s.Status))
}

// DecodeTimeStatus decodes the arguments of a time_status message
func DecodeTimeStatus(data *[]byte) (TimeStatus, error) {
	cmd, err := DecodeVLQUint(data)
	if err != nil {
		return TimeStatus{}, err
	}
	status, err := DecodeVLQUint(data)
	if err != nil {
		return TimeStatus{}, err
	}
	return TimeStatus{Command: uint8(cmd), Status: uint8(status)}, nil
}

// EncodeGetTime writes a get_time command
func EncodeGetTime(output OutputBuffer) {
	EncodeVLQUint(output, CmdGetTime)
}

// EncodeSetTime writes a set_time command
func EncodeSetTime(output OutputBuffer, sec uint32) {
	EncodeVLQUint(output, CmdSetTime)
	EncodeVLQUint(output, sec)
}

// DecodeSetTime decodes the arguments of a set_time command
func DecodeSetTime(data *[]byte) (uint32, error) {
	return DecodeVLQUint(data)
}

// EncodeAdjustTime writes an adjust_time command
func EncodeAdjustTime(output OutputBuffer, delta int32) {
	EncodeVLQUint(output, CmdAdjustTime)
	EncodeVLQInt(output, delta)
}

// DecodeAdjustTime decodes the arguments of an adjust_time command
func DecodeAdjustTime(data *[]byte) (int32, error) {
	return DecodeVLQInt(data)
}

// Reply is a decoded board-to-host message
type Reply struct {
	Sequence uint8
	ID       uint32
	Report   TimeReport // valid when ID == MsgTimeReport
	Status   TimeStatus // valid when ID == MsgTimeStatus

	Identify IdentifyResponse // valid when ID == MsgIdentifyResponse
}

// DecodeReply decodes the first message in a board-to-host frame
func DecodeReply(msg Message) (Reply, error) {
	payload := msg.Payload
	reply := Reply{Sequence: msg.Sequence}

	id, err := DecodeVLQUint(&payload)
	if err != nil {
		return reply, err
	}
	reply.ID = id

	switch id {
	case MsgTimeReport:
		reply.Report, err = DecodeTimeReport(&payload)
	case MsgTimeStatus:
		reply.Status, err = DecodeTimeStatus(&payload)
	case MsgIdentifyResponse:
		reply.Identify, err = DecodeIdentifyResponse(&payload)
	default:
		err = ErrUnexpectedMessage
	}
	return reply, err
}
