package core

import (
	"errors"

	"systime/protocol"
)

// TimeKeeper is the clock a TimeService serves. Clock and Guarded both
// implement it
type TimeKeeper interface {
	Snapshot() Snapshot
	Last() Snapshot
	Set(wall uint32)
	Adjust(delta int32)
	Offset() int32
}

// ResponseWriter sends one encoded frame to the host. frame is reused after
// the call returns
type ResponseWriter func(frame []byte)

// TimeService answers time commands from the host.
//
// Every accepted time command is answered with a time_report carrying the
// request's sequence number, and identify with an identify_response.
// Rejected commands get a time_status instead. Unsolicited reports use
// protocol.SequenceReport
type TimeService struct {
	clock    TimeKeeper
	write    ResponseWriter
	registry *CommandRegistry
	dict     *Dictionary
	output   *protocol.ScratchOutput
	seq      uint8

	// Frames that could not be encoded
	Dropped uint32
}

// NewTimeService registers the time messages in wire ID order
func NewTimeService(clock TimeKeeper, write ResponseWriter) *TimeService {
	s := &TimeService{
		clock:    clock,
		write:    write,
		registry: NewCommandRegistry(),
		output:   protocol.NewScratchOutput(),
		seq:      protocol.SequenceReport,
	}
	s.dict = NewDictionary(s.registry, FirmwareVersion)

	s.registry.Register("time_report", "ticks=%u msec=%u sec=%u offset=%i", nil)
	s.registry.Register("get_time", "", s.handleGetTime)
	s.registry.Register("set_time", "sec=%u", s.handleSetTime)
	s.registry.Register("adjust_time", "delta=%i", s.handleAdjustTime)
	s.registry.Register("time_status", "cmd=%c status=%c", nil)
	s.registry.Register("identify_response", "offset=%u data=%*s", nil)
	s.registry.Register("identify", "offset=%u count=%c", s.handleIdentify)
	return s
}

// Registry returns the command registry, e.g. for dictionary export
func (s *TimeService) Registry() *CommandRegistry {
	return s.registry
}

// Dictionary returns the dictionary served by identify. Platforms add their
// constants to it
func (s *TimeService) Dictionary() *Dictionary {
	return s.dict
}

// Handle processes every command in a received frame. Processing stops at
// the first failing command, which is answered with a time_status
func (s *TimeService) Handle(msg protocol.Message) error {
	s.seq = msg.Sequence
	defer func() { s.seq = protocol.SequenceReport }()

	data := msg.Payload
	for len(data) > 0 {
		id, err := protocol.DecodeVLQUint(&data)
		if err != nil {
			return err
		}
		RecordEvent(EvtCommand, s.clock.Last().Msec, id, uint32(msg.Sequence))

		err = ErrUnknownCommand
		if id <= 0xFFFF {
			err = s.registry.Dispatch(uint16(id), &data)
		}
		if err != nil {
			status := uint8(protocol.StatusBadArguments)
			if errors.Is(err, ErrUnknownCommand) {
				status = protocol.StatusUnknownCommand
			}
			DebugPrintln("systime: command " + utoa(id) + " failed: " + err.Error())
			s.sendStatus(statusCommand(id), status)
			return err
		}
	}
	return nil
}

// Report sends an unsolicited time_report of a fresh snapshot
func (s *TimeService) Report() {
	s.sendReport()
}

// ReportEvery sends a time_report every intervalMs milliseconds from sched
func (s *TimeService) ReportEvery(sched *Scheduler, intervalMs uint32) *Timer {
	return sched.Every(intervalMs, s.Report)
}

func (s *TimeService) handleGetTime(data *[]byte) error {
	s.sendReport()
	return nil
}

func (s *TimeService) handleSetTime(data *[]byte) error {
	sec, err := protocol.DecodeSetTime(data)
	if err != nil {
		return err
	}
	s.clock.Set(sec)
	DebugPrintln("systime: set sec=" + utoa(sec))
	s.sendReport()
	return nil
}

func (s *TimeService) handleAdjustTime(data *[]byte) error {
	delta, err := protocol.DecodeAdjustTime(data)
	if err != nil {
		return err
	}
	s.clock.Adjust(delta)
	DebugPrintln("systime: adjust delta=" + itoa(delta))
	s.sendReport()
	return nil
}

func (s *TimeService) handleIdentify(data *[]byte) error {
	offset, count, err := protocol.DecodeIdentify(data)
	if err != nil {
		return err
	}
	if count > protocol.IdentifyChunkMax {
		count = protocol.IdentifyChunkMax
	}
	chunk := s.dict.Chunk(offset, count)
	s.send(func(output protocol.OutputBuffer) {
		protocol.EncodeIdentifyResponse(output, protocol.IdentifyResponse{Offset: offset, Data: chunk})
	})
	return nil
}

func (s *TimeService) sendReport() {
	snap := s.clock.Snapshot()
	report := protocol.TimeReport{
		Ticks:  snap.Ticks,
		Msec:   snap.Msec,
		Sec:    snap.Sec,
		Offset: s.clock.Offset(),
	}
	s.send(func(output protocol.OutputBuffer) {
		protocol.EncodeTimeReport(output, report)
	})
}

// statusCommand maps a command ID to the one-byte cmd field of time_status.
// IDs that do not fit become StatusCommandOverflow so they cannot be
// mistaken for a real command
func statusCommand(id uint32) uint8 {
	if id >= protocol.StatusCommandOverflow {
		return protocol.StatusCommandOverflow
	}
	return uint8(id)
}

func (s *TimeService) sendStatus(cmd, status uint8) {
	s.send(func(output protocol.OutputBuffer) {
		protocol.EncodeTimeStatus(output, protocol.TimeStatus{Command: cmd, Status: status})
	})
}

func (s *TimeService) send(body func(output protocol.OutputBuffer)) {
	s.output.Reset()
	if err := protocol.EncodeFrame(s.output, s.seq, body); err != nil || s.output.Dropped() > 0 {
		s.Dropped++
		return
	}
	if s.write != nil {
		s.write(s.output.Result())
	}
}
