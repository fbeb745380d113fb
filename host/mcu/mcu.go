// Package mcu talks to a board running the time firmware
package mcu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"systime/host/serial"
	"systime/protocol"
)

const (
	readBufferSize   = 256
	decoderCapacity  = 1024
	reportQueueDepth = 16

	idleBackoff = 10 * time.Millisecond
)

var (
	ErrClosed  = errors.New("connection closed")
	ErrBusy    = errors.New("all request sequence numbers in use")
	ErrNoReply = errors.New("board sent an unexpected reply")
)

// StatusError is returned when the board rejects a command
type StatusError struct {
	Command uint8
	Status  uint8
}

func (e *StatusError) Error() string {
	switch e.Status {
	case protocol.StatusUnknownCommand:
		return fmt.Sprintf("command %d: unknown command", e.Command)
	case protocol.StatusBadArguments:
		return fmt.Sprintf("command %d: bad arguments", e.Command)
	}
	return fmt.Sprintf("command %d: status %d", e.Command, e.Status)
}

// Report is a time report together with the host time it arrived
type Report struct {
	protocol.TimeReport
	Received time.Time
}

// MCU represents a connection to a board. Requests may be issued from
// several goroutines; replies are matched to requests by sequence number
type MCU struct {
	port serial.Port
	log  *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	seq     uint8
	pending map[uint8]chan protocol.Reply

	reports chan Report
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once

	decodeErrors uint32 // guarded by mu
	readErr      error  // set before stopped is closed

	// idleOnEOF is set for ports that report a read timeout as io.EOF.
	// Otherwise io.EOF means the board end has gone away.
	idleOnEOF bool
}

// Connect opens the serial port and starts reading from it
func Connect(cfg *serial.Config, log *zap.Logger) (*MCU, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("connected", zap.String("device", cfg.Device), zap.Int("baud", cfg.Baud))
	return newMCU(port, log, cfg.ReadTimeout > 0), nil
}

// New starts a connection on an already open port. The MCU owns the port.
// The first io.EOF from the port closes the connection.
func New(port serial.Port, log *zap.Logger) *MCU {
	return newMCU(port, log, false)
}

func newMCU(port serial.Port, log *zap.Logger, idleOnEOF bool) *MCU {
	if log == nil {
		log = zap.NewNop()
	}
	m := &MCU{
		port:      port,
		log:       log,
		seq:       protocol.SequenceReport,
		pending:   make(map[uint8]chan protocol.Reply),
		reports:   make(chan Report, reportQueueDepth),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		idleOnEOF: idleOnEOF,
	}
	go m.readLoop()
	return m
}

// Close stops the reader and closes the port
func (m *MCU) Close() error {
	var err error
	m.once.Do(func() {
		close(m.done)
		err = m.port.Close()
		<-m.stopped
		close(m.reports)
	})
	return err
}

// Reports returns unsolicited time reports. The channel is closed by Close.
// Reports are dropped when the channel is full
func (m *MCU) Reports() <-chan Report {
	return m.reports
}

// DecodeErrors returns the number of frames and messages discarded as corrupt
func (m *MCU) DecodeErrors() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decodeErrors
}

// RequestTime asks the board for a fresh snapshot
func (m *MCU) RequestTime(ctx context.Context) (protocol.TimeReport, error) {
	return m.requestReport(ctx, protocol.EncodeGetTime)
}

// SetTime sets the board's wall seconds and returns the resulting report
func (m *MCU) SetTime(ctx context.Context, sec uint32) (protocol.TimeReport, error) {
	return m.requestReport(ctx, func(output protocol.OutputBuffer) {
		protocol.EncodeSetTime(output, sec)
	})
}

// AdjustTime shifts the board's wall seconds by delta and returns the
// resulting report
func (m *MCU) AdjustTime(ctx context.Context, delta int32) (protocol.TimeReport, error) {
	return m.requestReport(ctx, func(output protocol.OutputBuffer) {
		protocol.EncodeAdjustTime(output, delta)
	})
}

// identifyChunk fetches one dictionary chunk
func (m *MCU) identifyChunk(ctx context.Context, offset uint32) ([]byte, error) {
	reply, err := m.request(ctx, func(output protocol.OutputBuffer) {
		protocol.EncodeIdentify(output, offset, protocol.IdentifyChunkMax)
	})
	if err != nil {
		return nil, err
	}
	switch reply.ID {
	case protocol.MsgIdentifyResponse:
		if reply.Identify.Offset != offset {
			return nil, fmt.Errorf("%w: chunk for offset %d, asked for %d", ErrNoReply, reply.Identify.Offset, offset)
		}
		return reply.Identify.Data, nil
	case protocol.MsgTimeStatus:
		return nil, &StatusError{Command: reply.Status.Command, Status: reply.Status.Status}
	}
	return nil, ErrNoReply
}

func (m *MCU) requestReport(ctx context.Context, body func(protocol.OutputBuffer)) (protocol.TimeReport, error) {
	reply, err := m.request(ctx, body)
	if err != nil {
		return protocol.TimeReport{}, err
	}
	switch reply.ID {
	case protocol.MsgTimeReport:
		return reply.Report, nil
	case protocol.MsgTimeStatus:
		return protocol.TimeReport{}, &StatusError{Command: reply.Status.Command, Status: reply.Status.Status}
	}
	return protocol.TimeReport{}, ErrNoReply
}

// request sends one command frame and waits for the reply with its sequence
func (m *MCU) request(ctx context.Context, body func(protocol.OutputBuffer)) (protocol.Reply, error) {
	seq, ch, err := m.reserve()
	if err != nil {
		return protocol.Reply{}, err
	}
	defer m.release(seq)

	frame, err := protocol.BuildFrame(seq, body)
	if err != nil {
		return protocol.Reply{}, err
	}
	if err := m.write(frame); err != nil {
		return protocol.Reply{}, err
	}

	select {
	case reply := <-ch:
		return reply, nil
	case <-ctx.Done():
		return protocol.Reply{}, ctx.Err()
	case <-m.stopped:
		return protocol.Reply{}, m.closedErr()
	}
}

// closedErr must only be called once stopped is closed
func (m *MCU) closedErr() error {
	if m.readErr != nil {
		return fmt.Errorf("%w: %v", ErrClosed, m.readErr)
	}
	return ErrClosed
}

func (m *MCU) reserve() (uint8, chan protocol.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return 0, nil, ErrClosed
	case <-m.stopped:
		return 0, nil, m.closedErr()
	default:
	}

	seq := m.seq
	for i := 0; i <= protocol.MessageSeqMask; i++ {
		seq = protocol.NextRequestSequence(seq)
		if _, busy := m.pending[seq]; !busy {
			ch := make(chan protocol.Reply, 1)
			m.pending[seq] = ch
			m.seq = seq
			return seq, ch, nil
		}
	}
	return 0, nil, ErrBusy
}

func (m *MCU) release(seq uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, seq)
}

func (m *MCU) write(frame []byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.log.Debug("send frame", zap.Binary("frame", frame))
	if _, err := m.port.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

func (m *MCU) readLoop() {
	defer close(m.stopped)

	dec := protocol.NewDecoder(decoderCapacity)
	buf := make([]byte, readBufferSize)
	var lastErrors uint32

	for {
		n, err := m.port.Read(buf)
		if n > 0 {
			data := buf[:n]
			for len(data) > 0 {
				written, _ := dec.Write(data)
				data = data[written:]
				m.drain(dec)
				if written == 0 {
					// Buffer full of undecodable bytes
					dec.Reset()
				}
			}
			if dec.Errors != lastErrors {
				m.addDecodeErrors(dec.Errors - lastErrors)
				lastErrors = dec.Errors
			}
		}

		select {
		case <-m.done:
			return
		default:
		}

		if n == 0 && errors.Is(err, io.EOF) {
			if !m.idleOnEOF {
				m.readErr = err
				m.log.Info("board closed the connection")
				return
			}
			// Read timeout on a native port
			select {
			case <-m.done:
				return
			case <-time.After(idleBackoff):
			}
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			m.readErr = err
			m.log.Error("failed to read from board", zap.Error(err))
			return
		}
	}
}

func (m *MCU) drain(dec *protocol.Decoder) {
	for {
		msg, ok := dec.Next()
		if !ok {
			return
		}
		m.dispatch(msg, time.Now())
	}
}

func (m *MCU) dispatch(msg protocol.Message, at time.Time) {
	reply, err := protocol.DecodeReply(msg)
	if err != nil {
		m.addDecodeErrors(1)
		m.log.Info("failed to decode reply", zap.Uint8("seq", msg.Sequence), zap.Error(err))
		return
	}

	m.mu.Lock()
	ch, waiting := m.pending[reply.Sequence]
	if waiting {
		delete(m.pending, reply.Sequence)
	}
	m.mu.Unlock()

	if waiting && reply.Sequence != protocol.SequenceReport {
		ch <- reply
		return
	}

	if reply.ID != protocol.MsgTimeReport {
		m.log.Info("unexpected unsolicited message",
			zap.Uint32("id", reply.ID), zap.Uint8("seq", reply.Sequence))
		return
	}

	select {
	case m.reports <- Report{TimeReport: reply.Report, Received: at}:
	default:
		m.log.Warn("report queue full, dropping report", zap.Uint32("msec", reply.Report.Msec))
	}
}

func (m *MCU) addDecodeErrors(n uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decodeErrors += n
}
