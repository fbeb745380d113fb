package sim

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"systime/core"
	"systime/protocol"
)

// DefaultPollInterval keeps a simulated 1 MHz 16-bit register well inside
// its 65 ms period
const DefaultPollInterval = 10 * time.Millisecond

// Board runs the firmware time service against a byte stream, the way the
// firmware main loop does on hardware
type Board struct {
	guarded *core.Guarded
	sched   *core.Scheduler
	svc     *core.TimeService
	port    io.ReadWriter
	log     *zap.Logger

	writeErr error
}

// NewBoard configures a clock from cfg and serves it on port
func NewBoard(cfg core.Config, port io.ReadWriter, log *zap.Logger) (*Board, error) {
	if log == nil {
		log = zap.NewNop()
	}
	clock, err := core.New(cfg)
	if err != nil {
		return nil, err
	}

	b := &Board{
		guarded: core.NewGuarded(clock),
		port:    port,
		log:     log,
	}
	b.sched = core.NewScheduler(b.guarded)
	b.svc = core.NewTimeService(b.guarded, b.writeFrame)

	dict := b.svc.Dictionary()
	dict.AddConstant("MCU", "host-sim")
	dict.AddConstantUint("HW_BITS", uint32(cfg.HWBits))
	dict.AddConstantUint("TICKS_PER_MS", cfg.TicksPerMs)
	return b, nil
}

// Clock returns the board clock, safe for use while Run is active
func (b *Board) Clock() *core.Guarded {
	return b.guarded
}

// Service returns the board's command handler
func (b *Board) Service() *core.TimeService {
	return b.svc
}

// ReportEvery sends an unsolicited time report every intervalMs
func (b *Board) ReportEvery(intervalMs uint32) *core.Timer {
	return b.svc.ReportEvery(b.sched, intervalMs)
}

// Run serves commands until ctx is done or the port fails. The clock is
// refreshed every poll interval even when no commands arrive. Closing the
// port is left to the caller; a blocked Read only returns once it is closed
func (b *Board) Run(ctx context.Context, poll time.Duration) error {
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := b.port.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	dec := protocol.NewDecoder(protocol.MessageMax)
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err

		case chunk := <-chunks:
			for len(chunk) > 0 {
				n, _ := dec.Write(chunk)
				chunk = chunk[n:]
				b.handleFrames(dec)
				if n == 0 {
					dec.Reset()
				}
			}

		case <-ticker.C:
		}

		b.sched.Dispatch()
		if b.writeErr != nil {
			return b.writeErr
		}
	}
}

func (b *Board) handleFrames(dec *protocol.Decoder) {
	for {
		msg, ok := dec.Next()
		if !ok {
			return
		}
		if err := b.svc.Handle(msg); err != nil {
			b.log.Debug("command rejected", zap.Uint8("seq", msg.Sequence), zap.Error(err))
		}
	}
}

func (b *Board) writeFrame(frame []byte) {
	if b.writeErr != nil {
		return
	}
	if _, err := b.port.Write(frame); err != nil {
		b.writeErr = err
		b.log.Error("failed to write frame", zap.Error(err))
	}
}
