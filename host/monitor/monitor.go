// Package monitor compares a board's clock against the host clock
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"systime/core"
	"systime/host/metrics"
	"systime/host/mcu"
	"systime/protocol"
)

// Drift is only reported once the baseline is at least this old
const minDriftSpan = time.Second

// Source is a board connection. *mcu.MCU implements it
type Source interface {
	RequestTime(ctx context.Context) (protocol.TimeReport, error)
	Reports() <-chan mcu.Report
}

// Sample is one board reading compared against the host clock
type Sample struct {
	At        time.Time
	Report    protocol.TimeReport
	RoundTrip time.Duration // zero for unsolicited reports

	// Board wall seconds minus host Unix seconds
	WallError float64

	// Board millisecond rate error in ppm since the baseline; valid once
	// the baseline is minDriftSpan old
	DriftPPM   float64
	DriftValid bool
}

type monitorMetrics struct {
	uptime    prometheus.Gauge
	wall      prometheus.Gauge
	offset    prometheus.Gauge
	wallError prometheus.Gauge
	drift     prometheus.Gauge
	roundTrip prometheus.Gauge
	reports   prometheus.Counter
	errors    prometheus.Counter
}

func newMonitorMetrics(reg prometheus.Registerer) *monitorMetrics {
	f := promauto.With(reg)
	return &monitorMetrics{
		uptime: f.NewGauge(prometheus.GaugeOpts{
			Name: metrics.BoardUptimeN,
			Help: metrics.BoardUptimeH,
		}),
		wall: f.NewGauge(prometheus.GaugeOpts{
			Name: metrics.BoardWallN,
			Help: metrics.BoardWallH,
		}),
		offset: f.NewGauge(prometheus.GaugeOpts{
			Name: metrics.BoardOffsetN,
			Help: metrics.BoardOffsetH,
		}),
		wallError: f.NewGauge(prometheus.GaugeOpts{
			Name: metrics.BoardWallErrorN,
			Help: metrics.BoardWallErrorH,
		}),
		drift: f.NewGauge(prometheus.GaugeOpts{
			Name: metrics.BoardDriftN,
			Help: metrics.BoardDriftH,
		}),
		roundTrip: f.NewGauge(prometheus.GaugeOpts{
			Name: metrics.RoundTripN,
			Help: metrics.RoundTripH,
		}),
		reports: f.NewCounter(prometheus.CounterOpts{
			Name: metrics.ReportsReceivedN,
			Help: metrics.ReportsReceivedH,
		}),
		errors: f.NewCounter(prometheus.CounterOpts{
			Name: metrics.RequestErrorsN,
			Help: metrics.RequestErrorsH,
		}),
	}
}

type baseline struct {
	set  bool
	msec uint32
	at   time.Time
}

// Monitor polls a board and tracks how its clock runs against the host
type Monitor struct {
	src      Source
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
	mtrcs    *monitorMetrics

	base baseline

	mu   sync.Mutex
	last Sample
}

// New creates a monitor polling src every interval. An interval of 0 relies
// on unsolicited reports only. Metrics are registered with reg
func New(src Source, log *zap.Logger, interval time.Duration, reg prometheus.Registerer) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		src:      src,
		log:      log,
		interval: interval,
		now:      time.Now,
		mtrcs:    newMonitorMetrics(reg),
	}
}

// Run polls until ctx is done or the source closes its report channel
func (m *Monitor) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if m.interval > 0 {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		tick = ticker.C
		m.poll(ctx)
	}

	reports := m.src.Reports()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-reports:
			if !ok {
				return nil
			}
			m.Observe(r.TimeReport, r.Received, 0)
		case <-tick:
			m.poll(ctx)
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	t0 := m.now()
	r, err := m.src.RequestTime(reqCtx)
	t1 := m.now()
	if err != nil {
		m.mtrcs.errors.Inc()
		if ctx.Err() == nil {
			m.log.Info("failed to request time", zap.Error(err))
		}
		return
	}

	rtt := t1.Sub(t0)
	m.Observe(r, t0.Add(rtt/2), rtt)
}

// Observe records a report received at host time at
func (m *Monitor) Observe(r protocol.TimeReport, at time.Time, rtt time.Duration) Sample {
	// A board millisecond count that went backwards means the board was
	// reset; start a new baseline
	if !m.base.set || core.Before(r.Msec, m.base.msec) {
		if m.base.set {
			m.log.Info("board clock restarted", zap.Uint32("msec", r.Msec), zap.Uint32("previous", m.base.msec))
		}
		m.base = baseline{set: true, msec: r.Msec, at: at}
	}

	s := Sample{
		At:        at,
		Report:    r,
		RoundTrip: rtt,
		WallError: float64(int64(r.Sec)-at.Unix()) - float64(at.Nanosecond())/1e9,
	}

	span := at.Sub(m.base.at)
	if span >= minDriftSpan {
		boardMs := float64(core.Elapsed(r.Msec, m.base.msec))
		hostMs := float64(span) / float64(time.Millisecond)
		s.DriftPPM = (boardMs - hostMs) / hostMs * 1e6
		s.DriftValid = true
	}

	m.mtrcs.reports.Inc()
	m.mtrcs.uptime.Set(float64(r.UptimeSeconds()))
	m.mtrcs.wall.Set(float64(r.Sec))
	m.mtrcs.offset.Set(float64(r.Offset))
	m.mtrcs.wallError.Set(s.WallError)
	if rtt > 0 {
		m.mtrcs.roundTrip.Set(rtt.Seconds())
	}
	if s.DriftValid {
		m.mtrcs.drift.Set(s.DriftPPM)
	}

	fields := []zap.Field{
		zap.Uint32("ticks", r.Ticks),
		zap.Uint32("msec", r.Msec),
		zap.Uint32("sec", r.Sec),
		zap.Int32("offset", r.Offset),
		zap.Float64("wall_error_s", s.WallError),
	}
	if rtt > 0 {
		fields = append(fields, zap.Duration("rtt", rtt))
	}
	if s.DriftValid {
		fields = append(fields, zap.Float64("drift_ppm", s.DriftPPM))
	}
	m.log.Info("board time", fields...)

	m.mu.Lock()
	m.last = s
	m.mu.Unlock()
	return s
}

// Last returns the most recent sample
func (m *Monitor) Last() Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
