package bringup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

// Mux routes the shared I2C bus to one sensor slot.
type Mux interface {
	Select(channel int) error
}

// Handle is a connected sensor kept open for the rest of the session.
type Handle interface {
	Name() string
	Close() error
}

// Opener connects the sensor on the currently selected channel.
type Opener interface {
	Open(name, calibrationPath string) (Handle, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(name, calibrationPath string) (Handle, error)

func (f OpenerFunc) Open(name, calibrationPath string) (Handle, error) {
	return f(name, calibrationPath)
}

// Pacing controls how fast a sweep advances.
type Pacing struct {
	ProgressInterval time.Duration // between two progress values
	SettleDelay      time.Duration // after the last slot, before the verdict
}

// DefaultPacing is the stock progress and settle timing.
var DefaultPacing = Pacing{
	ProgressInterval: 50 * time.Millisecond,
	SettleDelay:      time.Second,
}

// Result is the outcome of one slot.
type Result struct {
	Slot   Slot
	Status Status
	Err    error
}

type phase uint8

const (
	phaseConnect phase = iota
	phaseProgress
	phaseSettle
	phaseDone
)

// Sweep connects every slot one channel at a time. It never blocks: each
// call to Step does at most one bounded unit of work, so a UI loop can
// drive it from its tick and keep rendering in between.
type Sweep struct {
	mux    Mux
	opener Opener
	slots  []Slot
	pacing Pacing
	logger *slog.Logger

	phase       phase
	slot        int
	next        int // next progress value of the current slot
	hi          int // last progress value of the current slot
	lastEmit    time.Time
	settleUntil time.Time
	started     time.Time

	results []Result
	handles []Handle
}

func NewSweep(mux Mux, opener Opener, slots []Slot, pacing Pacing, logger *slog.Logger) *Sweep {
	if logger == nil {
		logger = xslog.Discard()
	}
	results := make([]Result, len(slots))
	for i, slot := range slots {
		results[i] = Result{Slot: slot, Status: StatusNotAttempted}
	}
	s := &Sweep{
		mux:     mux,
		opener:  opener,
		slots:   slots,
		pacing:  pacing,
		logger:  logger.With(xslog.Component("bringup")),
		results: results,
	}
	if len(slots) == 0 {
		s.phase = phaseSettle
	}
	return s
}

// Step advances the sweep and reports to rep. It returns true once the
// sweep is complete; later calls do nothing and keep returning true.
func (s *Sweep) Step(now time.Time, rep Reporter) bool {
	if s.started.IsZero() {
		s.started = now
	}

	switch s.phase {
	case phaseConnect:
		s.connect(rep)
		s.next, s.hi = progressRange(s.slot, len(s.slots))
		s.lastEmit = time.Time{}
		s.phase = phaseProgress

	case phaseProgress:
		if !s.lastEmit.IsZero() && now.Sub(s.lastEmit) < s.pacing.ProgressInterval {
			return false
		}
		if s.next <= s.hi {
			rep.RenderProgress(s.next)
			s.next++
			s.lastEmit = now
		}
		if s.next > s.hi {
			s.slot++
			if s.slot < len(s.slots) {
				s.phase = phaseConnect
			} else {
				s.settleUntil = now.Add(s.pacing.SettleDelay)
				s.phase = phaseSettle
			}
		}

	case phaseSettle:
		if s.settleUntil.IsZero() {
			s.settleUntil = now.Add(s.pacing.SettleDelay)
		}
		if now.Before(s.settleUntil) {
			return false
		}
		s.phase = phaseDone
		s.logger.Info("sweep complete",
			slog.Int("connected", s.Connected()),
			slog.Int("slots", len(s.slots)),
			xslog.Duration(now.Sub(s.started)))
		return true

	case phaseDone:
		return true
	}

	return false
}

// connect attempts the current slot. Errors are logged and downgraded to
// StatusError; the sweep always moves on to the next slot.
func (s *Sweep) connect(rep Reporter) {
	slot := s.slots[s.slot]
	log := s.logger.With(xslog.Sensor(slot.Name), xslog.Channel(slot.Channel))

	err := s.mux.Select(slot.Channel)
	var h Handle
	if err == nil {
		h, err = s.opener.Open(slot.Name, slot.CalibrationPath)
	}

	status := StatusConnected
	if err != nil {
		status = StatusError
		log.Warn("sensor unreachable", xslog.Error(err))
	} else {
		s.handles = append(s.handles, h)
		log.Info("sensor connected")
	}

	s.results[s.slot].Status = status
	s.results[s.slot].Err = err
	rep.ReportSensorStatus(slot.Name, status)
}

// Run drives the sweep to completion with real waits, for callers without
// a UI loop.
func (s *Sweep) Run(ctx context.Context, rep Reporter) error {
	for {
		if s.Step(time.Now(), rep) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.wait(time.Now())):
		}
	}
}

// wait is how long until the next Step has something to do.
func (s *Sweep) wait(now time.Time) time.Duration {
	switch s.phase {
	case phaseProgress:
		if s.lastEmit.IsZero() {
			return 0
		}
		return max(s.lastEmit.Add(s.pacing.ProgressInterval).Sub(now), 0)
	case phaseSettle:
		if s.settleUntil.IsZero() {
			return 0
		}
		return max(s.settleUntil.Sub(now), 0)
	default:
		return 0
	}
}

func (s *Sweep) Done() bool { return s.phase == phaseDone }

// Results returns a copy of the per-slot outcomes.
func (s *Sweep) Results() []Result {
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// Connected counts slots that reported StatusConnected.
func (s *Sweep) Connected() int {
	n := 0
	for _, r := range s.results {
		if r.Status == StatusConnected {
			n++
		}
	}
	return n
}

// AllConnected is the sweep verdict.
func (s *Sweep) AllConnected() bool {
	return len(s.results) > 0 && s.Connected() == len(s.results)
}

// Handles returns the sensors opened by this sweep, in slot order.
func (s *Sweep) Handles() []Handle {
	out := make([]Handle, len(s.handles))
	copy(out, s.handles)
	return out
}

// Close releases every handle opened by the sweep.
func (s *Sweep) Close() error {
	var errs []error
	for _, h := range s.handles {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", h.Name(), err))
		}
	}
	s.handles = nil
	return errors.Join(errs...)
}
