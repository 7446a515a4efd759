package clockd

import (
	"context"
	"time"

	"github.com/oshokin/alarm-clock/internal/clock"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/motor"
	"github.com/oshokin/alarm-clock/internal/protocol"
	"github.com/oshokin/alarm-clock/internal/registry"
)

const (
	// maxConsecutiveFailures is how many clock-read failures in a row
	// degrade the tick cadence to the backoff interval.
	maxConsecutiveFailures = 5

	// defaultPatternCycles and defaultStepDuration shape the vibration
	// pattern: each cycle drives forward then reverse for one step each.
	defaultPatternCycles = 5
	defaultStepDuration  = 500 * time.Millisecond
)

// Service is the tick loop at the heart of the daemon: every tick it
// drains queued protocol commands, reads the clock, evaluates the alarms
// and runs the vibration pattern for any that fire. All registry mutation
// happens here, on the loop's goroutine.
type Service struct {
	registry *registry.Registry
	clk      clock.Clock
	driver   motor.Driver
	cancel   motor.Canceler
	queue    *protocol.Queue
	interp   *protocol.Interpreter

	tick          time.Duration
	backoff       time.Duration
	patternCycles int
	stepDuration  time.Duration

	// sleep is swappable so tests run the pattern without real delays.
	sleep func(time.Duration)

	failures int
}

// NewService assembles the tick loop from its collaborators.
func NewService(
	reg *registry.Registry,
	clk clock.Clock,
	driver motor.Driver,
	cancel motor.Canceler,
	queue *protocol.Queue,
	interp *protocol.Interpreter,
	tick, backoff time.Duration,
) *Service {
	return &Service{
		registry:      reg,
		clk:           clk,
		driver:        driver,
		cancel:        cancel,
		queue:         queue,
		interp:        interp,
		tick:          tick,
		backoff:       backoff,
		patternCycles: defaultPatternCycles,
		stepDuration:  defaultStepDuration,
		sleep:         time.Sleep,
	}
}

// Run ticks until the context is canceled. Per-tick errors never stop the
// loop; only shutdown does.
func (s *Service) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Alarm loop started",
		"tick_interval", s.tick, "backoff_interval", s.backoff)

	timer := time.NewTimer(s.tick)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Alarm loop stopped")

			return ctx.Err()
		case <-timer.C:
			s.Tick(ctx)
			timer.Reset(s.interval())
		}
	}
}

// interval picks the cadence for the next tick: normal, or the backoff
// interval once the clock has failed too many times in a row.
func (s *Service) interval() time.Duration {
	if s.failures >= maxConsecutiveFailures {
		return s.backoff
	}

	return s.tick
}

// Tick runs one iteration of the loop: drain commands, read the clock,
// evaluate alarms, fire patterns, persist once if anything changed.
func (s *Service) Tick(ctx context.Context) {
	// Commands first, so a remove or toggle lands before evaluation.
	s.queue.Drain(ctx, s.interp)

	now, ok := s.clk.Read()
	if !ok {
		s.failures++

		if s.failures == maxConsecutiveFailures {
			logger.WarnKV(ctx, "Clock unavailable, backing off",
				"consecutive_failures", s.failures, "backoff_interval", s.backoff)
		}

		return
	}

	s.failures = 0

	fired, dirty := s.registry.EvaluateAll(now)

	for _, a := range fired {
		logger.InfoKV(ctx, "Alarm firing", "name", a.Name, "strength", a.Strength)
		s.runPattern(ctx, a)
	}

	// One-shot alarms disabled themselves during evaluation; persist the
	// whole pass in one write.
	if dirty {
		s.registry.Flush(ctx)
	}
}

// runPattern drives the motor forward and reverse for the configured
// cycles. The cancel input is polled between sub-steps so holding the
// button aborts the pattern without cutting a drive step short.
func (s *Service) runPattern(ctx context.Context, a *domain.Alarm) {
	defer func() {
		if err := s.driver.Stop(); err != nil {
			logger.Errorf(ctx, "Failed to stop motor: %v", err)
		}
	}()

	for cycle := 0; cycle < s.patternCycles; cycle++ {
		if s.canceled(ctx, a) {
			return
		}

		if err := s.driver.Forward(a.Strength); err != nil {
			logger.Errorf(ctx, "Motor forward failed: %v", err)

			return
		}

		s.sleep(s.stepDuration)

		if s.canceled(ctx, a) {
			return
		}

		if err := s.driver.Reverse(a.Strength); err != nil {
			logger.Errorf(ctx, "Motor reverse failed: %v", err)

			return
		}

		s.sleep(s.stepDuration)
	}
}

// canceled checks both the user's cancel input and process shutdown.
func (s *Service) canceled(ctx context.Context, a *domain.Alarm) bool {
	if ctx.Err() != nil {
		return true
	}

	if s.cancel.Canceled() {
		logger.InfoKV(ctx, "Alarm pattern canceled", "name", a.Name)

		return true
	}

	return false
}
