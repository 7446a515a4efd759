package clockd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/motor"
	"github.com/oshokin/alarm-clock/internal/protocol"
	"github.com/oshokin/alarm-clock/internal/registry"
	repository "github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/transport"
)

// Options controls the alarm-clock daemon process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// AlarmsFile provides an optional override for the alarm list path.
	AlarmsFile string
	// ListenAddress provides an optional listen address override for the
	// TCP command link.
	ListenAddress string
}

// timeLayout is the wall-clock format accepted by the set-time command.
const timeLayout = "2006-01-02 15:04:05"

// errUnknownLink guards against config values Validate should have caught.
var errUnknownLink = errors.New("unknown link mode")

// Run starts the alarm daemon and blocks until the context is canceled.
// Loads configuration first, then wires the clock, motor, persistence and
// command link collaborators around the tick loop.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clock")

	// Load configuration first to get daemon settings.
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Use AlarmsFile from config unless overridden by command line option.
	alarmsFile := settings.AlarmsFile
	if opts.AlarmsFile != "" {
		alarmsFile = opts.AlarmsFile
	}

	// CLI listen address overrides the configured one.
	if opts.ListenAddress != "" {
		settings.ListenAddress = opts.ListenAddress
	}

	// Initialize alarm repository for persistence.
	repo := repository.NewFileRepository(alarmsFile)

	// The change hook stands in for a display collaborator; without one
	// attached it just notes the change.
	reg := registry.New(ctx, repo, func() {
		logger.Debug(ctx, "Alarm registry changed")
	})

	// Clock collaborator per configuration.
	clk, err := buildClock(settings)
	if err != nil {
		return fmt.Errorf("initialise clock: %w", err)
	}

	// Motor and cancel button; absent GPIO chip means both are inert.
	driver, canceler, cleanup, err := buildMotor(ctx, settings)
	if err != nil {
		return fmt.Errorf("initialise motor: %w", err)
	}

	defer cleanup()

	// Queue and interpreter bridge the link to the tick loop: the link's
	// receive path only enqueues, the loop drains and mutates.
	queue := protocol.NewQueue(protocol.DefaultQueueCapacity)

	link, err := buildLink(settings)
	if err != nil {
		return err
	}

	interp := protocol.NewInterpreter(reg, clk, link.Send)

	if err := link.Start(ctx, func(command string) {
		queue.Enqueue(ctx, command)
	}); err != nil {
		return fmt.Errorf("start command link: %w", err)
	}

	defer func() {
		if err := link.Close(); err != nil {
			logger.Errorf(ctx, "Failed to close command link: %v", err)
		}
	}()

	logger.InfoKV(ctx, "Alarm clock starting",
		"alarms_file", alarmsFile,
		"link", settings.Link,
		"clock_source", settings.ClockSource,
		"alarm_count", reg.Len())

	svc := NewService(reg, clk, driver, canceler, queue, interp,
		settings.TickInterval, settings.BackoffInterval)

	// Blocks until shutdown; context cancellation is the expected exit.
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// RunSetTime parses a "YYYY-MM-DD HH:MM:SS" value and writes it to the
// configured clock. Only meaningful for a writable clock such as the
// DS3231.
func RunSetTime(ctx context.Context, opts *Options, value string) error {
	ctx = logger.WithName(ctx, "alarm-clock")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return fmt.Errorf("parse time %q (want %q): %w", value, timeLayout, err)
	}

	clk, err := buildClock(settings)
	if err != nil {
		return fmt.Errorf("initialise clock: %w", err)
	}

	instant := domain.Instant{
		Year:   parsed.Year(),
		Month:  int(parsed.Month()),
		Day:    parsed.Day(),
		Hour:   parsed.Hour(),
		Minute: parsed.Minute(),
		Second: parsed.Second(),
	}

	if err := clk.Write(instant); err != nil {
		return fmt.Errorf("set clock: %w", err)
	}

	logger.InfoKV(ctx, "Clock set", "time", value, "clock_source", settings.ClockSource)

	return nil
}

// buildClock selects the clock collaborator from configuration.
func buildClock(settings *config.Config) (clock.Clock, error) {
	switch settings.ClockSource {
	case config.ClockDS3231:
		return clock.NewDS3231(settings.I2CDevice)
	default:
		return clock.System{}, nil
	}
}

// buildMotor selects the motor driver and cancel input. Without a GPIO
// chip both are no-ops and the returned cleanup does nothing.
func buildMotor(ctx context.Context, settings *config.Config) (motor.Driver, motor.Canceler, func(), error) {
	if settings.GPIOChip == "" {
		logger.Info(ctx, "No GPIO chip configured, motor disabled")

		return motor.Noop{}, motor.NeverCanceled{}, func() {}, nil
	}

	gpioDriver, err := motor.NewGPIODriver(settings.GPIOChip, settings.MotorForwardPin, settings.MotorReversePin)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open motor lines: %w", err)
	}

	button, err := motor.NewHoldButton(settings.GPIOChip, settings.ButtonPin, settings.ButtonHold)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open button line: %w", err)
	}

	var (
		driver   motor.Driver   = gpioDriver
		canceler motor.Canceler = button
	)

	cleanup := func() {
		if closer, ok := driver.(interface{ Close() error }); ok {
			_ = closer.Close()
		}

		if closer, ok := canceler.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	return driver, canceler, cleanup, nil
}

// buildLink selects the command link from configuration.
func buildLink(settings *config.Config) (transport.Link, error) {
	switch settings.Link {
	case config.LinkTCP:
		return transport.NewTCPServer(settings.ListenAddress), nil
	case config.LinkMQTT:
		return transport.NewMQTTLink(
			settings.MQTTBroker, settings.MQTTCommandTopic, settings.MQTTResponseTopic), nil
	case config.LinkOff:
		return nopLink{}, nil
	default:
		return nil, errUnknownLink
	}
}

// nopLink satisfies transport.Link when the command link is disabled.
type nopLink struct{}

func (nopLink) Start(context.Context, transport.Handler) error { return nil }
func (nopLink) Send(string) error                              { return nil }
func (nopLink) Close() error                                   { return nil }
