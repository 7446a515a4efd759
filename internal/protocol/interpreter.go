package protocol

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oshokin/alarm-clock/internal/clock"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/registry"
)

const (
	// maxListNameLength is how much of an alarm name a list frame carries.
	maxListNameLength = 12
	// maxListCountdownLength caps the countdown text in a list frame.
	maxListCountdownLength = 25
	// compactFrameLength triggers the aggressive re-truncation pass.
	compactFrameLength = 150
	// compactNameLength and compactCountdownLength apply on that pass.
	compactNameLength      = 8
	compactCountdownLength = 15

	countdownUnknown = "unknown"
)

// SendFunc delivers one response frame to the connected client.
type SendFunc func(frame string) error

// Interpreter parses the compact single-letter command grammar, applies
// commands to the registry and emits response frames. It holds no command
// state of its own; the only thing it accumulates is a send-failure
// counter surfaced by the status command.
//
// Execute returns an error only when a response could not be delivered.
// Malformed commands are answered with an ERROR frame and are considered
// handled.
type Interpreter struct {
	registry *registry.Registry
	clk      clock.Clock
	send     SendFunc

	errorCount int
}

// NewInterpreter wires an interpreter to its collaborators.
func NewInterpreter(reg *registry.Registry, clk clock.Clock, send SendFunc) *Interpreter {
	return &Interpreter{
		registry: reg,
		clk:      clk,
		send:     send,
	}
}

// Execute runs one command frame.
func (i *Interpreter) Execute(ctx context.Context, command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return i.sendError(ctx, "Empty command")
	}

	opcode := strings.ToLower(command[:1])

	logger.DebugKV(ctx, "Executing command", "opcode", opcode, "command", command)

	switch opcode {
	case "a":
		return i.handleAdd(ctx, command[1:])
	case "r":
		return i.handleRemove(ctx, command[1:])
	case "t":
		return i.handleToggle(ctx, command[1:])
	case "l":
		return i.handleList(ctx)
	case "s":
		return i.handleStatus(ctx)
	case "p":
		return i.sendFrame(ctx, "OK:PONG")
	default:
		return i.sendError(ctx, "Unknown command: "+opcode)
	}
}

// handleAdd parses a<HH>:<MM>[:<days>][:<name>][:<R|O>].
func (i *Interpreter) handleAdd(ctx context.Context, args string) error {
	parts := strings.Split(args, ":")
	if len(parts) < 2 {
		return i.sendError(ctx, "Format: aHH:MM[:days][:name][:R/O]")
	}

	hour, hourErr := strconv.Atoi(strings.TrimSpace(parts[0]))
	minute, minuteErr := strconv.Atoi(strings.TrimSpace(parts[1]))

	if hourErr != nil || minuteErr != nil {
		return i.sendError(ctx, "Invalid time format")
	}

	if hour < 0 || hour > domain.MaxHour {
		return i.sendError(ctx, "Hour must be 0-23")
	}

	if minute < 0 || minute > domain.MaxMinute {
		return i.sendError(ctx, "Minute must be 0-59")
	}

	rule, err := parseDays(parts)
	if err != nil {
		return i.sendError(ctx, err.Error())
	}

	name := ""
	if len(parts) > 3 {
		name = strings.TrimSpace(parts[3])
	}

	// 'O' marks a one-time alarm; anything else, including nothing,
	// keeps it recurring.
	recurring := true
	if len(parts) > 4 && strings.TrimSpace(strings.ToUpper(parts[4])) == "O" {
		recurring = false
	}

	index, err := i.registry.Add(ctx, hour, minute, rule, name, recurring, domain.DefaultStrength)
	if err != nil {
		return i.sendError(ctx, err.Error())
	}

	added, err := i.registry.Get(registry.ByIndex(index))
	if err != nil {
		return i.sendError(ctx, err.Error())
	}

	countdown := i.countdownFor(added)

	return i.sendFrame(ctx, fmt.Sprintf("OK:ADDED:%s:%02d:%02d:%s", added.Name, hour, minute, countdown))
}

// handleRemove parses r<indexOrName>.
func (i *Interpreter) handleRemove(ctx context.Context, args string) error {
	target := strings.TrimSpace(args)
	if target == "" {
		return i.sendError(ctx, "Format: rX (index or name)")
	}

	if _, err := i.registry.Remove(ctx, parseSelector(target)); err != nil {
		return i.sendError(ctx, "Alarm not found")
	}

	return i.sendFrame(ctx, "OK:REMOVED:"+target)
}

// handleToggle parses t<indexOrName>.
func (i *Interpreter) handleToggle(ctx context.Context, args string) error {
	target := strings.TrimSpace(args)
	if target == "" {
		return i.sendError(ctx, "Format: tX (index or name)")
	}

	toggled, err := i.registry.Toggle(ctx, parseSelector(target))
	if err != nil {
		return i.sendError(ctx, "Alarm not found")
	}

	return i.sendFrame(ctx, fmt.Sprintf("OK:TOGGLE:%s:%s", toggled.Name, onOff(toggled.Enabled)))
}

// handleList emits the count frame followed by one frame per alarm, each
// capped so it survives the transport's size ceiling.
func (i *Interpreter) handleList(ctx context.Context) error {
	alarms := i.registry.List()

	if len(alarms) == 0 {
		if err := i.sendFrame(ctx, "OK:LIST:0"); err != nil {
			return err
		}

		// Explicit clear so clients wipe any stale listing.
		return i.sendFrame(ctx, "OK:CLEAR")
	}

	if err := i.sendFrame(ctx, fmt.Sprintf("OK:LIST:%d", len(alarms))); err != nil {
		return err
	}

	for index, a := range alarms {
		if err := i.sendFrame(ctx, i.listFrame(index, a)); err != nil {
			return err
		}
	}

	return nil
}

// listFrame builds ALARM:<index>:<name>:<HH>:<MM>:<ON|OFF>:<R|O>:<countdown>.
func (i *Interpreter) listFrame(index int, a *domain.Alarm) string {
	countdown := i.countdownFor(a)

	name := a.Name
	if len(name) > maxListNameLength {
		name = name[:maxListNameLength]
	}

	if len(countdown) > maxListCountdownLength {
		countdown = countdown[:maxListCountdownLength-3] + "..."
	}

	recurrence := "R"
	if !a.Recurring {
		recurrence = "O"
	}

	frame := fmt.Sprintf("ALARM:%d:%s:%02d:%02d:%s:%s:%s",
		index, name, a.Hour, a.Minute, onOff(a.Enabled), recurrence, countdown)

	if len(frame) > compactFrameLength {
		if len(countdown) > compactCountdownLength {
			countdown = countdown[:compactCountdownLength] + "..."
		}

		if len(name) > compactNameLength {
			name = name[:compactNameLength]
		}

		frame = fmt.Sprintf("ALARM:%d:%s:%02d:%02d:%s:%s:%s",
			index, name, a.Hour, a.Minute, onOff(a.Enabled), recurrence, countdown)
	}

	return frame
}

// handleStatus reports current time, alarm count and send-failure count.
func (i *Interpreter) handleStatus(ctx context.Context) error {
	timeText := countdownUnknown

	if now, ok := i.clk.Read(); ok {
		timeText = fmt.Sprintf("%d-%02d-%02d_%02d:%02d:%02d",
			now.Year, now.Month, now.Day, now.Hour, now.Minute, now.Second)
	}

	return i.sendFrame(ctx, fmt.Sprintf("OK:STATUS:%s:%d:%d", timeText, i.registry.Len(), i.errorCount))
}

// countdownFor projects the alarm's next trigger against the current clock
// reading and renders it as a human countdown.
func (i *Interpreter) countdownFor(a *domain.Alarm) string {
	now, ok := i.clk.Read()
	if !ok {
		return countdownUnknown
	}

	target, ok := domain.NextTrigger(a, now)
	if !ok {
		return countdownUnknown
	}

	return domain.FormatCountdown(now, target)
}

// sendFrame delivers one response frame, counting failures.
func (i *Interpreter) sendFrame(ctx context.Context, frame string) error {
	if err := i.send(frame); err != nil {
		i.errorCount++

		logger.WarnKV(ctx, "Failed to send response", "frame", frame, "error", err)

		return fmt.Errorf("send response: %w", err)
	}

	return nil
}

// sendError delivers an ERROR frame. The command itself is considered
// handled; only a delivery failure propagates.
func (i *Interpreter) sendError(ctx context.Context, message string) error {
	return i.sendFrame(ctx, "ERROR:"+message)
}

// parseSelector resolves the protocol's index-or-name identifier once, at
// the boundary.
func parseSelector(target string) registry.Selector {
	if index, err := strconv.Atoi(target); err == nil {
		return registry.ByIndex(index)
	}

	return registry.ByName(target)
}

// parseDays interprets the optional days field: empty means daily,
// otherwise comma-separated weekday numbers with Monday as 0.
func parseDays(parts []string) (domain.Recurrence, error) {
	if len(parts) < 3 || strings.TrimSpace(parts[2]) == "" {
		return domain.Daily{}, nil
	}

	fields := strings.Split(parts[2], ",")
	days := make([]int, 0, len(fields))

	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		day, err := strconv.Atoi(field)
		if err != nil || day < 0 || day > 6 {
			return nil, errors.New("Days must be 0-6")
		}

		days = append(days, day)
	}

	if len(days) == 0 {
		return domain.Daily{}, nil
	}

	return domain.Weekdays{Days: days}, nil
}

func onOff(enabled bool) string {
	if enabled {
		return "ON"
	}

	return "OFF"
}
