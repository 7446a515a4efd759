package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	repo "github.com/oshokin/alarm-clock/internal/repository/alarms"
)

var (
	// ErrHourOutOfRange rejects hours outside 0..23.
	ErrHourOutOfRange = errors.New("hour must be between 0 and 23")
	// ErrMinuteOutOfRange rejects minutes outside 0..59.
	ErrMinuteOutOfRange = errors.New("minute must be between 0 and 59")
	// ErrStrengthOutOfRange rejects vibration strengths outside 0..100.
	ErrStrengthOutOfRange = errors.New("vibration strength must be between 0 and 100")
	// ErrNotFound is returned when an index or name matches no alarm.
	ErrNotFound = errors.New("alarm not found")
)

// Selector identifies an alarm either by position or by name. The protocol
// layer resolves the raw identifier once at the boundary; registry code
// never inspects strings to decide what kind of lookup it is doing.
type Selector struct {
	index  int
	name   string
	byName bool
}

// ByIndex selects an alarm by its position in the list.
func ByIndex(index int) Selector {
	return Selector{index: index}
}

// ByName selects the first alarm with the given name.
func ByName(name string) Selector {
	return Selector{name: name, byName: true}
}

// String renders the selector the way it arrived over the wire.
func (s Selector) String() string {
	if s.byName {
		return s.name
	}

	return strconv.Itoa(s.index)
}

// Registry owns the ordered alarm list. It is deliberately not safe for
// concurrent use: the dispatcher is the single writer and every mutation —
// including protocol commands, which are queued by the transport and
// applied on the tick goroutine — happens there.
type Registry struct {
	// repo persists the list; nil disables persistence.
	repo repo.Repository
	// alarms is the ordered list; insertion order is display order.
	alarms []*domain.Alarm
	// onChange is the optional "registry changed, refresh" hook.
	onChange func()
}

// New creates a registry and loads the persisted alarm list. Missing or
// unreadable storage yields an empty registry, never a failure.
func New(ctx context.Context, repository repo.Repository, onChange func()) *Registry {
	r := &Registry{
		repo:     repository,
		onChange: onChange,
	}

	if repository == nil {
		return r
	}

	loaded, err := repository.Load(ctx)
	switch {
	case err == nil:
		r.alarms = loaded

		logger.InfoKV(ctx, "Loaded alarms", "count", len(loaded))
	case errors.Is(err, repo.ErrNotFound):
		logger.Info(ctx, "No alarms file found, starting with an empty list")
	default:
		logger.Errorf(ctx, "Failed to load alarms, starting with an empty list: %v", err)
	}

	return r
}

// Add validates the parameters, appends a new enabled alarm and persists
// the list. No mutation happens on validation failure. The returned index
// is the new alarm's position. An empty name gets a positional default.
func (r *Registry) Add(
	ctx context.Context,
	hour, minute int,
	rule domain.Recurrence,
	name string,
	recurring bool,
	strength int,
) (int, error) {
	if hour < 0 || hour > domain.MaxHour {
		return 0, ErrHourOutOfRange
	}

	if minute < 0 || minute > domain.MaxMinute {
		return 0, ErrMinuteOutOfRange
	}

	if strength < 0 || strength > domain.MaxStrength {
		return 0, ErrStrengthOutOfRange
	}

	if name == "" {
		name = fmt.Sprintf("Alarm %d", len(r.alarms)+1)
	}

	added := domain.New(hour, minute, rule, name, recurring, strength)
	r.alarms = append(r.alarms, added)

	logger.InfoKV(ctx, "Alarm added", "alarm", added.String())
	r.Flush(ctx)

	return len(r.alarms) - 1, nil
}

// Remove deletes the selected alarm, shifts later indices down by one and
// persists the list. The removed alarm is returned as a clone.
func (r *Registry) Remove(ctx context.Context, sel Selector) (*domain.Alarm, error) {
	position, err := r.resolve(sel)
	if err != nil {
		return nil, err
	}

	removed := r.alarms[position]
	r.alarms = append(r.alarms[:position], r.alarms[position+1:]...)

	logger.InfoKV(ctx, "Alarm removed", "alarm", removed.String())
	r.Flush(ctx)

	return removed.Clone(), nil
}

// Toggle flips the selected alarm's enabled flag, persists the list and
// returns a clone reflecting the new state.
func (r *Registry) Toggle(ctx context.Context, sel Selector) (*domain.Alarm, error) {
	position, err := r.resolve(sel)
	if err != nil {
		return nil, err
	}

	toggled := r.alarms[position]
	toggled.Enabled = !toggled.Enabled

	logger.InfoKV(ctx, "Alarm toggled", "name", toggled.Name, "enabled", toggled.Enabled)
	r.Flush(ctx)

	return toggled.Clone(), nil
}

// Get returns a clone of the selected alarm.
func (r *Registry) Get(sel Selector) (*domain.Alarm, error) {
	position, err := r.resolve(sel)
	if err != nil {
		return nil, err
	}

	return r.alarms[position].Clone(), nil
}

// List returns a read-only snapshot of the alarm list in display order.
func (r *Registry) List() []*domain.Alarm {
	snapshot := make([]*domain.Alarm, 0, len(r.alarms))
	for _, a := range r.alarms {
		snapshot = append(snapshot, a.Clone())
	}

	return snapshot
}

// Len returns the number of alarms.
func (r *Registry) Len() int {
	return len(r.alarms)
}

// EvaluateAll runs the trigger state machine for every alarm against one
// clock reading. It returns clones of the alarms that fired, plus whether
// any one-shot alarm disabled itself — the caller persists once per pass
// rather than per alarm.
func (r *Registry) EvaluateAll(now domain.Instant) (fired []*domain.Alarm, dirty bool) {
	for _, a := range r.alarms {
		if !a.ShouldTrigger(now) {
			continue
		}

		fired = append(fired, a.Clone())

		if !a.Recurring && !a.Enabled {
			dirty = true
		}
	}

	return fired, dirty
}

// Flush persists the full list and fires the change hook. A persistence
// failure is logged and counted against nothing: the in-memory mutation
// stands either way.
func (r *Registry) Flush(ctx context.Context) {
	if r.repo != nil {
		if err := r.repo.Save(ctx, r.alarms); err != nil {
			logger.Errorf(ctx, "Failed to persist alarms: %v", err)
		}
	}

	if r.onChange != nil {
		r.onChange()
	}
}

// resolve maps a selector onto a position in the list.
func (r *Registry) resolve(sel Selector) (int, error) {
	if sel.byName {
		for i, a := range r.alarms {
			if a.Name == sel.name {
				return i, nil
			}
		}

		return 0, ErrNotFound
	}

	if sel.index < 0 || sel.index >= len(r.alarms) {
		return 0, ErrNotFound
	}

	return sel.index, nil
}
