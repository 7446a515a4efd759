package alarms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// json is the codec used for the alarms file.
//
//nolint:gochecknoglobals // Package-wide codec configuration.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Repository defines persistence operations for the alarm list.
type Repository interface {
	Load(ctx context.Context) ([]*domain.Alarm, error)
	Save(ctx context.Context, alarms []*domain.Alarm) error
}

// ErrNotFound is returned when the alarms file does not exist yet.
var ErrNotFound = errors.New("alarms file not found")

// FileRepository persists the alarm list to a JSON file on disk. The file
// is a best-effort cache of the in-memory registry, not a durability
// guarantee: it is rewritten in full on every mutation.
type FileRepository struct {
	// path is the filesystem location of the alarms file.
	path string
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the
// provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// alarmRecord is the on-disk shape of one alarm. The days field keeps the
// device's original file format: null for a daily alarm, a list of weekday
// numbers (0=Monday), or a [year, month, day] triple for a date alarm.
type alarmRecord struct {
	Hour              int    `json:"hour"`
	Minute            int    `json:"minute"`
	Days              []int  `json:"days"`
	Name              string `json:"name"`
	Enabled           bool   `json:"enabled"`
	Recurring         bool   `json:"recurring"`
	VibrationStrength int    `json:"vibration_strength"`
}

// Load reads the alarm list from disk. A record that fails to decode is
// skipped with a warning; the rest of the list still loads.
func (r *FileRepository) Load(ctx context.Context) ([]*domain.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read alarms file: %w", err)
	}

	var raw []jsoniter.RawMessage
	if err = json.Unmarshal(contents, &raw); err != nil {
		return nil, fmt.Errorf("decode alarms file: %w", err)
	}

	loaded := make([]*domain.Alarm, 0, len(raw))

	for i, message := range raw {
		var record alarmRecord
		if err = json.Unmarshal(message, &record); err != nil {
			logger.WarnKV(ctx, "Skipping malformed alarm record", "index", i, "error", err)

			continue
		}

		restored, err := fromRecord(&record)
		if err != nil {
			logger.WarnKV(ctx, "Skipping malformed alarm record", "index", i, "error", err)

			continue
		}

		loaded = append(loaded, restored)
	}

	return loaded, nil
}

// Save writes the alarm list to disk.
func (r *FileRepository) Save(_ context.Context, alarms []*domain.Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]*alarmRecord, 0, len(alarms))
	for _, a := range alarms {
		records = append(records, toRecord(a))
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write alarms file: %w", err)
	}

	return nil
}

// fromRecord converts an on-disk record into a domain Alarm. Out-of-range
// persisted strengths are clamped rather than dropped.
func fromRecord(record *alarmRecord) (*domain.Alarm, error) {
	if record.Hour < 0 || record.Hour > domain.MaxHour ||
		record.Minute < 0 || record.Minute > domain.MaxMinute {
		return nil, fmt.Errorf("time %d:%d out of range", record.Hour, record.Minute)
	}

	rule, err := recurrenceFromDays(record.Days)
	if err != nil {
		return nil, err
	}

	return &domain.Alarm{
		Hour:      record.Hour,
		Minute:    record.Minute,
		Rule:      rule,
		Name:      record.Name,
		Enabled:   record.Enabled,
		Recurring: record.Recurring,
		Strength:  domain.ClampStrength(record.VibrationStrength),
	}, nil
}

// toRecord converts a domain Alarm into its on-disk record.
func toRecord(a *domain.Alarm) *alarmRecord {
	return &alarmRecord{
		Hour:              a.Hour,
		Minute:            a.Minute,
		Days:              daysFromRecurrence(a.Rule),
		Name:              a.Name,
		Enabled:           a.Enabled,
		Recurring:         a.Recurring,
		VibrationStrength: a.Strength,
	}
}

// recurrenceFromDays maps the polymorphic days field onto the Recurrence
// variants. JSON cannot distinguish a weekday list from a date triple, so
// a three-element list is a date exactly when it cannot be a weekday set
// (any element outside 0..6) and its values form a plausible calendar date.
func recurrenceFromDays(days []int) (domain.Recurrence, error) {
	if days == nil {
		return domain.Daily{}, nil
	}

	weekdaysOnly := true
	for _, day := range days {
		if day < 0 || day > 6 {
			weekdaysOnly = false

			break
		}
	}

	if weekdaysOnly {
		return domain.Weekdays{Days: append([]int{}, days...)}, nil
	}

	if len(days) == 3 &&
		days[0] >= 1900 &&
		days[1] >= 1 && days[1] <= 12 &&
		days[2] >= 1 && days[2] <= 31 {
		return domain.OnDate{Date: domain.Date{Year: days[0], Month: days[1], Day: days[2]}}, nil
	}

	return nil, fmt.Errorf("unrecognized days value %v", days)
}

// daysFromRecurrence is the inverse mapping used when saving.
func daysFromRecurrence(rule domain.Recurrence) []int {
	switch r := rule.(type) {
	case domain.Weekdays:
		return append([]int{}, r.Days...)
	case domain.OnDate:
		return []int{r.Date.Year, r.Date.Month, r.Date.Day}
	default:
		return nil
	}
}
