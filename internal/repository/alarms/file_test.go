package alarms

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))

	loaded, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, loaded)
}

// TestFileRepository_SaveLoad_Roundtrip ensures every recurrence variant
// survives a save/load cycle in order.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "alarms.json")
	repo := NewFileRepository(file)

	oneShot := domain.New(15, 30, domain.OnDate{Date: domain.Date{Year: 2025, Month: 12, Day: 31}}, "NYE", false, 90)
	oneShot.Enabled = false

	want := []*domain.Alarm{
		domain.New(7, 0, domain.Daily{}, "Morning", true, 75),
		domain.New(6, 30, domain.Weekdays{Days: []int{0, 1, 2, 3, 4}}, "Work", true, 100),
		oneShot,
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i := range want {
		require.Equal(t, want[i].Hour, got[i].Hour, "alarm %d", i)
		require.Equal(t, want[i].Minute, got[i].Minute, "alarm %d", i)
		require.Equal(t, want[i].Rule, got[i].Rule, "alarm %d", i)
		require.Equal(t, want[i].Name, got[i].Name, "alarm %d", i)
		require.Equal(t, want[i].Enabled, got[i].Enabled, "alarm %d", i)
		require.Equal(t, want[i].Recurring, got[i].Recurring, "alarm %d", i)
		require.Equal(t, want[i].Strength, got[i].Strength, "alarm %d", i)
	}

	// Saving what was loaded reproduces the file byte for byte.
	before, err := os.ReadFile(file)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), got))

	after, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

// TestFileRepository_SkipsMalformedRecords loads the valid records around
// broken ones instead of failing the whole file.
func TestFileRepository_SkipsMalformedRecords(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "alarms.json")
	contents := `[
		{"hour":7,"minute":0,"days":null,"name":"Morning","enabled":true,"recurring":true,"vibration_strength":75},
		{"hour":"bogus","minute":0,"days":null,"name":"Broken","enabled":true,"recurring":true,"vibration_strength":75},
		{"hour":25,"minute":0,"days":null,"name":"OutOfRange","enabled":true,"recurring":true,"vibration_strength":75},
		{"hour":8,"minute":15,"days":[11,22],"name":"BadDays","enabled":true,"recurring":true,"vibration_strength":75},
		{"hour":9,"minute":0,"days":[5,6],"name":"Weekend","enabled":true,"recurring":true,"vibration_strength":150}
	]`
	require.NoError(t, os.WriteFile(file, []byte(contents), config.DefaultFilePermissions))

	repo := NewFileRepository(file)

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "Morning", loaded[0].Name)
	require.Equal(t, "Weekend", loaded[1].Name)

	// Persisted out-of-range strength is clamped, not dropped.
	require.Equal(t, 100, loaded[1].Strength)
}

// TestRecurrenceFromDays pins the polymorphic days decoding rules.
func TestRecurrenceFromDays(t *testing.T) {
	t.Parallel()

	rule, err := recurrenceFromDays(nil)
	require.NoError(t, err)
	require.Equal(t, domain.Daily{}, rule)

	rule, err = recurrenceFromDays([]int{0, 1, 2})
	require.NoError(t, err)
	require.Equal(t, domain.Weekdays{Days: []int{0, 1, 2}}, rule)

	// An empty list is an empty weekday set, not a daily alarm.
	rule, err = recurrenceFromDays([]int{})
	require.NoError(t, err)
	require.Equal(t, domain.Weekdays{Days: []int{}}, rule)

	rule, err = recurrenceFromDays([]int{2025, 5, 23})
	require.NoError(t, err)
	require.Equal(t, domain.OnDate{Date: domain.Date{Year: 2025, Month: 5, Day: 23}}, rule)

	_, err = recurrenceFromDays([]int{2025, 13, 1})
	require.Error(t, err)

	_, err = recurrenceFromDays([]int{-1, 8})
	require.Error(t, err)
}
