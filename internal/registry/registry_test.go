package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	repo "github.com/oshokin/alarm-clock/internal/repository/alarms"
)

var errTestLoad = errors.New("test load error")

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// alarms is the list returned from Load.
	alarms []*domain.Alarm
	// loadErr is the error returned from Load.
	loadErr error
	// saveErr is the error returned from Save.
	saveErr error
	// saved stores the last list passed to Save.
	saved []*domain.Alarm
	// saveCalls counts Save invocations.
	saveCalls int
}

// Load returns the configured list or error.
func (m *memoryRepository) Load(context.Context) ([]*domain.Alarm, error) {
	return m.alarms, m.loadErr
}

// Save records the list and counts the call.
func (m *memoryRepository) Save(_ context.Context, alarms []*domain.Alarm) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}

	m.saved = append([]*domain.Alarm(nil), alarms...)

	return nil
}

// TestNew_LoadBehavior asserts startup behavior on existing, missing and
// broken storage: the registry always comes up, never fails.
func TestNew_LoadBehavior(t *testing.T) {
	t.Parallel()

	existing := []*domain.Alarm{domain.New(7, 0, nil, "Morning", true, 75)}

	r := New(context.Background(), &memoryRepository{alarms: existing}, nil)
	require.Equal(t, 1, r.Len())

	r = New(context.Background(), &memoryRepository{loadErr: repo.ErrNotFound}, nil)
	require.Equal(t, 0, r.Len())

	r = New(context.Background(), &memoryRepository{loadErr: errTestLoad}, nil)
	require.Equal(t, 0, r.Len())

	// No repository at all still works.
	r = New(context.Background(), nil, nil)
	require.Equal(t, 0, r.Len())
}

// TestAdd_ValidatesBeforeMutating rejects out-of-range input with no list
// change and no persistence write.
func TestAdd_ValidatesBeforeMutating(t *testing.T) {
	t.Parallel()

	store := new(memoryRepository)
	store.loadErr = repo.ErrNotFound
	r := New(context.Background(), store, nil)

	_, err := r.Add(context.Background(), 24, 0, nil, "", true, 75)
	require.ErrorIs(t, err, ErrHourOutOfRange)

	_, err = r.Add(context.Background(), 7, 60, nil, "", true, 75)
	require.ErrorIs(t, err, ErrMinuteOutOfRange)

	_, err = r.Add(context.Background(), 7, 0, nil, "", true, 101)
	require.ErrorIs(t, err, ErrStrengthOutOfRange)

	require.Equal(t, 0, r.Len())
	require.Zero(t, store.saveCalls)
}

// TestAdd_PersistsAndNamesDefaults verifies the happy path: positional
// default name, returned index, synchronous persistence, change hook.
func TestAdd_PersistsAndNamesDefaults(t *testing.T) {
	t.Parallel()

	store := new(memoryRepository)
	store.loadErr = repo.ErrNotFound

	var notified int

	r := New(context.Background(), store, func() { notified++ })

	index, err := r.Add(context.Background(), 7, 0, nil, "", true, 75)
	require.NoError(t, err)
	require.Equal(t, 0, index)

	index, err = r.Add(context.Background(), 6, 30, domain.Weekdays{Days: []int{0, 4}}, "Work", true, 100)
	require.NoError(t, err)
	require.Equal(t, 1, index)

	require.Equal(t, 2, store.saveCalls)
	require.Len(t, store.saved, 2)
	require.Equal(t, "Alarm 1", store.saved[0].Name)
	require.Equal(t, "Work", store.saved[1].Name)
	require.Equal(t, 2, notified)
}

// TestAdd_SurvivesPersistenceFailure keeps the in-memory mutation when the
// write fails.
func TestAdd_SurvivesPersistenceFailure(t *testing.T) {
	t.Parallel()

	store := &memoryRepository{loadErr: repo.ErrNotFound, saveErr: errors.New("disk full")}
	r := New(context.Background(), store, nil)

	_, err := r.Add(context.Background(), 7, 0, nil, "Morning", true, 75)
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())
}

// TestRemove_ShiftsIndices verifies positional lookup shifts after removal.
func TestRemove_ShiftsIndices(t *testing.T) {
	t.Parallel()

	r := New(context.Background(), nil, nil)

	_, err := r.Add(context.Background(), 6, 0, nil, "First", true, 75)
	require.NoError(t, err)
	_, err = r.Add(context.Background(), 7, 0, nil, "Second", true, 75)
	require.NoError(t, err)
	_, err = r.Add(context.Background(), 8, 0, nil, "Third", true, 75)
	require.NoError(t, err)

	removed, err := r.Remove(context.Background(), ByIndex(0))
	require.NoError(t, err)
	require.Equal(t, "First", removed.Name)

	// "Second" is now index 0.
	got, err := r.Get(ByIndex(0))
	require.NoError(t, err)
	require.Equal(t, "Second", got.Name)

	_, err = r.Remove(context.Background(), ByIndex(2))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = r.Remove(context.Background(), ByName("First"))
	require.ErrorIs(t, err, ErrNotFound)
}

// TestToggle_FirstNameMatch flips the first alarm carrying the name.
func TestToggle_FirstNameMatch(t *testing.T) {
	t.Parallel()

	r := New(context.Background(), nil, nil)

	_, err := r.Add(context.Background(), 6, 0, nil, "Dup", true, 75)
	require.NoError(t, err)
	_, err = r.Add(context.Background(), 7, 0, nil, "Dup", true, 75)
	require.NoError(t, err)

	toggled, err := r.Toggle(context.Background(), ByName("Dup"))
	require.NoError(t, err)
	require.False(t, toggled.Enabled)
	require.Equal(t, 6, toggled.Hour)

	// The second one is untouched.
	second, err := r.Get(ByIndex(1))
	require.NoError(t, err)
	require.True(t, second.Enabled)

	_, err = r.Toggle(context.Background(), ByName("Nope"))
	require.ErrorIs(t, err, ErrNotFound)
}

// TestList_ReturnsSnapshots ensures callers cannot reach internal state.
func TestList_ReturnsSnapshots(t *testing.T) {
	t.Parallel()

	r := New(context.Background(), nil, nil)

	_, err := r.Add(context.Background(), 6, 0, nil, "A", true, 75)
	require.NoError(t, err)

	snapshot := r.List()
	require.Len(t, snapshot, 1)

	snapshot[0].Enabled = false

	got, err := r.Get(ByIndex(0))
	require.NoError(t, err)
	require.True(t, got.Enabled)
}

// TestEvaluateAll_BatchedDirtiness fires matching alarms and reports
// dirtiness only when a one-shot disabled itself.
func TestEvaluateAll_BatchedDirtiness(t *testing.T) {
	t.Parallel()

	store := new(memoryRepository)
	store.loadErr = repo.ErrNotFound
	r := New(context.Background(), store, nil)

	_, err := r.Add(context.Background(), 7, 0, nil, "Daily", true, 75)
	require.NoError(t, err)
	_, err = r.Add(context.Background(), 7, 0, nil, "Once", false, 75)
	require.NoError(t, err)

	savesBefore := store.saveCalls
	now := domain.Instant{Year: 2025, Month: 5, Day: 23, Hour: 7, Minute: 0}

	fired, dirty := r.EvaluateAll(now)
	require.Len(t, fired, 2)
	require.True(t, dirty)
	// EvaluateAll itself does not persist; the dispatcher flushes once.
	require.Equal(t, savesBefore, store.saveCalls)

	// Same minute again: nothing fires, nothing dirty.
	fired, dirty = r.EvaluateAll(now)
	require.Empty(t, fired)
	require.False(t, dirty)
}
