package protocol

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/clock"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/registry"
)

// flakySender fails the first failures sends, then records frames.
type flakySender struct {
	failures int
	frames   []string
}

func (s *flakySender) send(frame string) error {
	if s.failures > 0 {
		s.failures--

		return errors.New("link down")
	}

	s.frames = append(s.frames, frame)

	return nil
}

func newQueueInterpreter(sender *flakySender) *Interpreter {
	reg := registry.New(context.Background(), &memoryRepository{}, nil)
	clk := clock.NewFake(domain.Instant{Year: 2024, Month: 1, Day: 1, Hour: 6})

	return NewInterpreter(reg, clk, sender.send)
}

// TestQueue_DropOldest verifies overflow evicts the oldest command.
func TestQueue_DropOldest(t *testing.T) {
	t.Parallel()

	queue := NewQueue(3)

	for index := 0; index < 4; index++ {
		queue.Enqueue(context.Background(), fmt.Sprintf("cmd-%d", index))
	}

	require.Equal(t, 3, queue.Len())

	sender := &flakySender{}
	queue.Drain(context.Background(), newQueueInterpreter(sender))

	// cmd-0 was evicted; the survivors all drew the unknown-opcode error.
	require.Equal(t, []string{
		"ERROR:Unknown command: c",
		"ERROR:Unknown command: c",
		"ERROR:Unknown command: c",
	}, sender.frames)
	require.Equal(t, 0, queue.Len())
}

// TestQueue_RetryPreservesOrder verifies a failing command is retried at
// the front across passes and later commands stay queued behind it.
func TestQueue_RetryPreservesOrder(t *testing.T) {
	t.Parallel()

	queue := NewQueue(0)
	queue.Enqueue(context.Background(), "p")
	queue.Enqueue(context.Background(), "s")

	sender := &flakySender{failures: 2}
	interp := newQueueInterpreter(sender)

	// First pass: ping fails, goes back to the front, pass stops.
	queue.Drain(context.Background(), interp)
	require.Equal(t, 2, queue.Len())
	require.Empty(t, sender.frames)

	// Second pass: ping fails again, still queued.
	queue.Drain(context.Background(), interp)
	require.Equal(t, 2, queue.Len())

	// Third pass: the link is back, both commands complete in order.
	queue.Drain(context.Background(), interp)
	require.Equal(t, 0, queue.Len())
	require.Len(t, sender.frames, 2)
	require.Equal(t, "OK:PONG", sender.frames[0])
	require.Equal(t, "OK:STATUS:2024-01-01_06:00:00:0:2", sender.frames[1])
}

// TestQueue_ExhaustedRetriesDropsCommand verifies a command that fails
// three times is dropped with a failure response and does not block the
// queue forever.
func TestQueue_ExhaustedRetriesDropsCommand(t *testing.T) {
	t.Parallel()

	queue := NewQueue(0)
	queue.Enqueue(context.Background(), "p")
	queue.Enqueue(context.Background(), "l")

	sender := &flakySender{failures: 3}
	interp := newQueueInterpreter(sender)

	queue.Drain(context.Background(), interp)
	queue.Drain(context.Background(), interp)
	queue.Drain(context.Background(), interp)

	// Third failure exhausted the retries; the failure notice got through
	// because the link recovered right after.
	require.Equal(t, []string{"ERROR:Command failed after retries: p"}, sender.frames)
	require.Equal(t, 1, queue.Len())

	// The next pass serves the remaining list command normally.
	queue.Drain(context.Background(), interp)
	require.Equal(t, 0, queue.Len())
	require.Equal(t, "OK:CLEAR", sender.frames[len(sender.frames)-1])
}
