package protocol

import (
	"context"
	"sync"

	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	// DefaultQueueCapacity bounds the pending command queue; the oldest
	// command is dropped on overflow.
	DefaultQueueCapacity = 10
	// maxAttempts is how many times a failing command is retried before
	// it is dropped with a failure response.
	maxAttempts = 3
)

type queuedCommand struct {
	command  string
	attempts int
}

// Queue buffers inbound commands between the transport's receive path and
// the tick loop. Transport callbacks only Enqueue; the tick loop alone
// calls Drain, so registry mutation stays on a single goroutine.
type Queue struct {
	mu       sync.Mutex
	items    []queuedCommand
	capacity int
}

// NewQueue creates a queue with the given capacity; zero or negative
// means DefaultQueueCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}

	return &Queue{capacity: capacity}
}

// Enqueue appends a command, evicting the oldest entry when full.
func (q *Queue) Enqueue(ctx context.Context, command string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		dropped := q.items[0]
		q.items = q.items[1:]

		logger.WarnKV(ctx, "Command queue full, dropping oldest", "command", dropped.command)
	}

	q.items = append(q.items, queuedCommand{command: command})
}

// Len reports the number of pending commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Drain executes pending commands in order. A command whose response could
// not be delivered is put back at the front and the pass stops, so order
// is preserved for the next pass; after maxAttempts failures the command
// is dropped and a failure response is attempted instead.
func (q *Queue) Drain(ctx context.Context, interp *Interpreter) {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()

			return
		}

		item := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		err := interp.Execute(ctx, item.command)
		if err == nil {
			continue
		}

		item.attempts++

		if item.attempts >= maxAttempts {
			logger.ErrorKV(ctx, "Command failed after retries",
				"command", item.command, "attempts", item.attempts, "error", err)

			// Best effort; the link may still be down.
			_ = interp.sendError(ctx, "Command failed after retries: "+item.command)

			return
		}

		q.mu.Lock()
		q.items = append([]queuedCommand{item}, q.items...)
		q.mu.Unlock()

		return
	}
}
