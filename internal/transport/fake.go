package transport

import (
	"context"
	"sync"
)

// FakeLink is an in-memory Link for tests. Frames sent through it are
// recorded, and Deliver pushes a command into the registered handler as if
// it arrived from a client.
type FakeLink struct {
	mu      sync.Mutex
	handler Handler

	// Sent collects every frame passed to Send, post-clamping.
	Sent []string
	// SendErr, when set, is returned by every Send call.
	SendErr error
}

// Start implements Link.
func (l *FakeLink) Start(_ context.Context, handler Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.handler = handler

	return nil
}

// Send implements Link.
func (l *FakeLink) Send(frame string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.SendErr != nil {
		return l.SendErr
	}

	l.Sent = append(l.Sent, ClampFrame(frame))

	return nil
}

// Close implements Link.
func (l *FakeLink) Close() error {
	return nil
}

// Deliver feeds a command frame to the handler registered by Start.
func (l *FakeLink) Deliver(command string) {
	l.mu.Lock()
	handler := l.handler
	l.mu.Unlock()

	if handler != nil {
		handler(command)
	}
}

// Frames returns a copy of the sent frames.
func (l *FakeLink) Frames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string{}, l.Sent...)
}
