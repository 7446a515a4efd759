package transport

import (
	"context"
	"errors"
)

// MaxFrameBytes is the frame size ceiling. The device's link historically
// was a BLE characteristic with a 185-byte MTU; every response is clamped
// to fit a single frame and the TCP and MQTT links keep the same contract.
const MaxFrameBytes = 180

// ellipsis marks a clamped frame.
const ellipsis = "..."

// ErrNotConnected is returned by Send when no peer is attached.
var ErrNotConnected = errors.New("no client connected")

// Handler receives one inbound command frame. Handlers run on transport
// goroutines, never on the tick loop, and must only enqueue.
type Handler func(command string)

// Link is a frame-oriented command link: opaque UTF-8 command strings in,
// response strings out, one frame per Send.
type Link interface {
	// Start brings the link up and begins delivering inbound frames to
	// the handler. It does not block.
	Start(ctx context.Context, handler Handler) error
	// Send transmits one response frame.
	Send(frame string) error
	// Close tears the link down.
	Close() error
}

// ClampFrame enforces the frame ceiling, marking truncation with an
// ellipsis.
func ClampFrame(frame string) string {
	if len(frame) <= MaxFrameBytes {
		return frame
	}

	return frame[:MaxFrameBytes-len(ellipsis)] + ellipsis
}
