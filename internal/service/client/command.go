package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Options configures a single command exchange with the alarm daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// Address overrides the daemon address from config when specified.
	Address string

	// Command is the raw protocol command to send, e.g. "l" or "a07:30".
	Command string

	// Timeout bounds the whole exchange.
	Timeout time.Duration
}

const (
	// defaultTimeout bounds the whole exchange when none is configured.
	defaultTimeout = 10 * time.Second

	// idleTimeout is how long to wait for a further response frame before
	// deciding the daemon is done answering. List responses arrive as
	// several frames, so one read is never enough.
	idleTimeout = 500 * time.Millisecond
)

// errNoCommand indicates the caller gave nothing to send.
var errNoCommand = errors.New("no command to send")

// Run sends one protocol command to the daemon and prints every response
// frame it answers with.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-client")

	command := strings.TrimSpace(opts.Command)
	if command == "" {
		return errNoCommand
	}

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Use daemon address from options if provided, otherwise use config.
	address := cfg.ListenAddress
	if opts.Address != "" {
		address = opts.Address
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", address, err)
	}

	// Close connection on function exit.
	defer func() {
		_ = conn.Close()
	}()

	deadline := time.Now().Add(timeout)
	reader := bufio.NewReader(conn)

	// The daemon greets every new connection; swallow the greeting so the
	// output starts with the actual response.
	_ = conn.SetReadDeadline(deadline)

	greeting, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read greeting: %w", err)
	}

	logger.DebugKV(ctx, "Connected", "address", address, "greeting", strings.TrimSpace(greeting))

	if _, err := conn.Write([]byte(command + "\n")); err != nil {
		return fmt.Errorf("send command: %w", err)
	}

	// Read frames until the daemon goes quiet or the overall deadline
	// passes.
	for {
		idle := time.Now().Add(idleTimeout)
		if idle.After(deadline) {
			idle = deadline
		}

		_ = conn.SetReadDeadline(idle)

		frame, err := reader.ReadString('\n')
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil
			}

			return fmt.Errorf("read response: %w", err)
		}

		frame = strings.TrimSpace(frame)
		if frame == "" || strings.HasPrefix(frame, "HEARTBEAT:") {
			continue
		}

		fmt.Fprintln(os.Stdout, frame)

		// Anything but a list is a single-frame answer.
		if !strings.HasPrefix(frame, "OK:LIST:") && !strings.HasPrefix(frame, "ALARM:") {
			return nil
		}
	}
}
