package client

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// startStubDaemon accepts one connection, greets it, records one command
// and answers with the given frames.
func startStubDaemon(t *testing.T, responses []string) (string, <-chan string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = listener.Close() })

	commands := make(chan string, 1)

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}

		defer func() { _ = conn.Close() }()

		_, _ = conn.Write([]byte("OK:CONNECTED\n"))

		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			return
		}

		commands <- strings.TrimSpace(line)

		for _, response := range responses {
			_, _ = conn.Write([]byte(response + "\n"))
		}

		// Keep the connection open so the client's idle timeout, not a
		// closed socket, ends the exchange.
		time.Sleep(2 * idleTimeout)
	}()

	return listener.Addr().String(), commands
}

// TestRun_SingleFrameExchange verifies the command reaches the daemon and
// a single-frame answer completes the exchange.
func TestRun_SingleFrameExchange(t *testing.T) {
	t.Parallel()

	address, commands := startStubDaemon(t, []string{"OK:PONG"})

	err := Run(context.Background(), &Options{
		ConfigPath: "does-not-exist.yaml",
		Address:    address,
		Command:    "p",
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, "p", <-commands)
}

// TestRun_ListExchange verifies a multi-frame list answer is consumed
// until the daemon goes quiet.
func TestRun_ListExchange(t *testing.T) {
	t.Parallel()

	address, commands := startStubDaemon(t, []string{
		"OK:LIST:2",
		"ALARM:0:Work:07:30:ON:R:in 1 hour",
		"ALARM:1:Gym:18:00:OFF:R:in 12 hours",
	})

	err := Run(context.Background(), &Options{
		ConfigPath: "does-not-exist.yaml",
		Address:    address,
		Command:    "l",
		Timeout:    5 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, "l", <-commands)
}

// TestRun_RejectsEmptyCommand verifies a blank command fails fast.
func TestRun_RejectsEmptyCommand(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{Command: "  "})
	require.ErrorIs(t, err, errNoCommand)
}
