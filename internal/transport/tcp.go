package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	// writeTimeout bounds a single frame write.
	writeTimeout = 5 * time.Second
	// heartbeatInterval is how often an idle connection gets a heartbeat
	// frame.
	heartbeatInterval = time.Minute
)

// TCPServer serves the command link over newline-delimited frames on a TCP
// connection. One client is active at a time; a newer connection replaces
// the current one, mirroring how the device's single-central link behaved.
type TCPServer struct {
	addr string

	mu       sync.Mutex
	listener net.Listener
	conn     net.Conn
	connID   string
	handler  Handler
}

// NewTCPServer creates a server that will listen on addr.
func NewTCPServer(addr string) *TCPServer {
	return &TCPServer{addr: addr}
}

// Addr returns the bound listen address once Start has succeeded.
func (s *TCPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return s.addr
	}

	return s.listener.Addr().String()
}

// Start implements Link.
func (s *TCPServer) Start(ctx context.Context, handler Handler) error {
	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.handler = handler
	s.mu.Unlock()

	logger.InfoKV(ctx, "Command link listening", "listen_address", listener.Addr().String())

	go s.acceptLoop(ctx)
	go s.heartbeatLoop(ctx)

	return nil
}

// Send implements Link.
func (s *TCPServer) Send(frame string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	frame = ClampFrame(frame)

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))

	if _, err := conn.Write([]byte(frame + "\n")); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}

// Close implements Link.
func (s *TCPServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}

	if s.listener == nil {
		return nil
	}

	return s.listener.Close()
}

// acceptLoop admits clients one at a time.
func (s *TCPServer) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || strings.Contains(err.Error(), "use of closed network connection") {
				return
			}

			logger.Errorf(ctx, "Accept failed: %v", err)

			continue
		}

		connID := uuid.NewString()

		s.mu.Lock()
		if s.conn != nil {
			// A newer client takes over the link.
			_ = s.conn.Close()
		}

		s.conn = conn
		s.connID = connID
		s.mu.Unlock()

		logger.InfoKV(ctx, "Client connected", "conn_id", connID, "remote", conn.RemoteAddr().String())

		// Greeting frame, same as the device always sent on connect.
		if err := s.Send("OK:CONNECTED"); err != nil {
			logger.Warnf(ctx, "Failed to send greeting: %v", err)
		}

		go s.readLoop(ctx, conn, connID)
	}
}

// readLoop delivers inbound frames to the handler until the connection
// drops.
func (s *TCPServer) readLoop(ctx context.Context, conn net.Conn, connID string) {
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
			s.connID = ""
		}
		s.mu.Unlock()

		_ = conn.Close()

		logger.InfoKV(ctx, "Client disconnected", "conn_id", connID)
	}()

	scanner := bufio.NewScanner(conn)
	// Inbound command frames honour the same ceiling as responses.
	scanner.Buffer(make([]byte, MaxFrameBytes+2), MaxFrameBytes+2)

	for scanner.Scan() {
		command := strings.TrimSpace(scanner.Text())
		if command == "" {
			continue
		}

		s.handler(command)
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logger.WarnKV(ctx, "Link read failed", "conn_id", connID, "error", err)
	}
}

// heartbeatLoop keeps an idle connection visibly alive.
func (s *TCPServer) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Send("HEARTBEAT:OK"); err != nil && err != ErrNotConnected {
				logger.Warnf(ctx, "Heartbeat failed: %v", err)
			}
		}
	}
}
