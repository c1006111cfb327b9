// Package instance keeps Almanah to one process per user. The first process
// listens on a unix socket; later invocations forward their command line to
// it and exit with the status it returns.
package instance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoInstance     = errors.New("no running instance")
	ErrAlreadyRunning = errors.New("another instance is already running")
)

const ioTimeout = 30 * time.Second

// Handler runs a forwarded command line and returns its exit status.
// Anything written to stderr is shown by the forwarding invocation.
type Handler func(args []string, stderr io.Writer) int

type request struct {
	Args []string `json:"args"`
}

type response struct {
	Stderr string `json:"stderr"`
	Status int    `json:"status"`
}

// Server serves forwarded invocations for the primary instance.
type Server struct {
	ln      net.Listener
	path    string
	handler Handler
	log     logrus.FieldLogger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Listen claims socketPath for this process. A leftover socket from a
// crashed instance is replaced; a live one yields ErrAlreadyRunning.
func Listen(socketPath string, handler Handler, logger logrus.FieldLogger) (*Server, error) {
	log := logger.WithField("component", "instance")

	ln, err := net.Listen("unix", socketPath)
	if err != nil && isAddrInUse(err) {
		if conn, dialErr := net.Dial("unix", socketPath); dialErr == nil {
			conn.Close()
			return nil, ErrAlreadyRunning
		}
		log.WithField("socket", socketPath).Info("Removing stale instance socket")
		if rmErr := os.Remove(socketPath); rmErr != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", rmErr)
		}
		ln, err = net.Listen("unix", socketPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", socketPath, err)
	}
	if err := os.Chmod(socketPath, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("failed to restrict socket permissions: %w", err)
	}

	return &Server{
		ln:      ln,
		path:    socketPath,
		handler: handler,
		log:     log,
	}, nil
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

// Serve accepts forwarded invocations until Close is called.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(ioTimeout))

	var req request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.log.WithError(err).Warn("Malformed forwarded invocation")
		return
	}
	s.log.WithField("args", req.Args).Debug("Handling forwarded invocation")

	var stderr strings.Builder
	status := s.handler(req.Args, &stderr)

	if err := json.NewEncoder(conn).Encode(response{Stderr: stderr.String(), Status: status}); err != nil {
		s.log.WithError(err).Warn("Failed to answer forwarded invocation")
	}
}

// Close stops accepting, waits for in-flight invocations and removes the
// socket.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.ln.Close()
		s.wg.Wait()
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	})
	return err
}

// Forward hands args to the running instance and copies its error output to
// stderr. It returns ErrNoInstance when no instance is listening.
func Forward(ctx context.Context, socketPath string, args []string, stderr io.Writer) (int, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
			return 0, ErrNoInstance
		}
		return 0, fmt.Errorf("failed to reach running instance: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(ioTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if err := json.NewEncoder(conn).Encode(request{Args: args}); err != nil {
		return 0, fmt.Errorf("failed to forward command line: %w", err)
	}

	var resp response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return 0, fmt.Errorf("no answer from running instance: %w", err)
	}
	if resp.Stderr != "" {
		io.WriteString(stderr, resp.Stderr)
	}
	return resp.Status, nil
}
