package instance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func socketPath(t *testing.T) string {
	t.Helper()
	// unix socket paths are limited to ~100 bytes; keep it short.
	dir, err := os.MkdirTemp("", "alm")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func startServer(t *testing.T, path string, h Handler) *Server {
	t.Helper()
	srv, err := Listen(path, h, quietLogger())
	require.NoError(t, err)
	go srv.Serve()
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestForward_NoInstance(t *testing.T) {
	_, err := Forward(context.Background(), socketPath(t), []string{"almanah"}, io.Discard)
	assert.ErrorIs(t, err, ErrNoInstance)
}

func TestForward_RoundTrip(t *testing.T) {
	path := socketPath(t)

	var (
		mu       sync.Mutex
		received [][]string
	)
	startServer(t, path, func(args []string, stderr io.Writer) int {
		mu.Lock()
		received = append(received, args)
		mu.Unlock()
		if len(args) > 1 && args[1] == "--bogus" {
			fmt.Fprintln(stderr, "unknown flag: --bogus")
			return 1
		}
		return 0
	})

	var stderr bytes.Buffer
	status, err := Forward(context.Background(), path, []string{"almanah", "--debug"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Empty(t, stderr.String())

	status, err = Forward(context.Background(), path, []string{"almanah", "--bogus"}, &stderr)
	require.NoError(t, err)
	assert.Equal(t, 1, status)
	assert.Equal(t, "unknown flag: --bogus\n", stderr.String())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][]string{{"almanah", "--debug"}, {"almanah", "--bogus"}}, received)
}

func TestListen_AlreadyRunning(t *testing.T) {
	path := socketPath(t)
	startServer(t, path, func([]string, io.Writer) int { return 0 })

	_, err := Listen(path, func([]string, io.Writer) int { return 0 }, quietLogger())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestListen_ReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)

	// A listener closed without unlinking leaves a dead socket file behind.
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, ln.Close())
	require.FileExists(t, path)

	srv, err := Listen(path, func([]string, io.Writer) int { return 3 }, quietLogger())
	require.NoError(t, err)
	go srv.Serve()
	defer srv.Close()

	status, err := Forward(context.Background(), path, []string{"almanah"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 3, status)
}

func TestServer_CloseRemovesSocket(t *testing.T) {
	path := socketPath(t)
	srv, err := Listen(path, func([]string, io.Writer) int { return 0 }, quietLogger())
	require.NoError(t, err)
	go srv.Serve()

	require.NoError(t, srv.Close())
	assert.NoFileExists(t, path)
	assert.NoError(t, srv.Close(), "closing twice is harmless")
}
