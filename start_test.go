package slotwatch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStart_BlocksUntilContextCancelled verifies that Start blocks until the
// provided context is cancelled and checks repeatedly meanwhile.
func TestStart_BlocksUntilContextCancelled(t *testing.T) {
	ts, _ := apiServer(t, http.StatusOK, samplePayload)

	var cycles atomic.Int32
	w, err := New(
		WithSource(sourceFor(ts)),
		WithNotifier(&recordingNotifier{}),
		WithInterval(50*time.Millisecond),
		WithLogger(testLogger()),
		WithReportCallback(func(Report) { cycles.Add(1) }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	time.Sleep(180 * time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("Start() returned early with error: %v", err)
	default:
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}

	assert.GreaterOrEqual(t, cycles.Load(), int32(2), "immediate cycle plus ticks")
}

// TestStart_ReturnsImmediatelyIfContextAlreadyCancelled verifies that Start
// does nothing when the context is already cancelled.
func TestStart_ReturnsImmediatelyIfContextAlreadyCancelled(t *testing.T) {
	var cycles atomic.Int32
	w, err := New(
		WithNotifier(&recordingNotifier{}),
		WithLogger(testLogger()),
		WithReportCallback(func(Report) { cycles.Add(1) }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start() blocked on cancelled context")
	}
	assert.Zero(t, cycles.Load())
}

// TestStart_ServesStatus verifies the status server reports the last cycle.
func TestStart_ServesStatus(t *testing.T) {
	ts, _ := apiServer(t, http.StatusOK, samplePayload)
	port := freePort(t)

	w, err := New(
		WithSource(sourceFor(ts)),
		WithNotifier(&recordingNotifier{}),
		WithLogger(testLogger()),
		WithStatusPort(port),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	assert.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/status", port))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond, "status server never reported a cycle")
}

// TestStart_StatusPortInUse verifies Start fails fast when the port is taken.
func TestStart_StatusPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	w, err := New(
		WithNotifier(&recordingNotifier{}),
		WithLogger(testLogger()),
		WithStatusPort(ln.Addr().(*net.TCPAddr).Port),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, w.Start(ctx))
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}
