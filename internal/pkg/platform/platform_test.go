package platform_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/platform"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

func TestWaitReady_ImmediatelyReady(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	clk := clockwork.NewFakeClock()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, platform.WaitReady(context.Background(), logger, clk, srv.URL))
	assert.Contains(t, logger.InfoMessages(), `"`+srv.URL+`" is ready`)
}

func TestWaitReady_BecomesReady(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	clk := clockwork.NewFakeClock()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	done := make(chan error, 1)
	go func() {
		done <- platform.WaitReady(context.Background(), logger, clk, srv.URL)
	}()

	// Two probes see 503, the third sees 200.
	clk.BlockUntil(1)
	clk.Advance(1 * time.Second)
	clk.BlockUntil(1)
	clk.Advance(2 * time.Second)
	require.NoError(t, <-done)

	assert.Equal(t, int32(3), requests.Load())
	assert.Contains(t, logger.DebugMessages(), `"`+srv.URL+`" is not ready yet, status code 503`)
}

func TestWaitReady_Timeout(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	clk := clockwork.NewFakeClock()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	done := make(chan error, 1)
	go func() {
		done <- platform.WaitReady(context.Background(), logger, clk, srv.URL)
	}()

	// Jump past the whole wait budget in one step.
	clk.BlockUntil(1)
	clk.Advance(platform.ReadyTimeout + time.Second)

	err := <-done
	require.Error(t, err)
	var timeoutErr platform.ReadyTimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, srv.URL, timeoutErr.URL)
	assert.GreaterOrEqual(t, timeoutErr.Waited, platform.ReadyTimeout)
}

func TestWaitReady_ConnectionRefusedKeepsPolling(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	clk := clockwork.NewFakeClock()

	// Reserve an address, then close the listener so probes are refused.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := "http://" + listener.Addr().String()
	require.NoError(t, listener.Close())

	done := make(chan error, 1)
	go func() {
		done <- platform.WaitReady(context.Background(), logger, clk, url)
	}()

	// The refused connection must not end the wait, only the budget does.
	clk.BlockUntil(1)
	clk.Advance(platform.ReadyTimeout + time.Second)

	var timeoutErr platform.ReadyTimeoutError
	require.True(t, errors.As(<-done, &timeoutErr))
}

func TestWaitReady_ContextCanceled(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	clk := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	done := make(chan error, 1)
	go func() {
		done <- platform.WaitReady(ctx, logger, clk, srv.URL)
	}()

	clk.BlockUntil(1)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
