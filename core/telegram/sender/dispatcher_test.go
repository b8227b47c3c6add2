package sender

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/lotbot/core/metrics"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestDispatcherRunsInOrderWithOneWorker(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}))
	}
	d.Close()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Zero(t, d.ErrorCount())
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})

	retriesBefore := testutil.ToFloat64(metrics.SendRetriesTotal.WithLabelValues("test.retry"))
	okBefore := testutil.ToFloat64(metrics.SendsTotal.WithLabelValues("test.retry", "ok"))

	var calls atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "test.retry", "sendMessage", func() error {
		if calls.Add(1) < 3 {
			return timeoutErr{}
		}
		return nil
	}))
	d.Close()
	assert.Equal(t, int32(3), calls.Load())
	assert.Zero(t, d.ErrorCount())
	assert.Equal(t, retriesBefore+2, testutil.ToFloat64(metrics.SendRetriesTotal.WithLabelValues("test.retry")))
	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.SendsTotal.WithLabelValues("test.retry", "ok")))
}

func TestDispatcherCountsPermanentFailure(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})

	var calls atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		calls.Add(1)
		return errors.New("chat not found (400)")
	}))
	d.Close()
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, uint64(1), d.ErrorCount())
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Close()
	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.Error(t, d.Enqueue(context.Background(), "send.text", "sendMessage", nil))
}

func TestSanitizeErrorMessageRedactsToken(t *testing.T) {
	msg := sanitizeErrorMessage(errors.New(`Post "https://api.telegram.org/bot123456:AAH-x_y/sendMessage": EOF`))
	assert.NotContains(t, msg, "123456:AAH")
	assert.Contains(t, msg, "bot<redacted>")
}
