package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(TransitionsTotal.WithLabelValues("idle", "seller_phone"))
	RecordTransition("idle", "seller_phone")
	after := testutil.ToFloat64(TransitionsTotal.WithLabelValues("idle", "seller_phone"))
	assert.Equal(t, before+1, after)
}

func TestRecordNotificationStatus(t *testing.T) {
	okBefore := testutil.ToFloat64(NotificationsTotal.WithLabelValues("text", "ok"))
	errBefore := testutil.ToFloat64(NotificationsTotal.WithLabelValues("text", "error"))

	RecordNotification("text", nil)
	RecordNotification("text", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(NotificationsTotal.WithLabelValues("text", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(NotificationsTotal.WithLabelValues("text", "error")))
}

func TestServeDisabledReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "") }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
