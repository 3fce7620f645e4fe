package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier_PostsJSON(t *testing.T) {
	got := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var ev Event
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		got <- ev
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n, err := NewWebhookNotifier(srv.URL, time.Second, 0)
	require.NoError(t, err)
	defer n.Close()

	sent := testEvent(KindRecovered)
	require.NoError(t, n.Notify(context.Background(), sent))

	ev := <-got
	assert.Equal(t, sent.ID, ev.ID)
	assert.Equal(t, KindRecovered, ev.Kind)
	require.NotNil(t, ev.RecoveredAt)
	assert.True(t, ev.RecoveredAt.Equal(*sent.RecoveredAt))
}

func TestWebhookNotifier_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, err := NewWebhookNotifier(srv.URL, time.Second, 3)
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), testEvent(KindTriggered)))
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhookNotifier_ClientErrorFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n, err := NewWebhookNotifier(srv.URL, time.Second, 2)
	require.NoError(t, err)
	err = n.Notify(context.Background(), testEvent(KindTriggered))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load(), "4xx responses are not retried")
}

func TestNewWebhookNotifier_RequiresURL(t *testing.T) {
	_, err := NewWebhookNotifier("", 0, 0)
	assert.Error(t, err)
}
