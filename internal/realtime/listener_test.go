package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseNotificationCount(t *testing.T) {
	tests := []struct {
		data    string
		want    NotificationCount
		wantErr bool
	}{
		{`{"count":3,"user_id":"u1"}`, NotificationCount{UserID: "u1", Count: 3}, false},
		{`7`, NotificationCount{Count: 7}, false},
		{`"seven"`, NotificationCount{}, true},
	}

	for _, tt := range tests {
		got, err := ParseNotificationCount(json.RawMessage(tt.data))
		if tt.wantErr {
			assert.Error(t, err, tt.data)
			continue
		}
		require.NoError(t, err, tt.data)
		assert.Equal(t, tt.want, got)
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestListenerDeliversCountsAndReconnects(t *testing.T) {
	var conns atomic.Int32
	var gotAuth atomic.Value
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := conns.Add(1)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"hello","data":{}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteJSON(map[string]any{"type": "notification_count", "data": map[string]any{"count": n}})
		// drop the connection to force a reconnect
		_ = conn.Close()
	}))
	defer srv.Close()

	counts := make(chan NotificationCount, 4)
	var others atomic.Int32
	l := NewListener(Options{
		URL:     wsURL(srv),
		Token:   func() string { return "svc-token" },
		Backoff: 10 * time.Millisecond,
		OnCount: func(n NotificationCount) {
			select {
			case counts <- n:
			default:
			}
		},
		OnFrame: func(Frame) { others.Add(1) },
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	first := <-counts
	second := <-counts
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop after cancel")
	}

	assert.Equal(t, 1, first.Count)
	assert.Equal(t, 2, second.Count)
	assert.GreaterOrEqual(t, conns.Load(), int32(2))
	assert.GreaterOrEqual(t, others.Load(), int32(2))
	assert.Equal(t, "Bearer svc-token", gotAuth.Load())
}

func TestListenerStopsWhileServerDown(t *testing.T) {
	l := NewListener(Options{URL: "ws://127.0.0.1:1/ws", Backoff: 5 * time.Millisecond}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
