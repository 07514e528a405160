// Package realtime follows the DreamLift real-time channel and reports
// notification counts.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fasthttp/websocket"
	"go.uber.org/zap"
)

const FrameNotificationCount = "notification_count"

// Frame is one message on the real-time channel.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type NotificationCount struct {
	UserID string `json:"user_id,omitempty"`
	Count  int    `json:"count"`
}

// ParseNotificationCount accepts {"count":n,"user_id":...} or a bare number.
func ParseNotificationCount(data json.RawMessage) (NotificationCount, error) {
	var n NotificationCount
	if err := json.Unmarshal(data, &n); err == nil {
		return n, nil
	}
	if err := json.Unmarshal(data, &n.Count); err != nil {
		return NotificationCount{}, fmt.Errorf("realtime: bad notification_count payload: %w", err)
	}
	return n, nil
}

type Options struct {
	URL        string
	Token      func() string
	Backoff    time.Duration // grows linearly per failed attempt
	MaxBackoff time.Duration
	OnCount    func(NotificationCount)
	// OnFrame receives every other frame type. Optional.
	OnFrame func(Frame)
}

type Listener struct {
	opts   Options
	dialer *websocket.Dialer
	log    *zap.Logger
}

func NewListener(opts Options, log *zap.Logger) *Listener {
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 30 * time.Second
	}
	if opts.Token == nil {
		opts.Token = func() string { return "" }
	}
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	return &Listener{opts: opts, dialer: &dialer, log: log}
}

// Run keeps a connection open until ctx ends, reconnecting after failures.
func (l *Listener) Run(ctx context.Context) error {
	attempt := 0
	for {
		connected, err := l.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			attempt = 0
		}
		attempt++

		wait := time.Duration(attempt) * l.opts.Backoff
		if wait > l.opts.MaxBackoff {
			wait = l.opts.MaxBackoff
		}
		l.log.Warn("realtime channel disconnected",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// session dials once and reads until the connection drops. connected reports
// whether the handshake succeeded.
func (l *Listener) session(ctx context.Context) (connected bool, err error) {
	header := http.Header{}
	if tok := l.opts.Token(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}

	conn, resp, err := l.dialer.DialContext(ctx, l.opts.URL, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return false, fmt.Errorf("realtime: token rejected: %w", err)
		}
		return false, fmt.Errorf("realtime: dial: %w", err)
	}
	defer conn.Close()
	l.log.Info("realtime channel connected", zap.String("url", l.opts.URL))

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return true, errors.New("realtime: closed by server")
			}
			return true, err
		}
		l.dispatch(msg)
	}
}

func (l *Listener) dispatch(msg []byte) {
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		l.log.Debug("realtime: ignoring malformed frame", zap.Error(err))
		return
	}

	switch f.Type {
	case FrameNotificationCount:
		n, err := ParseNotificationCount(f.Data)
		if err != nil {
			l.log.Debug("realtime: ignoring frame", zap.Error(err))
			return
		}
		if l.opts.OnCount != nil {
			l.opts.OnCount(n)
		}
	default:
		if l.opts.OnFrame != nil {
			l.opts.OnFrame(f)
		}
	}
}
