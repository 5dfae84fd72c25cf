package realtime

import (
	"context"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// WSFeed is the client-side Feed implementation: it dials the gateway
// and delivers events to the subscription's handlers.
type WSFeed struct {
	// BaseURL is the gateway websocket endpoint, e.g. ws://host:8081/ws.
	BaseURL string
	// Token is the caller's JWT; the gateway derives role and row
	// visibility from it.
	Token string

	Dialer *websocket.Dialer
}

// NewWSFeed builds a feed client for the given gateway endpoint.
func NewWSFeed(baseURL, token string) *WSFeed {
	return &WSFeed{BaseURL: baseURL, Token: token, Dialer: websocket.DefaultDialer}
}

// Subscribe dials the gateway, sends the subscribe frame and starts the
// read loop. Events arriving before Subscribe returns are not replayed;
// callers fetch initial state separately.
func (f *WSFeed) Subscribe(ctx context.Context, scope Scope, handlers Handlers) (Subscription, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := url.Parse(f.BaseURL)
	if err != nil {
		return nil, err
	}
	query := endpoint.Query()
	query.Set("token", f.Token)
	endpoint.RawQuery = query.Encode()

	dialer := f.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteJSON(scope); err != nil {
		_ = conn.Close()
		return nil, err
	}

	sub := &wsSubscription{
		conn:     conn,
		handlers: handlers,
		done:     make(chan struct{}),
	}
	go sub.readLoop()
	return sub, nil
}

type wsSubscription struct {
	conn     *websocket.Conn
	handlers Handlers

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func (s *wsSubscription) readLoop() {
	defer close(s.done)
	for {
		var ev ChangeEvent
		if err := s.conn.ReadJSON(&ev); err != nil {
			// Network loss is a silent delivery gap, not an error
			// surfaced to handlers.
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.handlers.dispatch(ev)
		s.mu.Unlock()
	}
}

// Close tears the subscription down synchronously: once it returns, no
// handler callback fires again.
func (s *wsSubscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.conn.Close()
	<-s.done
}
