package realtime

import (
	"context"
	"sort"
	"sync"
)

// Broker is an in-process change feed: Publisher on one side, Feed on
// the other. It backs the websocket gateway (fed by the redis relay)
// and single-process wiring in tests.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]*brokerSub
	nextID int64
}

type brokerSub struct {
	id       int64
	channel  string
	broker   *Broker
	mu       sync.Mutex
	closed   bool
	handlers Handlers
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[int64]*brokerSub)}
}

// Subscribe registers handlers for the scope's channel. The returned
// handle stops delivering as soon as Close returns; cancelling ctx also
// closes it.
func (b *Broker) Subscribe(ctx context.Context, scope Scope, handlers Handlers) (Subscription, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	sub := &brokerSub{channel: scope.Channel(), broker: b, handlers: handlers}

	b.mu.Lock()
	b.nextID++
	sub.id = b.nextID
	if b.subs[sub.channel] == nil {
		b.subs[sub.channel] = make(map[int64]*brokerSub)
	}
	b.subs[sub.channel][sub.id] = sub
	b.mu.Unlock()

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			sub.Close()
		}()
	}
	return sub, nil
}

// Publish delivers ev to every live subscriber of its channel, in
// registration order for this call. Delivery is synchronous so events
// from one producer keep their order per handle.
func (b *Broker) Publish(ctx context.Context, ev ChangeEvent) error {
	b.mu.RLock()
	targets := make([]*brokerSub, 0, len(b.subs[ev.Channel]))
	for _, sub := range b.subs[ev.Channel] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	// Subscription ids are assigned in registration order.
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })

	for _, sub := range targets {
		sub.deliver(ev)
	}
	return nil
}

func (s *brokerSub) deliver(ev ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.handlers.dispatch(ev)
}

// Close releases the handle. It synchronizes with in-flight deliveries:
// once Close returns, no callback fires.
func (s *brokerSub) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.broker.mu.Lock()
	if subs := s.broker.subs[s.channel]; subs != nil {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(s.broker.subs, s.channel)
		}
	}
	s.broker.mu.Unlock()
}
