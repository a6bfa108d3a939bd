// Package event carries change notifications between the services that write
// the store and the code that reacts to it (UI streams, other instances).
package event

import (
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/metrics"
)

const (
	AuthStateChanged      = "authStateChanged"
	AdminAuthStateChanged = "adminAuthStateChanged"
	CartUpdated           = "cartUpdated"
	ProductsUpdated       = "productsUpdated"
	CategoriesUpdated     = "categoriesUpdated"
	OrdersUpdated         = "ordersUpdated"
)

// Topics lists every notification name.
var Topics = []string{
	AuthStateChanged,
	AdminAuthStateChanged,
	CartUpdated,
	ProductsUpdated,
	CategoriesUpdated,
	OrdersUpdated,
}

// Notification says that the documents behind Topic changed. Remote is set
// when the write happened in another process.
type Notification struct {
	Topic  string    `json:"topic"`
	Key    string    `json:"key,omitempty"`
	Remote bool      `json:"remote"`
	At     time.Time `json:"at"`
}

type Handler func(Notification)

type subscription struct {
	fn Handler
}

// Bus dispatches notifications synchronously, in subscription order, through
// an EventBus that holds one callback per subscription. Handlers must not
// publish, subscribe or unsubscribe: the bus holds its locks while
// dispatching.
type Bus struct {
	bus EventBus.Bus
	log *zap.Logger

	// subs mirrors the callbacks attached to each EventBus topic, in order.
	mu   sync.RWMutex
	subs map[string][]*subscription

	done      chan struct{}
	closeOnce sync.Once
}

func New(log *zap.Logger) *Bus {
	b := &Bus{
		bus:  EventBus.New(),
		log:  log,
		subs: make(map[string][]*subscription, len(Topics)),
		done: make(chan struct{}),
	}
	for _, topic := range Topics {
		b.subs[topic] = nil
	}
	return b
}

// Emit publishes a local notification for topic.
func (b *Bus) Emit(topic, key string) {
	b.Publish(Notification{Topic: topic, Key: key})
}

func (b *Bus) Publish(n Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.subs[n.Topic]; !ok {
		b.log.Warn("publish on unknown topic", zap.String("topic", n.Topic))
		return
	}
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	metrics.EventsPublished.WithLabelValues(n.Topic, fmt.Sprint(n.Remote)).Inc()
	b.bus.Publish(n.Topic, n)
}

// Subscribe registers fn for topic and returns a function that removes it.
func (b *Bus) Subscribe(topic string, fn Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[topic]; !ok {
		return nil, fmt.Errorf("unknown topic %q", topic)
	}
	s := &subscription{fn: fn}
	if err := b.attach(topic, s); err != nil {
		return nil, err
	}
	return b.remover([]string{topic}, s), nil
}

// SubscribeAll registers fn for every topic.
func (b *Bus) SubscribeAll(fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &subscription{fn: fn}
	attached := make([]string, 0, len(Topics))
	for _, topic := range Topics {
		if err := b.attach(topic, s); err != nil {
			b.log.Error("event subscribe failed", zap.String("topic", topic), zap.Error(err))
			continue
		}
		attached = append(attached, topic)
	}
	return b.remover(attached, s)
}

// Close ends every open event stream. Publishing keeps working.
func (b *Bus) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// Done is closed once Close has been called.
func (b *Bus) Done() <-chan struct{} {
	return b.done
}

func (b *Bus) listeners(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

func (b *Bus) callback(s *subscription) Handler {
	return func(n Notification) { b.call(s.fn, n) }
}

func (b *Bus) attach(topic string, s *subscription) error {
	if err := b.bus.Subscribe(topic, b.callback(s)); err != nil {
		return err
	}
	b.subs[topic] = append(b.subs[topic], s)
	return nil
}

func (b *Bus) remover(topics []string, s *subscription) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for _, topic := range topics {
				b.detach(topic, s)
			}
		})
	}
}

// detach removes s from topic. EventBus matches callbacks by code pointer,
// which every callback built here shares, so the topic is emptied and the
// remaining subscriptions are attached again in their original order.
func (b *Bus) detach(topic string, s *subscription) {
	current := b.subs[topic]
	kept := make([]*subscription, 0, len(current))
	for _, other := range current {
		if other != s {
			kept = append(kept, other)
		}
	}
	if len(kept) == len(current) {
		return
	}
	for range current {
		_ = b.bus.Unsubscribe(topic, b.callback(nil))
	}
	b.subs[topic] = nil
	for _, other := range kept {
		if err := b.attach(topic, other); err != nil {
			b.log.Error("event resubscribe failed", zap.String("topic", topic), zap.Error(err))
		}
	}
}

// call isolates listeners from each other: a panicking handler is logged and
// the remaining handlers still run.
func (b *Bus) call(h Handler, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked", zap.String("topic", n.Topic), zap.Any("panic", r))
		}
	}()
	h(n)
}
