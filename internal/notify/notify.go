// Package notify publishes domain events to the outbound notification sink
// (customer email, staff alerts). Delivery is best effort.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MikeMC777/vnb-store/internal/logx"
)

const (
	TypeOrderPlaced   = "order.placed"
	TypePasswordReset = "account.password_reset"
	TypeContact       = "contact.received"
	TypeInvestment    = "investment.received"
	TypeNewsletter    = "newsletter.subscribed"
)

type Event struct {
	Type string `json:"type"`
	// Key groups related events, e.g. the order id.
	Key  string          `json:"key"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data"`
}

func NewEvent(typ, key string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: typ, Key: key, At: time.Now().UTC(), Data: raw}, nil
}

type Notifier interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Dispatcher sends events in the background so callers never wait on, or
// fail because of, the sink.
type Dispatcher struct {
	n       Notifier
	log     *logx.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(n Notifier, log *logx.Logger) *Dispatcher {
	return &Dispatcher{n: n, log: log.With("component", "notify"), timeout: 5 * time.Second}
}

func (d *Dispatcher) Send(typ, key string, data any) {
	ev, err := NewEvent(typ, key, data)
	if err != nil {
		d.log.Error("encode event", "type", typ, "key", key, "error", err)
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.n.Publish(ctx, ev); err != nil {
			d.log.Warn("publish event failed", "type", ev.Type, "key", ev.Key, "error", err)
		}
	}()
}

// Close waits for in-flight sends and closes the sink.
func (d *Dispatcher) Close() error {
	d.wg.Wait()
	return d.n.Close()
}

// LogNotifier writes events to the log. It is the default sink.
type LogNotifier struct{ log *logx.Logger }

func NewLogNotifier(log *logx.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("sink", "log")}
}

func (l *LogNotifier) Publish(_ context.Context, ev Event) error {
	l.log.Info("event", "type", ev.Type, "key", ev.Key, "data", string(ev.Data))
	return nil
}

func (l *LogNotifier) Close() error { return nil }

// Memory keeps published events; tests read them back.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Publish(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// OfType returns the recorded events with the given type.
func (m *Memory) OfType(typ string) []Event {
	var out []Event
	for _, ev := range m.Events() {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}
