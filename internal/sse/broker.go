// Package sse implements a Server-Sent Events broker for record change notifications.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/starford/assistant/internal/workspace"
)

// Record change kinds.
const (
	KindCreated  = "created"
	KindUpdated  = "updated"
	KindDeleted  = "deleted"
	KindReloaded = "reloaded"
)

// Event represents an SSE event to broadcast. An empty Domain reaches every
// client regardless of its filter.
type Event struct {
	Type   string      `json:"type"`
	Domain string      `json:"-"`
	Data   interface{} `json:"data"`
}

// RecordChange is the payload of record.* events. Key is the record id, or
// the lookup key for contacts; it is empty for reloads.
type RecordChange struct {
	Domain string `json:"domain"`
	Key    string `json:"key,omitempty"`
}

type recordEventReq struct {
	kind   string
	change RecordChange
}

// subscription is a client channel plus the domains it asked for. A nil
// domains set means every domain.
type subscription struct {
	ch      chan []byte
	domains map[string]bool
}

func (s subscription) wants(domain string) bool {
	return domain == "" || s.domains == nil || s.domains[domain]
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets how often ServeHTTP writes a comment line on an idle
// stream. Zero or less disables keep-alives.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) {
		b.keepAlive = d
	}
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients + balance throttle timestamp). Public methods communicate with this loop
// through channels, so no mutexes are required.
type Broker struct {
	balanceMin time.Duration
	keepAlive  time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	recordEventCh chan recordEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. balance.updated is sent at most once
// per balanceThrottle.
func NewBroker(balanceThrottle time.Duration, opts ...Option) *Broker {
	if balanceThrottle <= 0 {
		balanceThrottle = 2 * time.Second
	}

	b := &Broker{
		balanceMin:    balanceThrottle,
		keepAlive:     15 * time.Second,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		recordEventCh: make(chan recordEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]subscription)
	var lastBalance time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("id: %s\nevent: %s\ndata: %s\n\n", uuid.NewString(), event.Type, payload))

		for ch, sub := range clients {
			if !sub.wants(event.Domain) {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.recordEventCh:
			switch req.kind {
			case KindCreated, KindUpdated, KindDeleted, KindReloaded:
				broadcast(Event{Type: "record." + req.kind, Domain: req.change.Domain, Data: req.change})
			default:
				continue
			}

			if req.change.Domain != workspace.DomainFinance {
				continue
			}
			now := time.Now()
			if now.Sub(lastBalance) >= b.balanceMin {
				lastBalance = now
				broadcast(Event{Type: "balance.updated", Domain: workspace.DomainFinance, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel. With no domains the
// client receives every event; otherwise only events for the named domains
// and domain-less events.
func (b *Broker) Subscribe(domains ...string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	sub := subscription{ch: ch}
	if len(domains) > 0 {
		sub.domains = make(map[string]bool, len(domains))
		for _, d := range domains {
			sub.domains[d] = true
		}
	}

	select {
	case b.subscribeCh <- sub:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishRecordEvent publishes a record.<kind> event. Finance changes are
// followed by a throttled balance.updated event.
func (b *Broker) PublishRecordEvent(kind, domain, key string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.recordEventCh <- recordEventReq{kind: kind, change: RecordChange{Domain: domain, Key: key}}:
	case <-b.stopped:
	}
}

// domainsParam reads ?domain=notes&domain=tasks or ?domain=notes,tasks.
func domainsParam(r *http.Request) []string {
	var out []string
	for _, v := range r.URL.Query()["domain"] {
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				out = append(out, d)
			}
		}
	}
	return out
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). The optional
// domain query parameter narrows the stream.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(domainsParam(r)...)
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		ticker := time.NewTicker(b.keepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
