// Package offerfeed is a TTL'd registry of outstanding offers, adapted from
// the teacher's pkg/offers/offers.go: it tracks which offers are still
// live, lets a caller acquire one exclusively before attempting to build an
// InstanceOp from it, and notifies listeners waiting for an offer matching
// some predicate. It is ambient supporting infrastructure around the pure
// pkg/launch core, not part of the core itself.
package offerfeed

import (
	"sync"
	"sync/atomic"
	"time"

	log "github.com/golang/glog"

	"github.com/mesosphere/marathon-go/pkg/wire"
)

// Filter reports whether an offer is acceptable to a waiting listener.
type Filter func(wire.Offer) bool

// Registry tracks live offers, with TTL-based expiration and acquire-once
// semantics so that two concurrent attempts to use the same offer cannot
// both succeed.
type Registry interface {
	Add(offers []wire.Offer)
	Delete(offerID string)
	Get(offerID string) (Perishable, bool)
	Walk(w Walker) error
	Listen(id string, f Filter) <-chan struct{}
}

// Walker is invoked once per live offer during Walk; returning stop=true
// ends the walk early.
type Walker func(Perishable) (stop bool, err error)

// Perishable is a single tracked offer: it may be live or expired, and may
// be acquired at most once while live.
type Perishable interface {
	HasExpired() bool
	Details() (wire.Offer, bool)
	Acquire() bool
	Release()
}

type liveOffer struct {
	offer      wire.Offer
	expiration time.Time
	acquired   int32
}

func (o *liveOffer) HasExpired() bool { return time.Now().After(o.expiration) }

func (o *liveOffer) Details() (wire.Offer, bool) {
	if o.HasExpired() {
		return wire.Offer{}, false
	}
	return o.offer, true
}

func (o *liveOffer) Acquire() bool {
	return atomic.CompareAndSwapInt32(&o.acquired, 0, 1)
}

func (o *liveOffer) Release() {
	atomic.CompareAndSwapInt32(&o.acquired, 1, 0)
}

// Config tunes the registry's TTL behavior.
type Config struct {
	TTL time.Duration
}

type registry struct {
	cfg Config

	mu     sync.Mutex
	offers map[string]*liveOffer

	listenersMu sync.Mutex
	listeners   []*offerListener
}

// New creates an empty offer Registry.
func New(cfg Config) Registry {
	return &registry{cfg: cfg, offers: map[string]*liveOffer{}}
}

func (r *registry) Add(offers []wire.Offer) {
	now := time.Now()
	r.mu.Lock()
	for _, o := range offers {
		r.offers[o.ID] = &liveOffer{offer: o, expiration: now.Add(r.cfg.TTL)}
		log.V(3).Infof("offerfeed: received offer %s from %s", o.ID, o.Hostname)
	}
	r.mu.Unlock()
	r.notifyListeners()
}

func (r *registry) Delete(offerID string) {
	r.mu.Lock()
	delete(r.offers, offerID)
	r.mu.Unlock()
	log.V(3).Infof("offerfeed: deleted offer %s", offerID)
}

func (r *registry) Get(offerID string) (Perishable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[offerID]
	return o, ok
}

func (r *registry) Walk(w Walker) error {
	r.mu.Lock()
	snapshot := make([]*liveOffer, 0, len(r.offers))
	for _, o := range r.offers {
		snapshot = append(snapshot, o)
	}
	r.mu.Unlock()

	for _, o := range snapshot {
		if o.HasExpired() {
			continue
		}
		stop, err := w(o)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

type offerListener struct {
	id     string
	accept Filter
	notify chan struct{}
	once   sync.Once
}

// Listen registers a one-shot listener: the returned channel is closed the
// first time an offer accepted by f is observed.
func (r *registry) Listen(id string, f Filter) <-chan struct{} {
	if f == nil {
		return nil
	}
	l := &offerListener{id: id, accept: f, notify: make(chan struct{})}
	r.listenersMu.Lock()
	r.listeners = append(r.listeners, l)
	r.listenersMu.Unlock()
	return l.notify
}

func (r *registry) notifyListeners() {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()

	remaining := r.listeners[:0]
	for _, l := range r.listeners {
		satisfied := false
		_ = r.Walk(func(p Perishable) (bool, error) {
			details, ok := p.Details()
			if ok && l.accept(details) {
				satisfied = true
				return true, nil
			}
			return false, nil
		})
		if satisfied {
			l.once.Do(func() { close(l.notify) })
			continue
		}
		remaining = append(remaining, l)
	}
	r.listeners = remaining
}
