package token

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/vaultkit/client-go/endpoint"
	"github.com/vaultkit/client-go/retry"
)

const (
	DefaultRenewFraction = 2.0 / 3.0
	DefaultRenewJitter   = 0.1
	DefaultRetryInterval = 5 * time.Second
)

var (
	// ErrNotRenewable is reported when the server marks the token as not
	// renewable.
	ErrNotRenewable = errors.New("token is not renewable")

	// ErrLeaseExhausted is reported when a renewal no longer extends the
	// lease, usually because the token reached its max TTL.
	ErrLeaseExhausted = errors.New("token lease can no longer be extended")

	// ErrWatcherStarted is returned by Start on a running watcher.
	ErrWatcherStarted = errors.New("watcher already started")
)

// WatcherConfig tunes a Watcher. A zero RenewFraction or RetryInterval
// selects its default. A zero Jitter disables jitter.
type WatcherConfig struct {
	// Increment is sent with every renewal. Empty lets the server decide.
	Increment string
	// RenewFraction is the share of the lease that elapses before renewing.
	RenewFraction float64
	// Jitter randomly shortens each wait by up to this fraction. Values
	// outside [0, 1) select DefaultRenewJitter.
	Jitter float64
	// RetryInterval is the wait after a transient renewal failure.
	RetryInterval time.Duration
}

func (c *WatcherConfig) withDefaults() WatcherConfig {
	out := *c
	if out.RenewFraction <= 0 || out.RenewFraction >= 1 {
		out.RenewFraction = DefaultRenewFraction
	}
	if out.Jitter < 0 || out.Jitter >= 1 {
		out.Jitter = DefaultRenewJitter
	}
	if out.RetryInterval <= 0 {
		out.RetryInterval = DefaultRetryInterval
	}
	return out
}

// RenewalEvent reports one renewal attempt. Auth is set when the server
// answered, Err when the attempt failed or the watcher gives up. Final is
// true on the last event before the watcher stops by itself.
type RenewalEvent struct {
	Auth  *endpoint.AuthInfo
	Err   error
	Final bool
}

// RenewalCallback receives renewal events. It runs on the watcher goroutine
// and must not block.
type RenewalCallback func(event RenewalEvent)

// Subscription represents a registered callback.
type Subscription interface {
	// Unsubscribe stops delivery to the callback.
	Unsubscribe()
}

type subscription struct {
	cancel func()
}

func (s *subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Watcher keeps the client's own token alive by renewing it before its lease
// runs out. It stops when the token cannot be renewed any further, on a
// non-transient error, when Stop is called or when the Start context ends.
type Watcher struct {
	client endpoint.Client
	lease  time.Duration
	cfg    WatcherConfig

	mu        sync.RWMutex
	callbacks []RenewalCallback
	cancel    context.CancelFunc
	done      chan struct{}
	started   bool
}

// NewWatcher creates a watcher for the token c authenticates with. lease is
// the token's current remaining lifetime, as returned by LookupSelf or by
// the AuthInfo that issued it.
func NewWatcher(c endpoint.Client, lease time.Duration, cfg WatcherConfig) *Watcher {
	return &Watcher{
		client: c,
		lease:  lease,
		cfg:    cfg.withDefaults(),
		done:   make(chan struct{}),
	}
}

// OnRenewal registers a callback for renewal events.
func (w *Watcher) OnRenewal(callback RenewalCallback) Subscription {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, callback)
	index := len(w.callbacks) - 1
	w.mu.Unlock()

	return &subscription{
		cancel: func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			// keep indices stable
			w.callbacks[index] = nil
		},
	}
}

// Start launches the renewal loop and returns immediately.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrWatcherStarted
	}
	w.started = true

	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
	return nil
}

// Stop ends the renewal loop and waits for it to exit. It is safe to call
// more than once, and before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, started := w.cancel, w.started
	w.mu.Unlock()

	if !started {
		return
	}
	cancel()
	<-w.done
}

// Done is closed once the renewal loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	deadline := time.Now().Add(w.lease)
	wait := w.renewAfter(w.lease)

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		auth, err := RenewSelf(ctx, w.client, w.cfg.Increment)
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			remaining := time.Until(deadline)
			transient := retry.DefaultConfig().ShouldRetry(0, err)
			if !transient || remaining <= w.cfg.RetryInterval {
				w.emit(RenewalEvent{Err: err, Final: true})
				return
			}
			w.emit(RenewalEvent{Err: err})
			wait = w.cfg.RetryInterval
			continue
		}

		next := auth.LeaseTTL()
		expiry := time.Now().Add(next)
		switch {
		case !auth.Renewable:
			w.emit(RenewalEvent{Auth: auth, Err: ErrNotRenewable, Final: true})
			return
		case next <= 0 || !expiry.After(deadline):
			w.emit(RenewalEvent{Auth: auth, Err: ErrLeaseExhausted, Final: true})
			return
		}

		w.emit(RenewalEvent{Auth: auth})
		deadline = expiry
		wait = w.renewAfter(next)
	}
}

// renewAfter returns how long to wait before renewing a lease.
func (w *Watcher) renewAfter(lease time.Duration) time.Duration {
	wait := float64(lease) * w.cfg.RenewFraction
	if w.cfg.Jitter > 0 {
		wait -= wait * w.cfg.Jitter * rand.Float64()
	}
	return time.Duration(wait)
}

func (w *Watcher) emit(event RenewalEvent) {
	w.mu.RLock()
	callbacks := make([]RenewalCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, callback := range callbacks {
		if callback != nil {
			callback(event)
		}
	}
}
