package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var ErrQueueFull = errors.New("file de synchronisation du panier pleine")

// RetryPolicy règle les nouvelles tentatives d'un appel distant échoué.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	CallTimeout    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		CallTimeout:    10 * time.Second,
	}
}

// newBackOff donne MaxAttempts-1 nouveaux essais, sans gigue, espacés de
// InitialBackoff doublé à chaque fois et plafonné à MaxBackoff.
func (p RetryPolicy) newBackOff() backoff.BackOff {
	opts := []backoff.ExponentialBackOffOpts{
		backoff.WithInitialInterval(p.InitialBackoff),
		backoff.WithRandomizationFactor(0),
		backoff.WithMultiplier(2),
		backoff.WithMaxElapsedTime(0),
	}
	if p.MaxBackoff > 0 {
		opts = append(opts, backoff.WithMaxInterval(p.MaxBackoff))
	}
	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(opts...), uint64(retries))
}

type opKind int

const (
	opUpsert opKind = iota
	opReset
)

type op struct {
	kind      opKind
	token     string
	productID string
	qty       int
}

// Syncer pousse les mutations locales vers le panier distant en arrière-plan.
// Un seul worker traite la file dans l'ordre : la dernière écriture gagne.
// Un échec définitif est signalé via notify, l'état local n'est jamais annulé.
type Syncer struct {
	remote Remote
	policy RetryPolicy
	notify func(error)

	mu     sync.RWMutex
	closed bool
	queue  chan op
	done   chan struct{}
}

func NewSyncer(remote Remote, policy RetryPolicy, notify func(error)) *Syncer {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if notify == nil {
		notify = func(err error) { log.Printf("⚠️ %v", err) }
	}
	s := &Syncer{
		remote: remote,
		policy: policy,
		notify: notify,
		queue:  make(chan op, 64),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Syncer) Upsert(token, productID string, qty int) {
	s.enqueue(op{kind: opUpsert, token: token, productID: productID, qty: qty})
}

func (s *Syncer) Reset(token string) {
	s.enqueue(op{kind: opReset, token: token})
}

func (s *Syncer) enqueue(o op) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- o:
	default:
		s.notify(ErrQueueFull)
	}
}

// Close attend que la file soit vidée.
func (s *Syncer) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *Syncer) run() {
	defer close(s.done)
	for o := range s.queue {
		if err := s.apply(o); err != nil {
			s.notify(fmt.Errorf("synchronisation panier: %w", err))
		}
	}
}

func (s *Syncer) apply(o op) error {
	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		return s.call(o)
	}, s.policy.newBackOff(), func(err error, wait time.Duration) {
		log.Printf("⚠️ Sync panier échouée (tentative %d/%d), nouvel essai dans %s: %v", attempt, s.policy.MaxAttempts, wait, err)
	})
}

func (s *Syncer) call(o op) error {
	ctx := context.Background()
	if s.policy.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.policy.CallTimeout)
		defer cancel()
	}
	switch o.kind {
	case opReset:
		return s.remote.Reset(ctx, o.token)
	default:
		return s.remote.Upsert(ctx, o.token, o.productID, o.qty)
	}
}
