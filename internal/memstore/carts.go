package memstore

import (
	"context"
	"sync"

	"dermodazzle_back_end/internal/cart"
)

// Carts est le panier serveur en mémoire, avec notification des abonnés
// à chaque changement (équivalent du pub/sub Redis).
type Carts struct {
	mu       sync.Mutex
	carts    map[string]cart.Items
	watchers map[string]map[chan string]struct{}
}

func NewCarts() *Carts {
	return &Carts{
		carts:    make(map[string]cart.Items),
		watchers: make(map[string]map[chan string]struct{}),
	}
}

func (s *Carts) Load(_ context.Context, userID string) (cart.Items, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[userID].Clone(), nil
}

func (s *Carts) Add(_ context.Context, userID, productID string, qty int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.cartFor(userID)
	n := items.Add(productID, qty)
	s.publish(userID, "updated")
	return n, nil
}

func (s *Carts) Set(_ context.Context, userID, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartFor(userID).Set(productID, qty)
	s.publish(userID, "updated")
	return nil
}

func (s *Carts) Remove(_ context.Context, userID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartFor(userID).Remove(productID)
	s.publish(userID, "updated")
	return nil
}

func (s *Carts) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	s.publish(userID, "cleared")
	return nil
}

// Watch s'abonne aux changements du panier ; stop libère l'abonnement.
func (s *Carts) Watch(_ context.Context, userID string) (<-chan string, func(), error) {
	ch := make(chan string, 8)
	s.mu.Lock()
	if s.watchers[userID] == nil {
		s.watchers[userID] = make(map[chan string]struct{})
	}
	s.watchers[userID][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers[userID], ch)
			s.mu.Unlock()
		})
	}
	return ch, stop, nil
}

func (s *Carts) cartFor(userID string) cart.Items {
	items, ok := s.carts[userID]
	if !ok {
		items = cart.Items{}
		s.carts[userID] = items
	}
	return items
}

func (s *Carts) publish(userID, event string) {
	for ch := range s.watchers[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}
