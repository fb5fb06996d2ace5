package cart

import (
	"context"
	"sync"
)

// LocalStore conserve un panier par identité, côté client.
type LocalStore interface {
	Load(identity string) (Items, bool)
	Save(identity string, items Items)
	Delete(identity string)
}

type MemoryLocal struct {
	mu    sync.Mutex
	carts map[string]Items
}

func NewMemoryLocal() *MemoryLocal {
	return &MemoryLocal{carts: make(map[string]Items)}
}

func (m *MemoryLocal) Load(identity string) (Items, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items, ok := m.carts[identity]
	if !ok {
		return nil, false
	}
	return items.Clone(), true
}

func (m *MemoryLocal) Save(identity string, items Items) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[identity] = items.Clone()
}

func (m *MemoryLocal) Delete(identity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, identity)
}

// Session est le panier visible d'une session de la boutique.
// L'état local fait foi ; le panier distant est mis à jour au mieux.
type Session struct {
	mu       sync.Mutex
	identity string
	items    Items
	local    LocalStore
	remote   Remote
	syncer   *Syncer
}

// NewSession crée une session anonyme. remote et syncer peuvent être nil
// pour une session purement locale.
func NewSession(local LocalStore, remote Remote, syncer *Syncer) *Session {
	if local == nil {
		local = NewMemoryLocal()
	}
	return &Session{items: Items{}, local: local, remote: remote, syncer: syncer}
}

// SwitchIdentity remplace le panier visible par celui de l'identité donnée.
// Une identité vide (logout) vide le panier visible sans effacer celui stocké.
func (s *Session) SwitchIdentity(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = token
	s.items = Items{}
	if token == "" {
		return
	}
	if stored, ok := s.local.Load(token); ok {
		s.items = stored.Normalize()
	}
}

func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *Session) AddToCart(productID string, qty int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.items.Add(productID, qty)
	s.persist()
	s.push(productID, next)
	return next
}

func (s *Session) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Remove(productID)
	s.persist()
	s.push(productID, 0)
}

func (s *Session) UpdateCartItem(productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Set(productID, qty)
	s.persist()
	s.push(productID, s.items[productID])
}

func (s *Session) Items() Items {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Count()
}

func (s *Session) Total(catalog PriceLookup) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Total(catalog)
}

// Reset vide le panier de l'identité active, localement et à distance.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = Items{}
	if s.identity == "" {
		return
	}
	s.local.Delete(s.identity)
	if s.syncer != nil {
		s.syncer.Reset(s.identity)
	}
}

// Refresh recharge le panier serveur de l'identité active. En cas d'échec
// l'état local est conservé.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	identity := s.identity
	s.mu.Unlock()
	if identity == "" || s.remote == nil {
		return nil
	}

	fetched, err := s.remote.Fetch(ctx, identity)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != identity {
		// l'identité a changé pendant l'appel
		return nil
	}
	s.items = fetched.Normalize()
	s.persist()
	return nil
}

func (s *Session) persist() {
	if s.identity == "" {
		return
	}
	s.local.Save(s.identity, s.items)
}

func (s *Session) push(productID string, qty int) {
	if s.identity == "" || s.syncer == nil {
		return
	}
	s.syncer.Upsert(s.identity, productID, qty)
}
