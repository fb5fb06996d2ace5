package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dermodazzle_back_end/internal/apperr"
	"dermodazzle_back_end/internal/models"
)

type Users struct {
	mu      sync.RWMutex
	items   map[primitive.ObjectID]models.User
	byEmail map[string]primitive.ObjectID
}

func NewUsers() *Users {
	return &Users{
		items:   make(map[primitive.ObjectID]models.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (s *Users) Insert(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	if _, taken := s.byEmail[email]; taken {
		return apperr.Conflict("Cet email est déjà utilisé")
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = email
	s.items[u.ID] = *u
	s.byEmail[email] = u.ID
	return nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperr.NotFound("Utilisateur introuvable")
	}
	u := s.items[id]
	return &u, nil
}

func (s *Users) Get(_ context.Context, id string) (*models.User, error) {
	oid, err := parseID(id, "utilisateur")
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.items[oid]
	if !ok {
		return nil, apperr.NotFound("Utilisateur introuvable")
	}
	return &u, nil
}

// UpsertOAuth rattache un compte social à l'utilisateur de même email,
// ou le crée.
func (s *Users) UpsertOAuth(_ context.Context, provider, providerID, email, name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(email)
	if id, ok := s.byEmail[email]; ok {
		u := s.items[id]
		if u.Provider == "" {
			u.Provider, u.ProviderID = provider, providerID
			s.items[id] = u
		}
		return &u, nil
	}
	u := models.User{
		ID:         primitive.NewObjectID(),
		Name:       name,
		Email:      email,
		Provider:   provider,
		ProviderID: providerID,
		CreatedAt:  time.Now(),
	}
	s.items[u.ID] = u
	s.byEmail[email] = u.ID
	return &u, nil
}

func (s *Users) SetPassword(_ context.Context, id, hash string) error {
	oid, err := parseID(id, "utilisateur")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[oid]
	if !ok {
		return apperr.NotFound("Utilisateur introuvable")
	}
	u.Password = hash
	s.items[oid] = u
	return nil
}
