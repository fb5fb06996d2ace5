package main

import (
	"context"
	"fmt"
	"log"

	"dermodazzle_back_end/internal/cache"
	"dermodazzle_back_end/internal/cart"
	"dermodazzle_back_end/internal/catalog"
	"dermodazzle_back_end/internal/config"
	"dermodazzle_back_end/internal/database"
	"dermodazzle_back_end/internal/handlers"
	"dermodazzle_back_end/internal/handlers/user"
	"dermodazzle_back_end/internal/memstore"
	"dermodazzle_back_end/internal/middleware"
	"dermodazzle_back_end/internal/models"
	"dermodazzle_back_end/internal/orders"
	"dermodazzle_back_end/internal/reviews"
)

type userStore interface {
	user.UserStore
	Get(ctx context.Context, id string) (*models.User, error)
}

type cartStore interface {
	cart.Store
	user.CartWatcher
}

// stores regroupe les persistances choisies au démarrage ; les champs
// optionnels restent à nil (interface nulle) quand le service manque.
type stores struct {
	products    catalog.Store
	orders      orders.Store
	reviews     reviews.Store
	users       userStore
	subscribers handlers.SubscriberStore
	contacts    handlers.ContactStore
	carts       cartStore
	history     orders.History
	counters    middleware.Counter
	cache       catalog.Cache
	logins      user.LoginCache

	closers []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	s := &stores{}
	switch cfg.StoreDriver {
	case "memory":
		products := memstore.NewProducts()
		s.products = products
		s.reviews = memstore.NewReviews(products)
		s.orders = memstore.NewOrders()
		s.users = memstore.NewUsers()
		s.subscribers = memstore.NewSubscribers()
		s.contacts = memstore.NewContacts()
		log.Println("⚠️ Stockage en mémoire : les données seront perdues à l'arrêt")
	case "mongo":
		m, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = m.Close(context.Background()) })
		s.products = m.Products()
		s.reviews = m.Reviews()
		s.orders = m.Orders()
		s.users = m.Users()
		s.subscribers = m.Subscribers()
		s.contacts = m.Contacts()
	default:
		return nil, fmt.Errorf("STORE_DRIVER inconnu: %q", cfg.StoreDriver)
	}

	openRedis(ctx, cfg, s)
	openTracking(ctx, cfg, s)
	return s, nil
}

// openRedis branche paniers, compteurs et caches sur Redis, sinon en mémoire.
func openRedis(ctx context.Context, cfg config.Config, s *stores) {
	if cfg.RedisHost != "" {
		rdb, err := cache.InitRedis(ctx, cfg.RedisHost, cfg.RedisPassword)
		if err == nil {
			s.closers = append(s.closers, func() { _ = rdb.Close() })
			s.carts = cache.NewCartStore(rdb)
			s.counters = cache.NewCounters(rdb)
			s.cache = cache.NewProductCache(rdb)
			s.logins = cache.NewLoginCache(rdb)
			return
		}
		log.Printf("⚠️ Redis indisponible, paniers en mémoire: %v", err)
	}
	s.carts = memstore.NewCarts()
	s.counters = memstore.NewCounters()
}

// openTracking utilise ScyllaDB pour l'historique des commandes si configuré.
func openTracking(ctx context.Context, cfg config.Config, s *stores) {
	if len(cfg.ScyllaHosts) > 0 {
		scylla := database.NewScyllaManager(database.ScyllaKeyspaceConfig{
			Hosts:    cfg.ScyllaHosts,
			Keyspace: cfg.ScyllaKeyspace,
			Username: cfg.ScyllaUser,
			Password: cfg.ScyllaPassword,
		})
		repo := database.NewTrackingRepository(scylla, cfg.ScyllaKeyspace)
		err := repo.EnsureSchema(ctx)
		if err == nil {
			s.closers = append(s.closers, scylla.Close)
			s.history = repo
			return
		}
		log.Printf("⚠️ ScyllaDB indisponible, historique en mémoire: %v", err)
		scylla.Close()
	}
	s.history = memstore.NewHistory()
}
