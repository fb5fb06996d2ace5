// Commande seed : charge un catalogue YAML dans MongoDB et l'index de recherche.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"dermodazzle_back_end/internal/cache"
	"dermodazzle_back_end/internal/catalog"
	"dermodazzle_back_end/internal/config"
	"dermodazzle_back_end/internal/database"
	"dermodazzle_back_end/internal/service"
)

func main() {
	file := flag.String("file", "cmd/seed/products.yaml", "fichier YAML du catalogue")
	reindex := flag.Bool("reindex", false, "republier tout le catalogue dans Elasticsearch")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	seed, err := catalog.LoadSeed(*file)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	m, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("❌ MongoDB: %v", err)
	}
	defer m.Close(context.Background())

	var opts []catalog.Option
	if cfg.ElasticURL != "" {
		es, err := database.ConnectElastic(cfg.ElasticURL, cfg.ElasticUser, cfg.ElasticPassword)
		if err != nil {
			log.Printf("⚠️ Elasticsearch indisponible, indexation ignorée: %v", err)
		} else {
			opts = append(opts, catalog.WithIndexer(service.NewProductIndexer(es)))
		}
	}
	if cfg.RedisHost != "" {
		rdb, err := cache.InitRedis(ctx, cfg.RedisHost, cfg.RedisPassword)
		if err != nil {
			log.Printf("⚠️ Redis indisponible, cache produits non invalidé: %v", err)
		} else {
			defer rdb.Close()
			opts = append(opts, catalog.WithCache(cache.NewProductCache(rdb)))
		}
	}
	svc := catalog.NewService(m.Products(), opts...)

	n, err := svc.Import(ctx, seed.Products)
	if err != nil {
		log.Fatalf("❌ Import interrompu après %d produits: %v", n, err)
	}
	log.Printf("✅ %d produits ajoutés (%d dans le fichier)", n, len(seed.Products))

	if *reindex {
		total, err := svc.Reindex(ctx)
		if err != nil {
			log.Fatalf("❌ Réindexation: %v", err)
		}
		log.Printf("🔎 %d produits réindexés", total)
	}
}
