package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/auth"
	"dermodazzle_back_end/internal/catalog"
	"dermodazzle_back_end/internal/config"
	"dermodazzle_back_end/internal/database"
	"dermodazzle_back_end/internal/handlers"
	"dermodazzle_back_end/internal/handlers/order"
	"dermodazzle_back_end/internal/handlers/product"
	"dermodazzle_back_end/internal/handlers/user"
	"dermodazzle_back_end/internal/orders"
	"dermodazzle_back_end/internal/reviews"
	"dermodazzle_back_end/internal/routes"
	"dermodazzle_back_end/internal/service"
	"dermodazzle_back_end/internal/services"
	"dermodazzle_back_end/internal/utils"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET manquant dans .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Stockage: %v", err)
	}
	defer st.close()

	var mailer utils.Sender = utils.LogSender{}
	if cfg.SMTPHost != "" {
		mailer = utils.NewMailer(utils.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		log.Println("✅ Relais SMTP configuré")
	}
	notifications := utils.NewNotifications(mailer, st.users, cfg.SupportEmail, cfg.FrontendURL)

	products := catalog.NewService(st.products, catalogOptions(ctx, cfg, st)...)
	manager := orders.NewManager(st.orders, products, st.carts, orderOptions(cfg, st, notifications)...)
	aggregator := reviews.NewAggregator(st.reviews, products)
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, 7*24*time.Hour)

	var webhooks order.WebhookParser
	if cfg.StripeSecretKey != "" && cfg.StripeWebhookSecret != "" {
		webhooks = func(payload []byte, signature string) (*services.CheckoutEvent, error) {
			return services.ParseWebhook(payload, signature, cfg.StripeWebhookSecret)
		}
	}
	if cfg.StripeSecretKey != "" && webhooks == nil {
		log.Println("⚠️ STRIPE_WEBHOOK_SECRET absent, webhook Stripe désactivé")
	}

	h := routes.Handlers{
		Auth: user.NewAuthHandler(st.users, tokens,
			user.AdminCredentials{Email: cfg.AdminEmail, Password: cfg.AdminPassword},
			st.logins, cfg.FrontendURL),
		Cart: user.NewCartHandler(st.carts, products, st.carts, cfg.AllowedOrigins),
		Orders: order.NewHandler(manager, utils.NewChromePrinter(cfg.ChromeWSURL),
			utils.InvoiceConfig{CompanyName: cfg.CompanyName, UPIID: cfg.UPIID}, webhooks),
		Products: product.NewHandler(products),
		Reviews:  product.NewReviewHandler(aggregator, st.users),
		Forms:    handlers.NewFormsHandler(st.subscribers, st.contacts, notifications),
	}

	oauth := auth.Setup(auth.OAuthConfig{
		BaseURL:       cfg.BaseURL,
		SessionSecret: cfg.SessionSecret,
		SecureCookies: cfg.SecureCookies,
		Google:        auth.ProviderConfig{ClientID: cfg.GoogleClientID, ClientSecret: cfg.GoogleClientSecret},
		Facebook:      auth.ProviderConfig{ClientID: cfg.FacebookClientID, ClientSecret: cfg.FacebookClientSecret},
	})

	r := gin.Default()
	routes.RegisterRoutes(r, h, routes.Options{
		Tokens:         tokens,
		Limiter:        st.counters,
		AllowedOrigins: cfg.AllowedOrigins,
		OAuth:          oauth,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Println("🚀 Serveur DermoDazzle lancé sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Serveur: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Arrêt en cours...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Arrêt forcé: %v", err)
	}
	notifications.Wait()
}

func catalogOptions(ctx context.Context, cfg config.Config, st *stores) []catalog.Option {
	var opts []catalog.Option
	if st.cache != nil {
		opts = append(opts, catalog.WithCache(st.cache))
	}
	if cfg.ElasticURL != "" {
		es, err := database.ConnectElastic(cfg.ElasticURL, cfg.ElasticUser, cfg.ElasticPassword)
		if err != nil {
			log.Printf("⚠️ Elasticsearch indisponible, recherche en mémoire: %v", err)
		} else {
			opts = append(opts, catalog.WithIndexer(service.NewProductIndexer(es)))
		}
	}
	if cfg.MinIOEndpoint != "" {
		client, err := database.ConnectMinIO(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
		if err != nil {
			log.Printf("⚠️ MinIO indisponible, ajout d'images désactivé: %v", err)
		} else {
			opts = append(opts, catalog.WithImageStore(services.NewImageStore(client, cfg.MinIOBucket, cfg.MinIOPublicURL)))
		}
	}
	return opts
}

func orderOptions(cfg config.Config, st *stores, notifier orders.Notifier) []orders.Option {
	opts := []orders.Option{
		orders.WithHistory(st.history),
		orders.WithNotifier(notifier),
	}
	if cfg.StripeSecretKey != "" {
		opts = append(opts, orders.WithStripe(services.NewStripeCheckout(cfg.StripeSecretKey, cfg.Currency, cfg.DeliveryCharge)))
		log.Println("✅ Stripe initialisé")
	} else {
		log.Println("⚠️ STRIPE_SECRET_KEY absent, paiement Stripe désactivé")
	}
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		opts = append(opts, orders.WithRazorpay(services.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.Currency)))
		log.Println("✅ Razorpay initialisé")
	}
	return opts
}
