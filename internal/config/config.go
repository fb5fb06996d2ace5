package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	StoreDriver string // "mongo" ou "memory"

	MongoURI string
	MongoDB  string

	RedisHost     string
	RedisPassword string

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUser     string
	ScyllaPassword string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIOPublicURL string

	StripeSecretKey     string
	StripeWebhookSecret string
	RazorpayKeyID       string
	RazorpayKeySecret   string
	Currency            string
	DeliveryCharge      float64

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	SupportEmail string

	JWTSecret     string
	AdminEmail    string
	AdminPassword string

	FrontendURL    string
	AllowedOrigins []string
	BaseURL        string
	SessionSecret  string
	SecureCookies  bool

	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string

	CompanyName string
	UPIID       string
	ChromeWSURL string
}

// Load lit le fichier .env s'il existe puis l'environnement du processus.
func Load() Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

func FromEnv() Config {
	frontend := get("FRONTEND_URL", "http://localhost:5173")
	return Config{
		Port:        get("PORT", "4000"),
		StoreDriver: get("STORE_DRIVER", "memory"),

		MongoURI: get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  get("MONGO_DB", "dermodazzle"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ScyllaHosts:    list("SCYLLA_HOSTS", nil),
		ScyllaKeyspace: get("SCYLLA_KS_TRACKING_KEYSPACE", "dermodazzle_tracking"),
		ScyllaUser:     os.Getenv("SCYLLA_KS_TRACKING_ROLE"),
		ScyllaPassword: os.Getenv("SCYLLA_KS_TRACKING_PASSWORD"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    get("MINIO_BUCKET", "dermodazzle"),
		MinIOUseSSL:    boolean("MINIO_USE_SSL", false),
		MinIOPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		RazorpayKeyID:       os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:   os.Getenv("RAZORPAY_KEY_SECRET"),
		Currency:            strings.ToUpper(get("CURRENCY", "INR")),
		DeliveryCharge:      float("DELIVERY_CHARGE", 100),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     integer("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     get("MAIL_FROM", "noreply@dermodazzle.in"),
		SupportEmail: os.Getenv("SUPPORT_EMAIL"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		FrontendURL:    frontend,
		AllowedOrigins: list("ALLOWED_ORIGINS", []string{frontend}),
		BaseURL:        get("BASE_URL", "http://localhost:4000"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SecureCookies:  boolean("SECURE_COOKIES", false),

		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		FacebookClientID:     os.Getenv("FACEBOOK_CLIENT_ID"),
		FacebookClientSecret: os.Getenv("FACEBOOK_CLIENT_SECRET"),

		CompanyName: get("COMPANY_NAME", "DermoDazzle"),
		UPIID:       os.Getenv("UPI_VPA"),
		ChromeWSURL: os.Getenv("CHROME_WS_URL"),
	}
}

func get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func list(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func boolean(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func integer(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

func float(key string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return f
}
