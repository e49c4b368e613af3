package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Event sink names accepted by EVENT_SINK.
const (
	EventSinkNone  = "none"
	EventSinkRedis = "redis"
	EventSinkKafka = "kafka"
)

// Blacklist failure policies accepted by BLACKLIST_FAILURE_POLICY.
const (
	BlacklistFailOpen   = "open"
	BlacklistFailClosed = "closed"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	MigrationsPath    string
	DBMaxConns        int32
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	DefaultCurrency   string

	// Redis backs the balance cache and, with EVENT_SINK=redis, the event channel.
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	BalanceCacheTTL time.Duration

	EventSink    string
	EventChannel string
	KafkaBrokers []string
	KafkaTopic   string

	BlacklistURL           string
	BlacklistAPIKey        string
	BlacklistTimeout       time.Duration
	BlacklistFailurePolicy string

	// Rates use the limiter format, e.g. "5-M" or "60-M".
	AuthRateLimit      string
	MoneyRateLimit     string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "wallet-ledger")
	viper.SetDefault("DEFAULT_CURRENCY", "NGN")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("BALANCE_CACHE_TTL", "30s")
	viper.SetDefault("EVENT_SINK", EventSinkNone)
	viper.SetDefault("EVENT_CHANNEL", "wallet.ledger.events")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "wallet.ledger.events")
	viper.SetDefault("BLACKLIST_URL", "")
	viper.SetDefault("BLACKLIST_API_KEY", "")
	viper.SetDefault("BLACKLIST_TIMEOUT", "3s")
	viper.SetDefault("BLACKLIST_FAILURE_POLICY", BlacklistFailOpen)
	viper.SetDefault("AUTH_RATE_LIMIT", "5-M")
	viper.SetDefault("MONEY_RATE_LIMIT", "60-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.BalanceCacheTTL = durationOrDefault("BALANCE_CACHE_TTL", 30*time.Second)
	cfg.BlacklistTimeout = durationOrDefault("BLACKLIST_TIMEOUT", 3*time.Second)

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.DBMaxConns = viper.GetInt32("DB_MAX_CONNS")
	cfg.DefaultCurrency = strings.ToUpper(viper.GetString("DEFAULT_CURRENCY"))

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")

	cfg.EventSink = strings.ToLower(viper.GetString("EVENT_SINK"))
	switch cfg.EventSink {
	case EventSinkNone, EventSinkRedis, EventSinkKafka:
	default:
		log.Printf("Warning: unknown EVENT_SINK '%s'. Events are disabled.\n", cfg.EventSink)
		cfg.EventSink = EventSinkNone
	}
	cfg.EventChannel = viper.GetString("EVENT_CHANNEL")
	cfg.KafkaBrokers = splitList(viper.GetString("KAFKA_BROKERS"))
	cfg.KafkaTopic = viper.GetString("KAFKA_TOPIC")
	if cfg.EventSink == EventSinkKafka && len(cfg.KafkaBrokers) == 0 {
		log.Println("Warning: EVENT_SINK=kafka but KAFKA_BROKERS is empty. Events are disabled.")
		cfg.EventSink = EventSinkNone
	}
	if cfg.EventSink == EventSinkRedis && cfg.RedisAddr == "" {
		log.Println("Warning: EVENT_SINK=redis but REDIS_ADDR is empty. Events are disabled.")
		cfg.EventSink = EventSinkNone
	}

	cfg.BlacklistURL = strings.TrimRight(viper.GetString("BLACKLIST_URL"), "/")
	cfg.BlacklistAPIKey = viper.GetString("BLACKLIST_API_KEY")
	cfg.BlacklistFailurePolicy = strings.ToLower(viper.GetString("BLACKLIST_FAILURE_POLICY"))
	if cfg.BlacklistFailurePolicy != BlacklistFailOpen && cfg.BlacklistFailurePolicy != BlacklistFailClosed {
		log.Printf("Warning: invalid BLACKLIST_FAILURE_POLICY '%s'. Defaulting to %s.\n", cfg.BlacklistFailurePolicy, BlacklistFailOpen)
		cfg.BlacklistFailurePolicy = BlacklistFailOpen
	}
	if cfg.BlacklistURL == "" {
		log.Println("Warning: BLACKLIST_URL not set. Identity screening is disabled.")
	}

	cfg.AuthRateLimit = viper.GetString("AUTH_RATE_LIMIT")
	cfg.MoneyRateLimit = viper.GetString("MONEY_RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	return cfg, nil
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
