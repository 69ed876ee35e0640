package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsProduction bool

	Port      string
	JWTSecret string

	// DatabaseURL selects postgres when set; otherwise a local sqlite file.
	DatabaseURL string
	// RedisURL enables the cross-instance broadcast bridge when set.
	RedisURL string

	AllowedOrigins []string

	// runtime tunables
	RateLimitWindowSeconds  int
	RateLimitCapacity       int
	SnapshotCacheTTLSeconds int
	SnapshotCacheMaxItems   int
	ConversationListDefault int
)

func init() {
	AppEnv = os.Getenv("APP_ENV")

	// .env is a development convenience; production reads the host env only.
	if AppEnv != "production" {
		_ = godotenv.Load()
		AppEnv = os.Getenv("APP_ENV")
	}
	if AppEnv == "" {
		AppEnv = "development"
	}
	IsProduction = AppEnv == "production"

	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "5000"
	}

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	if JWTSecret == "" {
		if IsProduction {
			log.Fatal("JWT_SECRET_KEY must be set in production")
		}
		JWTSecret = "your-secret-key"
	}

	DatabaseURL = os.Getenv("DATABASE_URL")
	RedisURL = os.Getenv("REDIS_URL")

	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			AllowedOrigins = append(AllowedOrigins, o)
		}
	}

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)
	SnapshotCacheTTLSeconds = atoiOr(os.Getenv("SNAPSHOT_CACHE_TTL_SECONDS"), 600)
	SnapshotCacheMaxItems = atoiOr(os.Getenv("SNAPSHOT_CACHE_MAX_ITEMS"), 500)
	ConversationListDefault = atoiOr(os.Getenv("CONVERSATION_LIST_DEFAULT"), 50)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
