package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	CatalogBase string
	CatalogKey  string
	CatalogRPS  int

	WarmWorkers     int
	WarmPropertyIDs []string
	WarmProviderIDs []string

	CacheTTL   time.Duration
	SessionTTL time.Duration

	// wizard behaviour
	RequireAspectRating bool
	Strict              bool
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env not loaded")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", ""),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviewflow?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		CatalogBase: env("CATALOG_BASE_URL", "http://localhost:8081/v1"),
		CatalogKey:  env("CATALOG_API_KEY", ""),
		CatalogRPS:  atoi("CATALOG_RPS", 5),

		WarmWorkers:     atoi("WARM_WORKERS", 8),
		WarmPropertyIDs: list("WARM_PROPERTY_IDS"),
		WarmProviderIDs: list("WARM_PROVIDER_IDS"),

		CacheTTL:   time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SessionTTL: time.Duration(atoi("SESSION_TTL_SECONDS", 3600)) * time.Second,

		RequireAspectRating: flag("WIZARD_REQUIRE_ASPECT"),
		Strict:              flag("WIZARD_STRICT"),
	}
	if c.CatalogKey == "" {
		log.Warn().Msg("CATALOG_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func flag(k string) bool {
	b, _ := strconv.ParseBool(os.Getenv(k))
	return b
}

// list splits a comma separated variable, dropping blanks.
func list(k string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(k), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
