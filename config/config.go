package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

// AppConfig holds environment driven configuration values.
// Secrets must come from the environment or config file, never from code defaults.
type AppConfig struct {
	AppPort string
	// JWTSecret signs gateway-issued bearer tokens.
	JWTSecret string
	// GatewaySecretHash is the bcrypt hash of the shared secret the chat
	// gateway presents when exchanging a principal for a token.
	GatewaySecretHash string
	// DataFile is the durable user record snapshot.
	DataFile               string
	RateLimitPerMinute     int
	AllowedOrigins         []string
	LeaderboardCacheTTLSec int
	// Journal database (external append-only log)
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Journal retry policy
	JournalMaxAttempts   int
	JournalBackoffBaseMS int
	// Membership/role gateway
	RolesBaseURL string
	RolesToken   string
	// RoleTiers overrides the built-in badge ladder when set.
	RoleTiers []RoleTier
	// Redis for leaderboard caching
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// RoleTier is one rung of the badge ladder as configured: a streak threshold
// and the role name granted at it.
type RoleTier struct {
	Threshold int
	Name      string
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func applyDefaults(out *AppConfig) {
	if out.AppPort == "" {
		out.AppPort = "8080"
	}
	if out.DataFile == "" {
		out.DataFile = filepath.Join("data", "userData.json")
	}
	if out.RateLimitPerMinute == 0 {
		out.RateLimitPerMinute = 60
	}
	if len(out.AllowedOrigins) == 0 {
		out.AllowedOrigins = []string{"*"}
	}
	if out.LeaderboardCacheTTLSec == 0 {
		out.LeaderboardCacheTTLSec = 60
	}
	if out.JournalMaxAttempts == 0 {
		out.JournalMaxAttempts = 5
	}
	if out.JournalBackoffBaseMS == 0 {
		out.JournalBackoffBaseMS = 500
	}
	if out.RedisPort == 0 {
		out.RedisPort = 6379
	}
	if out.LogLevel == "" {
		out.LogLevel = "info"
	}
}

// loadJSONConfig reads the JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			case json.Number:
				i, _ := t.Int64()
				return int(i)
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.JWTSecret = getString(app, "JWTSecret")
		out.GatewaySecretHash = getString(app, "GatewaySecretHash")
		out.DataFile = getString(app, "DataFile")
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if v := getInt(app, "LeaderboardCacheTTLSec"); v != 0 {
			out.LeaderboardCacheTTLSec = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if jn, ok := raw["journal"].(map[string]any); ok {
		if v := getInt(jn, "MaxAttempts"); v != 0 {
			out.JournalMaxAttempts = v
		}
		if v := getInt(jn, "BackoffBaseMS"); v != 0 {
			out.JournalBackoffBaseMS = v
		}
	}

	if rl, ok := raw["roles"].(map[string]any); ok {
		out.RolesBaseURL = getString(rl, "BaseURL")
		out.RolesToken = getString(rl, "Token")
		if arr, ok := rl["Tiers"].([]any); ok {
			tiers := make([]RoleTier, 0, len(arr))
			for _, it := range arr {
				m, ok := it.(map[string]any)
				if !ok {
					continue
				}
				tier := RoleTier{Threshold: getInt(m, "Threshold"), Name: getString(m, "Name")}
				if tier.Threshold > 0 && tier.Name != "" {
					tiers = append(tiers, tier)
				}
			}
			if len(tiers) > 0 {
				out.RoleTiers = tiers
			}
		}
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getString(lg, "GinMode"); v != "" {
			out.GinMode = v
		}
		if v := getString(lg, "GinPath"); v != "" {
			out.GinPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

func applyEnvOverrides(out *AppConfig) {
	out.AppPort = getEnv("APP_PORT", out.AppPort)
	out.JWTSecret = getEnv("JWT_SECRET", out.JWTSecret)
	out.GatewaySecretHash = getEnv("GATEWAY_SECRET_HASH", out.GatewaySecretHash)
	out.DataFile = getEnv("DATA_FILE", out.DataFile)
	out.DatabaseURI = getEnv("DATABASE_URI", out.DatabaseURI)
	out.DBHost = getEnv("DB_HOST", out.DBHost)
	out.DBPort = getEnv("DB_PORT", out.DBPort)
	out.DBUser = getEnv("DB_USER", out.DBUser)
	out.DBPassword = getEnv("DB_PASSWORD", out.DBPassword)
	out.DBName = getEnv("DB_NAME", out.DBName)
	out.RolesBaseURL = getEnv("ROLES_BASE_URL", out.RolesBaseURL)
	out.RolesToken = getEnv("ROLES_TOKEN", out.RolesToken)
	out.RedisHost = getEnv("REDIS_HOST", out.RedisHost)
	out.RedisPassword = getEnv("REDIS_PASSWORD", out.RedisPassword)
	out.GinMode = getEnv("GIN_MODE", out.GinMode)
	out.LogLevel = getEnv("LOG_LEVEL", out.LogLevel)
	out.LogPath = getEnv("LOG_PATH", out.LogPath)

	out.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", out.RateLimitPerMinute)
	out.LeaderboardCacheTTLSec = getEnvInt("LEADERBOARD_CACHE_TTL_SEC", out.LeaderboardCacheTTLSec)
	out.JournalMaxAttempts = getEnvInt("JOURNAL_MAX_ATTEMPTS", out.JournalMaxAttempts)
	out.JournalBackoffBaseMS = getEnvInt("JOURNAL_BACKOFF_BASE_MS", out.JournalBackoffBaseMS)
	out.RedisPort = getEnvInt("REDIS_PORT", out.RedisPort)
	out.RedisDB = getEnvInt("REDIS_DB", out.RedisDB)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
