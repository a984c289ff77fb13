package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultTokenTTLHours = 72

var defaultCORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// Config is the sync server configuration, read from the environment.
type Config struct {
	Port        string
	DBPath      string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
	// MigrationsDir overrides the embedded server migrations when set.
	MigrationsDir string
}

// Load reads PORT, DB_PATH, JWT_SECRET, TOKEN_TTL_HOURS, CORS_ORIGINS and
// MIGRATIONS_DIR. Unset, empty or malformed values fall back to defaults.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "./data/focusflow.db")
	v.SetDefault("jwt_secret", "change-this-secret")
	v.SetDefault("token_ttl_hours", defaultTokenTTLHours)
	v.SetDefault("migrations_dir", "")

	ttlHours := v.GetInt("token_ttl_hours")
	if ttlHours <= 0 {
		ttlHours = defaultTokenTTLHours
	}

	return Config{
		Port:          v.GetString("port"),
		DBPath:        v.GetString("db_path"),
		JWTSecret:     v.GetString("jwt_secret"),
		TokenTTL:      time.Duration(ttlHours) * time.Hour,
		CORSOrigins:   splitOrigins(v.GetString("cors_origins")),
		MigrationsDir: v.GetString("migrations_dir"),
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return append([]string(nil), defaultCORSOrigins...)
	}
	return origins
}
