package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL          string
	CloudinaryCloudName    string
	CloudinaryUploadFolder string

	JWTSecret string
	JWTTTL    time.Duration

	ChallengeBcryptCost    int
	ChallengeRetryCooldown time.Duration
	UnreadCacheTTL         time.Duration

	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL:          os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "lost_found/items"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@lostfound.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	cfg.JWTTTL, err = parseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.UnreadCacheTTL, err = parseDuration(getEnv("UNREAD_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid UNREAD_CACHE_TTL: %w", err)
	}
	cfg.ChallengeRetryCooldown, err = parseDuration(getEnv("CHALLENGE_RETRY_COOLDOWN", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHALLENGE_RETRY_COOLDOWN: %w", err)
	}
	cfg.ChallengeBcryptCost, err = strconv.Atoi(getEnv("CHALLENGE_BCRYPT_COST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHALLENGE_BCRYPT_COST: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
