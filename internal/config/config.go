package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort         string
	DBDSN           string
	JWTSecret       string
	JWTExpiresMin   int
	FrontendBaseURL string

	RedisAddr     string
	RedisPassword string
	RabbitMQURI   string

	DraftTTL      time.Duration
	SkillCacheTTL time.Duration
	SubmitTimeout time.Duration
	DefaultLocale string
}

func Load() Config {
	return Config{
		AppPort:         get("APP_PORT", "8080"),
		DBDSN:           must("DB_DSN"),
		JWTSecret:       must("JWT_SECRET"),
		JWTExpiresMin:   getInt("JWT_EXPIRES_MIN", 10080),
		FrontendBaseURL: get("FRONTEND_BASE_URL", "http://localhost:3000"),
		RedisAddr:       get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   get("REDIS_PASSWORD", ""),
		RabbitMQURI:     get("RABBITMQ_URI", ""),
		DraftTTL:        time.Duration(getInt("DRAFT_TTL_MIN", 1440)) * time.Minute,
		SkillCacheTTL:   time.Duration(getInt("SKILL_CACHE_TTL_MIN", 30)) * time.Minute,
		SubmitTimeout:   time.Duration(getInt("SUBMIT_TIMEOUT_SEC", 15)) * time.Second,
		DefaultLocale:   get("DEFAULT_LOCALE", "id"),
	}
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getInt(k string, def int) int {
	n, err := strconv.Atoi(get(k, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
