package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	TrustedProxies []string
	AllowedOrigins []string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret        string
	JWTRefreshSecret string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Политика активации ежедневной прибыли: "window" или "tasks".
	// В исходной системе нашли обе – одновременно активна только одна, выбор через env.
	GatePolicy string
	// Час разблокировки по локальному времени (окно открывается в 01:00)
	UnlockHour int

	// Минимальная инвестиция для доступа к рулетке, Bs
	RouletteMinInvestment int64

	// Кэш дашборда, 0 = выключен
	DashboardCacheTTL time.Duration

	// Телеграм-уведомления для админа
	TelegramBotToken   string
	TelegramAdminChats []int64
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		TrustedProxies: []string{},
		AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "appdefer"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JWTSecret:        getEnv("JWT_ACCESS_SECRET", "default-access-secret"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "default-refresh-secret"),
		JWTAccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		JWTRefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 30*24*time.Hour),

		GatePolicy: getEnv("GATE_POLICY", "window"),
		UnlockHour: getEnvAsInt("UNLOCK_HOUR", 1),

		RouletteMinInvestment: int64(getEnvAsInt("ROULETTE_MIN_INVESTMENT", 2000)),

		DashboardCacheTTL: getEnvAsDuration("DASHBOARD_CACHE_TTL", 30*time.Second),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
	}

	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		cfg.TrustedProxies = strings.Split(proxies, ",")
	}

	for _, part := range getEnvAsSlice("TELEGRAM_ADMIN_CHATS", nil) {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			cfg.TelegramAdminChats = append(cfg.TelegramAdminChats, id)
		}
	}

	if cfg.GatePolicy != "window" && cfg.GatePolicy != "tasks" {
		log.Printf("⚠️ Неизвестная GATE_POLICY=%q, использую window", cfg.GatePolicy)
		cfg.GatePolicy = "window"
	}
	if cfg.UnlockHour < 0 || cfg.UnlockHour > 23 {
		cfg.UnlockHour = 1
	}

	log.Printf("📋 Конфигурация загружена: порт=%s, режим=%s, БД=%s, политика=%s, разблокировка=%02d:00",
		cfg.Port, cfg.Env, cfg.DBName, cfg.GatePolicy, cfg.UnlockHour)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strVal := getEnv(key, "")
	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strVal := getEnv(key, "")
	if val, err := time.ParseDuration(strVal); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue
	}
	parts := strings.Split(val, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
