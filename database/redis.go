package database

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/utroned1234/APPDEFER/config"
)

// Rdb – опциональный клиент Redis для кэша дашборда.
// Если REDIS_ADDR не задан – остаётся nil, кэширование отключено.
var Rdb *redis.Client

func InitRedis(cfg *config.Config) {
	if cfg.RedisAddr == "" {
		log.Println("⚠️ REDIS_ADDR не задан, кэш дашборда отключён")
		return
	}

	Rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := Rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("⚠️ Redis недоступен (%v), кэш дашборда отключён", err)
		Rdb = nil
		return
	}

	log.Println("✅ Подключение к Redis установлено")
}

func CloseRedis() {
	if Rdb != nil {
		Rdb.Close()
	}
}
