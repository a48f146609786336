package cache

import (
	"context"
	"log"

	"ssemi/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func Connect() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	if _, err := RDB.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
}

func Close() {
	if RDB != nil {
		RDB.Close()
	}
}
