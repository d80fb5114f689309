package database

import (
	"fmt"
	"log"
	"strconv"

	"qchat-service/config"

	"github.com/redis/go-redis/v9"
)

// Redis holds refresh tokens keyed by user id.
var Redis *redis.Client

func RedisConnect() {
	db, _ := strconv.Atoi(config.Config("REDIS_DB"))

	Redis = redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf(
			"%s:%s",
			config.Config("REDIS_HOST"),
			config.Config("REDIS_PORT"),
		),
		Password: config.Config("REDIS_PASSWORD"),
		DB:       db,
	})

	log.Printf("Connection opened to Redis")
}
