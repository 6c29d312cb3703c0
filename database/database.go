package database

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"mafserver/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// LoadConfig はconfig.jsonからゲーム設定を読み込みます。
// ファイルがなければデフォルト設定で動く。
func LoadConfig(filename string) (models.Config, error) {
	var config models.Config

	configFile, err := os.Open(filename)
	if err != nil {
		config.ApplyDefaults()
		return config, err
	}
	defer configFile.Close()

	jsonParser := json.NewDecoder(configFile)
	err = jsonParser.Decode(&config)
	config.ApplyDefaults()
	return config, err
}

// InitRedis はセッション復元に使うRedisクライアントを初期化します。
func InitRedis(logger *zap.Logger) (*redis.Client, error) {
	// 環境変数からRedis接続情報を取得
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379" // デフォルト値
	}

	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := os.Getenv("REDIS_DB")
	db, err := strconv.Atoi(redisDB)
	if err != nil {
		logger.Info("Invalid REDIS_DB value, using default DB 0")
		db = 0 // デフォルトDB
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	if _, err = rdb.Ping(context.Background()).Result(); err != nil {
		logger.Error("Failed to connect to Redis", zap.Error(err))
		return nil, err
	}

	logger.Info("Connected to Redis")
	return rdb, nil
}
