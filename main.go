package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"mafserver/database" // Redisの初期化と設定ファイルの読み込み
	"mafserver/mafia"    // MAFIAのゲームロジック
	"mafserver/mafia/narrator"
	"mafserver/utils" // ロガーの初期化とCronジョブ（空ルームの定期クリーンナップ）

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

func main() {
	var logger *zap.Logger
	var err error
	logger, err = utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	// .envからAPIキーなどを読み込む（ファイルがなくても続行）
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	// ゲーム設定の読み込み
	config, err := database.LoadConfig("config.json")
	if err != nil {
		logger.Warn("設定ファイルの読み込みに失敗したためデフォルト設定で起動します", zap.Error(err))
	}

	// セッション復元に使うRedisの初期化。
	// 接続できない場合はセッション復元なしで続行する（ゲーム状態はメモリ上のみ）
	var rdb *redis.Client
	rdb, err = database.InitRedis(logger)
	if err != nil {
		logger.Warn("Redis is unavailable, session restore is disabled", zap.Error(err))
		rdb = nil
	}

	// ナレーター用のLLMクライアントを初期化
	llm := narrator.NewDeepSeekClient(
		os.Getenv("DEEPSEEK_API_KEY"),
		os.Getenv("LLM_BASE_URL"),
		os.Getenv("LLM_MODEL"),
		logger,
	)

	// 全ルームのレジストリ
	hub := mafia.NewRoomHub(config, llm, logger)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	// クーロンスケジューラのセットアップと呼び出し
	go utils.CronCleaner(hub, logger)

	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"}, //ここにデプロイサーバーのIPアドレスを設定
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "SessionID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": hub.RoomCount()})
	})
	router.GET("/ws/:roomID", func(c *gin.Context) {
		// リクエストのcontextはハンドラ終了時にキャンセルされるため、
		// 接続の寿命にはBackgroundを使う
		mafia.HandleConnections(context.Background(), c.Writer, c.Request, c.Param("roomID"), hub, rdb, logger, upgrader)
	})

	// テスト時はHTTPサーバーとして運用。デフォルトポートは ":8080"
	router.Run()
}
