package mafia

import (
	"context"
	"net/http"
	"time"

	"mafserver/mafia/actions"
	"mafserver/mafia/broadcast"
	"mafserver/mafia/database"
	"mafserver/models"

	"go.uber.org/zap"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
)

// WebSocket接続へのアップグレードを行う関数。
// ルームIDはURLパスから渡され、ルームは存在しなければここで作られる。
func HandleConnections(ctx context.Context, w http.ResponseWriter, r *http.Request, roomID string, hub *RoomHub, rdb *redis.Client, logger *zap.Logger, upgrader websocket.Upgrader) {
	if roomID == "" {
		http.Error(w, "Room ID is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Error upgrading WebSocket", zap.Error(err))
		return
	}

	client := &models.Client{Conn: conn, RoomID: roomID}

	// セッションIDの検証と復元。有効ならプレイヤーIDを引き継ぎ、
	// 旧セッションは破棄して新しいIDを発行する
	sessionID := r.Header.Get("SessionID")
	if sessionID != "" && rdb != nil {
		if restored := database.ValidateSessionID(ctx, rdb, sessionID, logger); restored != nil {
			client.PlayerID = restored.PlayerID
			client.Name = restored.Name
			rdb.Del(ctx, "session:"+sessionID)
			if err := database.GenerateAndStoreSessionID(ctx, client, rdb, logger); err != nil {
				logger.Error("Failed to rotate session ID", zap.Error(err))
			}
		}
	}

	mgr := hub.GetOrCreate(roomID)
	adapter := broadcast.NewClientAdapter(client, logger)

	// WebSocketのCloseHandlerを設定
	client.Conn.SetCloseHandler(func(code int, text string) error {
		logger.Info("WebSocket closed", zap.Int("code", code), zap.String("reason", text))
		adapter.Close()
		return nil
	})

	logger.Info("New client connected", zap.String("room", roomID), zap.String("player", client.PlayerID))

	// クライアントごとにメッセージ読み取りゴルーチンを起動
	go actions.HandleClient(ctx, client, mgr, adapter, rdb, logger)

	// Ping/Pongを管理するゴルーチンを起動
	go maintainConnection(client, adapter, logger)
}

// Ping/Pongで接続の生存を確認する。Pongが途絶えたら読み取りデッドラインが切れ、
// 読み取りゴルーチン側で切断処理（Leave）が走る。
func maintainConnection(client *models.Client, adapter *broadcast.ClientAdapter, logger *zap.Logger) {
	const pingPeriod = 10 * time.Second
	const pongWait = 60 * time.Second

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := adapter.Ping(); err != nil {
			logger.Info("Ping failed, connection is gone", zap.String("player", client.PlayerID))
			return
		}
	}
}
