package database

import (
	"context"
	"encoding/json"
	"time"

	"mafserver/models"

	"go.uber.org/zap"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ValidateSessionID はRedisのセッション情報を検証し、有効ならクライアント情報を返します。
// 再接続したプレイヤーが同じプレイヤーIDを引き継ぐために使う。
func ValidateSessionID(ctx context.Context, rdb *redis.Client, sessionID string, logger *zap.Logger) *models.Client {
	if sessionID == "" {
		return nil
	}

	sessionInfoJSON, err := rdb.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		logger.Info("Session ID is invalid or expired", zap.String("sessionID", sessionID))
		return nil
	}

	var sessionInfo map[string]string
	if err := json.Unmarshal([]byte(sessionInfoJSON), &sessionInfo); err != nil {
		logger.Error("Failed to decode session info", zap.Error(err))
		return nil
	}

	playerID, ok := sessionInfo["playerID"]
	if !ok || playerID == "" {
		logger.Error("Invalid session info: missing playerID")
		return nil
	}

	// 有効なセッション情報を基にClientオブジェクトを作成
	return &models.Client{
		PlayerID: playerID,
		RoomID:   sessionInfo["roomID"],
		Name:     sessionInfo["name"],
	}
}

// GenerateAndStoreSessionID は新しいセッションIDを発行してRedisに保存し、
// クライアントに送り返します。
func GenerateAndStoreSessionID(ctx context.Context, client *models.Client, rdb *redis.Client, logger *zap.Logger) error {
	sessionID := uuid.New().String()

	sessionInfo := map[string]string{
		"playerID": client.PlayerID,
		"roomID":   client.RoomID,
		"name":     client.Name,
	}
	sessionInfoJSON, err := json.Marshal(sessionInfo)
	if err != nil {
		logger.Error("Error encoding session info", zap.Error(err))
		return err
	}

	// 24時間の有効期限で保存
	err = rdb.Set(ctx, "session:"+sessionID, sessionInfoJSON, 24*time.Hour).Err()
	if err != nil {
		logger.Error("Error storing session info in Redis", zap.Error(err))
		return err
	}

	return sendSessionIDToClient(client, sessionID, logger)
}

func sendSessionIDToClient(client *models.Client, sessionID string, logger *zap.Logger) error {
	response := map[string]interface{}{
		"sessionID": sessionID,
		"playerID":  client.PlayerID,
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		logger.Error("Error marshalling session ID response", zap.Error(err))
		return err
	}

	if client.Conn == nil {
		logger.Warn("WebSocket connection is not established, cannot send session ID")
		return nil
	}
	if err := client.Conn.WriteMessage(websocket.TextMessage, responseJSON); err != nil {
		logger.Error("Error sending session ID to client", zap.Error(err))
		return err
	}
	logger.Info("Successfully sent session ID to client", zap.String("sessionID", sessionID))
	return nil
}
