package actions

import (
	"context"
	"encoding/json"
	"fmt"

	"mafserver/mafia/broadcast"
	"mafserver/mafia/database"
	"mafserver/mafia/game"
	"mafserver/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 受信エンベロープ。typeで種別を判定してからpayloadをデコードする
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// クライアントごとにメッセージ読み取りするゴルーチン。
// ワイヤーメッセージを型付きイベントへ変換してからオーケストレーターへ渡す。
// ゲームロジックは生のワイヤーデータを一切パースしない。
func HandleClient(ctx context.Context, client *models.Client, mgr *game.Manager, adapter *broadcast.ClientAdapter, rdb *redis.Client, logger *zap.Logger) {
	joined := false

	defer func() {
		client.Conn.Close()
		adapter.Close()
		if joined {
			mgr.Leave(client.PlayerID)
		}
	}()

	// セッション復元済みのクライアントは自動で再参加する
	if client.PlayerID != "" {
		joined = true
		mgr.Join(client.PlayerID, client.Name, adapter)
	}

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		var env envelope
		if err := json.Unmarshal(message, &env); err != nil {
			logger.Error("Error decoding message", zap.Error(err))
			broadcast.SendErrorMessage(adapter, "Invalid event payload")
			continue
		}

		switch env.Type {
		case models.EventPlayerJoin:
			var p models.JoinPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				broadcast.SendErrorMessage(adapter, "Invalid event payload")
				continue
			}
			if joined {
				broadcast.SendErrorMessage(adapter, "Already joined.")
				continue
			}
			if client.PlayerID == "" {
				if p.PlayerID != "" {
					client.PlayerID = p.PlayerID
				} else {
					client.PlayerID = uuid.New().String()
				}
			}
			client.Name = p.Name
			if client.Name == "" {
				client.Name = client.PlayerID
			}

			// 再接続用のセッションIDを発行してから参加させる
			if rdb != nil {
				if err := database.GenerateAndStoreSessionID(ctx, client, rdb, logger); err != nil {
					logger.Error("Failed to generate or store session ID", zap.Error(err))
				}
			}
			joined = true
			mgr.Join(client.PlayerID, client.Name, adapter)

		case models.EventPlayerLeave:
			if !joined {
				continue
			}
			joined = false
			mgr.Leave(client.PlayerID)

		default:
			if !joined {
				broadcast.SendErrorMessage(adapter, "Must join before performing any actions.")
				continue
			}
			ev, err := parseInbound(env)
			if err != nil {
				logger.Info("Received unknown message type", zap.String("type", env.Type))
				broadcast.SendErrorMessage(adapter, err.Error())
				continue
			}
			mgr.Dispatch(client.PlayerID, ev)
		}
	}
}

// ワイヤーメッセージを閉じた型付きユニオンへ変換する
func parseInbound(env envelope) (models.InboundEvent, error) {
	switch env.Type {
	case models.EventNightAction:
		var p models.NightActionPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid event payload")
		}
		return p, nil
	case models.EventVote:
		var p models.VotePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid event payload")
		}
		return p, nil
	case models.EventSendMessage:
		var p models.MessagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid event payload")
		}
		return p, nil
	case models.EventSyncRequest:
		return models.SyncRequestPayload{}, nil
	case models.EventOpeningStoryRequest:
		return models.OpeningStoryRequestPayload{}, nil
	default:
		return nil, fmt.Errorf("unsupported event %q", env.Type)
	}
}
