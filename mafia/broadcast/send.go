package broadcast

import (
	"encoding/json"
	"errors"
	"sync"

	"mafserver/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var errClientClosed = errors.New("client connection is closed")

// ClientAdapter は1接続への送信口。ゲームロジックはこのアダプター経由でしか
// イベントを送らない（ベストエフォート送信、失敗時はclosed扱い）。
// gorilla/websocketは同時書き込みを許さないため、送信はmuで直列化する。
type ClientAdapter struct {
	mu     sync.Mutex
	client *models.Client
	logger *zap.Logger
	closed bool
}

func NewClientAdapter(client *models.Client, logger *zap.Logger) *ClientAdapter {
	return &ClientAdapter{client: client, logger: logger}
}

// イベントをJSONにして送信する。失敗した接続は以後closedとして扱う
func (a *ClientAdapter) Deliver(ev models.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return errClientClosed
	}

	data, err := json.Marshal(ev)
	if err != nil {
		a.logger.Error("Failed to marshal event", zap.String("type", ev.Type), zap.Error(err))
		return err
	}
	if err := a.client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		a.closed = true
		return err
	}
	return nil
}

// Pingフレームを送信する。イベント送信と同じロックを通す
func (a *ClientAdapter) Ping() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return errClientClosed
	}
	if err := a.client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		a.closed = true
		return err
	}
	return nil
}

// 接続をclosed扱いにする。以後のDeliverは全て失敗する
func (a *ClientAdapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

// エラー応答を直接クライアントに送るヘルパー関数
func SendErrorMessage(a *ClientAdapter, errorMessage string) {
	err := a.Deliver(models.Event{
		Type:    models.EventActionAck,
		Payload: models.ActionAckPayload{Success: false, Message: errorMessage},
	})
	if err != nil {
		a.logger.Error("Failed to send error message", zap.Error(err))
	}
}
