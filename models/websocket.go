package models

import (
	"github.com/gorilla/websocket"
)

// Websocketクライアントを定義
type Client struct {
	Conn     *websocket.Conn
	PlayerID string // UUID。セッション復元時はRedisから引き継ぐ
	RoomID   string
	Name     string // 表示名。player.joinで設定される
}
