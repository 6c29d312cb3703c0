package game

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// tickの間隔。プレイヤーのイベントが途絶えてもフェーズが期限切れするように、
// ルームごとにバックグラウンドでtickを回す
const tickInterval = 1 * time.Second

// RunScheduler はルームが破棄されるまでManagerのtickを定期的に呼び続ける。
// tickはアクション処理と同じロックを通るため、このゴルーチンが
// 別の書き込み経路になることはない。
func RunScheduler(ctx context.Context, m *Manager, logger *zap.Logger) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Room scheduler stopped", zap.String("room", m.roomID))
			return
		case now := <-ticker.C:
			m.Tick(now)
		}
	}
}
