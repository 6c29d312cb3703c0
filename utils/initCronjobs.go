package utils

import (
	"mafserver/mafia"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronCleaner は空のルームを定期的に掃除するジョブを起動します。
// ルームの状態はメモリ上にしかないため、誰もいなくなったルームは
// マークしてから猶予を置いて破棄する（マーク＆スイープ）。
func CronCleaner(hub *mafia.RoomHub, logger *zap.Logger) {
	c := cron.New()

	c.AddFunc("@every 5m", func() {
		before := hub.RoomCount()
		hub.SweepEmptyRooms()
		logger.Info("Room sweep finished",
			zap.Int("rooms_before", before),
			zap.Int("rooms_after", hub.RoomCount()),
		)
	})

	c.Start()
}
