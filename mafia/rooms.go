package mafia

import (
	"context"
	"sync"
	"time"

	"mafserver/mafia/game"
	"mafserver/mafia/narrator"
	"mafserver/models"

	"go.uber.org/zap"
)

// 空のまま放置されたルームを破棄するまでの猶予
const emptyRoomGrace = 10 * time.Minute

type roomEntry struct {
	manager    *game.Manager
	cancel     context.CancelFunc
	emptySince time.Time // ゼロ値なら空としてマークされていない
}

// RoomHub は全ルームのレジストリ。ルームは最初の接続で作られ、
// それぞれ独立したスケジューラーとナレーター文脈を持つ。
// ルーム内の直列化はManagerが行うため、ここのロックはマップ操作のみを守る。
type RoomHub struct {
	mu         sync.Mutex
	rooms      map[string]*roomEntry
	cfg        models.Config
	llm        narrator.LLMClient
	characters *narrator.Generator
	logger     *zap.Logger
}

func NewRoomHub(cfg models.Config, llm narrator.LLMClient, logger *zap.Logger) *RoomHub {
	return &RoomHub{
		rooms:      make(map[string]*roomEntry),
		cfg:        cfg,
		llm:        llm,
		characters: narrator.NewGenerator(llm, logger),
		logger:     logger,
	}
}

// ルームを検索または作成する
func (h *RoomHub) GetOrCreate(roomID string) *game.Manager {
	h.mu.Lock()
	defer h.mu.Unlock()

	if entry, ok := h.rooms[roomID]; ok {
		entry.emptySince = time.Time{}
		return entry.manager
	}

	// ナレーターの文脈（雰囲気・日数・プロフィール）はルームごとに独立
	svc := narrator.NewService(h.llm, h.logger)
	mgr := game.NewManager(roomID, h.cfg, svc, h.characters, h.logger)

	ctx, cancel := context.WithCancel(context.Background())
	go game.RunScheduler(ctx, mgr, h.logger)

	h.rooms[roomID] = &roomEntry{manager: mgr, cancel: cancel}
	h.logger.Info("Room created", zap.String("room", roomID))
	return mgr
}

// SweepEmptyRooms は誰もいないルームをマークし、猶予を過ぎても空のままなら
// スケジューラーを止めて破棄する。Cronジョブから定期的に呼ばれる。
func (h *RoomHub) SweepEmptyRooms() {
	now := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID, entry := range h.rooms {
		if entry.manager.PlayerCount() > 0 {
			entry.emptySince = time.Time{}
			continue
		}
		if entry.emptySince.IsZero() {
			entry.emptySince = now
			continue
		}
		if now.Sub(entry.emptySince) >= emptyRoomGrace {
			entry.cancel()
			delete(h.rooms, roomID)
			h.logger.Info("Empty room removed", zap.String("room", roomID))
		}
	}
}

// 現在のルーム数
func (h *RoomHub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
