package game

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"mafserver/models"

	"go.uber.org/zap"
)

// ロビーがこの人数未満の間はタイマーが進まない
const minLobbyPlayers = 4

// イベントログの保持上限。長時間稼働するルームでメモリが無制限に増えないようにする
const maxLogEntries = 50

// PlayerAdapter は接続中のプレイヤーへイベントを届ける能力。
// 実体はトランスポート層が所有し、Managerは参照だけを持つ。
type PlayerAdapter interface {
	Deliver(event models.Event) error
}

// ナレーター（LLM連携）へのインターフェース。実装側は失敗時に
// 固定のフォールバック文を返すため、呼び出しは決して失敗しない。
type Narrator interface {
	StoryOpening(names []string) string
	DeathNarrative(victim, cause string) string
	SaveNarrative(target string) string
	VotingNarrative(target string, votes map[string]string) string
	PhaseTransition(from, to string) string
	GameEnding(winner string, survivors []string) string
	SetProfiles(profiles []models.CharacterProfilePayload)
}

// キャラクタープロフィール生成へのインターフェース。ゲーム開始時に一度だけ使う。
type CharacterGenerator interface {
	GenerateProfiles(players []PlayerRef) []models.CharacterProfilePayload
}

// ID・表示名のペア
type PlayerRef struct {
	ID   string
	Name string
}

type playerEntry struct {
	name    string
	adapter PlayerAdapter
}

// 送信予定のイベント。状態の変更を完了してから送る
type delivery struct {
	to PlayerAdapter
	ev models.Event
}

// Manager は1ルームのオーケストレーター。GameState・VoteLedger・接続中プレイヤー・
// フェーズ期限・ナレーション停止フラグを所有する。
// ルームごとの直列化: 全ての状態変更（アクション処理とtick）はmuを保持して行い、
// 送信はロック解放後に行う。ルーム間は完全に独立。
type Manager struct {
	mu sync.Mutex

	roomID string
	cfg    models.Config
	logger *zap.Logger
	rng    *rand.Rand

	state  *GameState
	ledger *VoteLedger

	players map[string]*playerEntry

	nextPhaseAt   time.Time
	narratorBusy  bool // trueの間はフェーズ期限を評価しない
	narratorSince time.Time
	narrationSeq  int
	introInFlight bool // プロフィール公開シーケンスの進行中
	// プロフィール公開中にゲームが終了した場合、公開完了まで終了処理を保留する
	pendingGameEnd bool

	eventLog []models.GameLogEntry

	narrator   Narrator
	characters CharacterGenerator
}

func NewManager(roomID string, cfg models.Config, narrator Narrator, characters CharacterGenerator, logger *zap.Logger) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		roomID:      roomID,
		cfg:         cfg,
		logger:      logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		state:       NewGameState(),
		ledger:      NewVoteLedger(),
		players:     make(map[string]*playerEntry),
		nextPhaseAt: time.Now().Add(time.Duration(cfg.LobbySeconds) * time.Second),
		narrator:    narrator,
		characters:  characters,
	}
}

// プレイヤーを追加し、参加通知と全員への状態同期をブロードキャストする
func (m *Manager) Join(playerID, name string, adapter PlayerAdapter) {
	m.mu.Lock()
	m.players[playerID] = &playerEntry{name: name, adapter: adapter}
	m.state.AddPlayer(playerID)
	m.appendLog(models.EventPlayerJoined, map[string]any{"playerId": playerID, "name": name})

	dels := m.broadcastLocked(models.Event{
		Type:    models.EventPlayerJoined,
		Payload: models.PlayerJoinedPayload{PlayerID: playerID, Name: name},
	})
	dels = append(dels, m.syncAllLocked()...)
	m.mu.Unlock()

	m.send(dels)
	m.logger.Info("Player joined", zap.String("room", m.roomID), zap.String("player", playerID))
}

// プレイヤーを削除する。退出者が投じた投票は台帳に残る（フェーズのリセットで消える）が、
// 退出者に向けられた投票は取り除く。ロースターにいない対象が解決時の勝者になると
// フェーズが進められなくなるため。
func (m *Manager) Leave(playerID string) {
	m.mu.Lock()
	delete(m.players, playerID)
	m.state.RemovePlayer(playerID)
	m.ledger.PurgeTarget(playerID)
	m.appendLog(models.EventPlayerLeft, map[string]any{"playerId": playerID})

	dels := m.broadcastLocked(models.Event{
		Type:    models.EventPlayerLeft,
		Payload: models.PlayerLeftPayload{PlayerID: playerID},
	})
	m.mu.Unlock()

	m.send(dels)
	m.logger.Info("Player left", zap.String("room", m.roomID), zap.String("player", playerID))
}

// 現在の接続人数
func (m *Manager) PlayerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players)
}

// Dispatch はプレイヤーのアクションを現在のフェーズと役職に照らして検証・適用する。
// 処理後は必ずtickを実行する（フェーズ期限はプレイヤーのイベントでも進む）。
func (m *Manager) Dispatch(actorID string, ev models.InboundEvent) {
	now := time.Now()

	m.mu.Lock()
	var dels []delivery
	actor, ok := m.players[actorID]
	if !ok {
		m.mu.Unlock()
		return
	}

	switch e := ev.(type) {
	case models.NightActionPayload:
		dels = m.handleNightActionLocked(actorID, actor, e)
	case models.VotePayload:
		dels = m.handleVoteLocked(actorID, actor, e)
	case models.MessagePayload:
		dels = m.handleMessageLocked(actorID, actor, e)
	case models.SyncRequestPayload:
		dels = append(dels, delivery{to: actor.adapter, ev: models.Event{
			Type:    models.EventGameState,
			Payload: m.projectForLocked(actorID),
		}})
	case models.OpeningStoryRequestPayload:
		names := m.playerNamesLocked()
		go m.narrate(func() string { return m.narrator.StoryOpening(names) })
		dels = append(dels, ackTo(actor, true, ""))
	case models.JoinPayload, models.LeavePayload:
		// joinとleaveはトランスポート層がJoin/Leaveを直接呼ぶ
		m.logger.Warn("Join/leave events must not reach Dispatch", zap.String("room", m.roomID))
	default:
		dels = append(dels, ackTo(actor, false, "Unsupported event."))
	}

	dels = append(dels, m.tickLocked(now)...)
	m.mu.Unlock()

	m.send(dels)
}

func (m *Manager) handleNightActionLocked(actorID string, actor *playerEntry, e models.NightActionPayload) []delivery {
	ps, inGame := m.state.Players[actorID]
	if !inGame || m.state.Phase != PhaseNight {
		return []delivery{ackTo(actor, false, "You cannot do this right now.")}
	}

	switch e.Action {
	case models.NightActionKill:
		if ps.Role != RoleMafia {
			return []delivery{ackTo(actor, false, "You cannot do this right now.")}
		}
		target, ok := m.state.Players[e.TargetID]
		if !ok || !target.Alive {
			return []delivery{ackTo(actor, false, "Invalid target.")}
		}
		m.ledger.CastKill(actorID, e.TargetID)
		dels := m.broadcastToRoleLocked(RoleMafia, models.Event{
			Type:    models.EventVoteCast,
			Payload: models.VoteCastPayload{ActorID: actorID, TargetID: e.TargetID},
		})
		return append(dels, ackTo(actor, true, ""))

	case models.NightActionHeal:
		if ps.Role != RoleMedic {
			return []delivery{ackTo(actor, false, "You cannot do this right now.")}
		}
		target, ok := m.state.Players[e.TargetID]
		if !ok || !target.Alive {
			return []delivery{ackTo(actor, false, "Target is already dead.")}
		}
		m.ledger.CastHeal(actorID, e.TargetID)
		dels := m.broadcastToRoleLocked(RoleMedic, models.Event{
			Type:    models.EventVoteCast,
			Payload: models.VoteCastPayload{ActorID: actorID, TargetID: e.TargetID},
		})
		return append(dels, ackTo(actor, true, ""))
	}
	return []delivery{ackTo(actor, false, "You cannot do this right now.")}
}

func (m *Manager) handleVoteLocked(actorID string, actor *playerEntry, e models.VotePayload) []delivery {
	if m.state.Phase != PhaseVoting {
		return []delivery{ackTo(actor, false, "You cannot do this right now.")}
	}
	target, ok := m.state.Players[e.TargetID]
	if !ok || !target.Alive {
		return []delivery{ackTo(actor, false, "Invalid target.")}
	}
	m.ledger.CastKill(actorID, e.TargetID)
	dels := m.broadcastLocked(models.Event{
		Type:    models.EventVoteCast,
		Payload: models.VoteCastPayload{ActorID: actorID, TargetID: e.TargetID},
	})
	return append(dels, ackTo(actor, true, ""))
}

func (m *Manager) handleMessageLocked(actorID string, actor *playerEntry, e models.MessagePayload) []delivery {
	if m.state.Phase != PhaseLobby && m.state.Phase != PhaseDay {
		return []delivery{ackTo(actor, false, "Messages are only allowed in the lobby or during the day.")}
	}
	e.ActorID = actorID
	return m.broadcastLocked(models.Event{
		Type:    models.EventMessageReceived,
		Payload: e,
	})
}

// Tick はフェーズ期限を確認し、必要ならフェーズをひとつ進める。
// バックグラウンドのスケジューラーからも、アクション処理の直後にも呼ばれ、
// どちらも同じロックを通るため二重の書き込みは起きない。
func (m *Manager) Tick(now time.Time) {
	m.mu.Lock()
	dels := m.tickLocked(now)
	m.mu.Unlock()
	m.send(dels)
}

func (m *Manager) tickLocked(now time.Time) []delivery {
	// 人数が足りない間、ロビーは期限切れしない
	if m.state.Phase == PhaseLobby && len(m.players) < minLobbyPlayers {
		m.nextPhaseAt = now.Add(time.Duration(m.cfg.LobbySeconds) * time.Second)
		return nil
	}

	// ナレーション表示中は期限を凍結するが、クライアントには停止中の状態を見せ続ける
	if m.narratorBusy {
		return m.syncAllLocked()
	}

	if now.Before(m.nextPhaseAt) {
		return nil
	}

	switch m.state.Phase {
	case PhaseLobby:
		return m.startGameLocked(now)
	case PhaseCharacterIntro:
		return m.endCharacterIntroLocked(now)
	case PhaseNight:
		return m.resolveNightLocked(now)
	case PhaseDay:
		return m.endDayLocked(now)
	case PhaseVoting:
		return m.resolveVotingLocked(now)
	case PhaseEnded:
		if m.pendingGameEnd {
			m.pendingGameEnd = false
			return m.endGameLocked(now)
		}
		return m.restartLocked(now)
	}
	return nil
}

// ロビー終了。役職を割り当ててキャラクター紹介フェーズへ。
func (m *Manager) startGameLocked(now time.Time) []delivery {
	m.assignRolesLocked()

	if err := m.state.StartGame(); err != nil {
		m.logger.Error("Invalid phase transition", zap.String("room", m.roomID), zap.Error(err))
		return nil
	}

	m.introInFlight = true
	m.nextPhaseAt = now.Add(time.Duration(m.cfg.IntroSeconds) * time.Second)

	refs := m.playerRefsLocked()
	names := m.playerNamesLocked()
	go m.runCharacterIntro(refs)
	go m.narrate(func() string { return m.narrator.StoryOpening(names) })

	dels := m.phaseChangeLocked()
	return append(dels, m.syncAllLocked()...)
}

// 役職の割り当て。ゲーム開始ごとに一度だけ実行される。
// 5人以下のルームではマフィアと医者を1人に固定する
// （マフィア過半数による即時終了を避けるため）。
func (m *Manager) assignRolesLocked() {
	ids := make([]string, 0, len(m.state.Players))
	for id := range m.state.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	mafiaCount := m.cfg.MafiaCount
	medicCount := m.cfg.MedicCount
	if len(ids) <= 5 {
		mafiaCount = 1
		medicCount = 1
	}
	if mafiaCount+medicCount > len(ids) {
		mafiaCount = 1
		medicCount = 0
	}

	perm := m.rng.Perm(len(ids))
	for i, idx := range perm {
		id := ids[idx]
		switch {
		case i < mafiaCount:
			m.state.Players[id].Role = RoleMafia
		case i < mafiaCount+medicCount:
			m.state.Players[id].Role = RoleMedic
		default:
			m.state.Players[id].Role = RoleInnocent
		}
		m.state.Players[id].Alive = true
	}

	m.logger.Info("Roles assigned",
		zap.String("room", m.roomID),
		zap.Int("players", len(ids)),
		zap.Int("mafia", mafiaCount),
		zap.Int("medics", medicCount),
	)
}

func (m *Manager) endCharacterIntroLocked(now time.Time) []delivery {
	if err := m.state.EndCharacterIntro(); err != nil {
		m.logger.Error("Invalid phase transition", zap.String("room", m.roomID), zap.Error(err))
		return nil
	}
	m.ledger.Reset()
	m.nextPhaseAt = now.Add(time.Duration(m.cfg.NightSeconds) * time.Second)

	go m.narrate(func() string {
		return m.narrator.PhaseTransition(string(PhaseCharacterIntro), string(PhaseNight))
	})

	dels := m.phaseChangeLocked()
	return append(dels, m.syncAllLocked()...)
}

// 夜の解決。キル投票とヒール投票の勝者を算出し、ヒールが襲撃を打ち消さなければ
// 犠牲者が出る。台帳をリセットして昼へ（決着がつけばゲーム終了へ）。
func (m *Manager) resolveNightLocked(now time.Time) []delivery {
	killTarget := m.ledger.KillWinner()
	healTarget := m.ledger.HealWinner()

	if err := m.state.EndNight(killTarget, healTarget); err != nil {
		if !errors.Is(err, ErrPlayerNotFound) {
			m.logger.Error("Night resolution failed", zap.String("room", m.roomID), zap.Error(err))
			return nil
		}
		// 勝者が既にロースターにいない。犠牲者なしで夜を終える
		m.logger.Warn("Kill target no longer in roster", zap.String("room", m.roomID), zap.String("target", killTarget))
		killTarget = ""
		if err := m.state.EndNight("", healTarget); err != nil {
			m.logger.Error("Night resolution failed", zap.String("room", m.roomID), zap.Error(err))
			return nil
		}
	}

	var dels []delivery
	if killTarget != "" && killTarget != healTarget {
		m.appendLog(models.EventMorningNews, map[string]any{"targetId": killTarget})
		dels = append(dels, m.broadcastLocked(models.Event{
			Type:    models.EventMorningNews,
			Payload: models.NewsPayload{TargetID: killTarget},
		})...)
		victim := m.displayNameLocked(killTarget)
		go m.narrate(func() string { return m.narrator.DeathNarrative(victim, "mafia") })
	} else if killTarget != "" {
		// キル対象とヒール対象が一致。誰も死なない
		saved := m.displayNameLocked(killTarget)
		go m.narrate(func() string { return m.narrator.SaveNarrative(saved) })
	}

	m.ledger.Reset()

	// 決着がついていれば終了処理へ。期限とphase.changeは
	// endGameLockedが一度だけ出す
	if m.state.Phase == PhaseEnded {
		if m.introInFlight {
			m.pendingGameEnd = true
		} else {
			return append(dels, m.endGameLocked(now)...)
		}
	}

	m.nextPhaseAt = now.Add(time.Duration(m.cfg.DaySeconds) * time.Second)
	dels = append(dels, m.phaseChangeLocked()...)
	return append(dels, m.syncAllLocked()...)
}

func (m *Manager) endDayLocked(now time.Time) []delivery {
	if err := m.state.EndDay(); err != nil {
		m.logger.Error("Invalid phase transition", zap.String("room", m.roomID), zap.Error(err))
		return nil
	}
	m.ledger.Reset()
	m.nextPhaseAt = now.Add(time.Duration(m.cfg.VoteSeconds) * time.Second)

	go m.narrate(func() string {
		return m.narrator.PhaseTransition(string(PhaseDay), string(PhaseVoting))
	})

	dels := m.phaseChangeLocked()
	return append(dels, m.syncAllLocked()...)
}

// 投票の解決。厳密な最多得票者がいればそのプレイヤーを追放する。
func (m *Manager) resolveVotingLocked(now time.Time) []delivery {
	ejected := m.ledger.KillWinner()
	votes := m.ledger.Kills()

	if err := m.state.EndVoting(ejected); err != nil {
		if !errors.Is(err, ErrPlayerNotFound) {
			m.logger.Error("Voting resolution failed", zap.String("room", m.roomID), zap.Error(err))
			return nil
		}
		// 最多得票者が既にロースターにいない。誰も追放せず続行する
		m.logger.Warn("Ejection target no longer in roster", zap.String("room", m.roomID), zap.String("target", ejected))
		ejected = ""
		if err := m.state.EndVoting(""); err != nil {
			m.logger.Error("Voting resolution failed", zap.String("room", m.roomID), zap.Error(err))
			return nil
		}
	}

	var dels []delivery
	if ejected != "" {
		m.appendLog(models.EventEveningNews, map[string]any{"targetId": ejected})
		dels = append(dels, m.broadcastLocked(models.Event{
			Type:    models.EventEveningNews,
			Payload: models.NewsPayload{TargetID: ejected},
		})...)
		name := m.displayNameLocked(ejected)
		go m.narrate(func() string { return m.narrator.VotingNarrative(name, votes) })
	}

	m.ledger.Reset()

	if m.state.Phase == PhaseEnded {
		if m.introInFlight {
			m.pendingGameEnd = true
		} else {
			return append(dels, m.endGameLocked(now)...)
		}
	}

	m.nextPhaseAt = now.Add(time.Duration(m.cfg.NightSeconds) * time.Second)
	dels = append(dels, m.phaseChangeLocked()...)
	return append(dels, m.syncAllLocked()...)
}

// ゲーム終了。全役職を開示したスナップショットを配り、猶予の後に再スタートする。
func (m *Manager) endGameLocked(now time.Time) []delivery {
	m.nextPhaseAt = now.Add(time.Duration(m.cfg.EndedSeconds) * time.Second)
	m.appendLog(models.EventPhaseChange, map[string]any{"phase": string(PhaseEnded), "winner": string(m.state.Winner)})

	var survivors []string
	for _, id := range m.state.AlivePlayers() {
		survivors = append(survivors, m.displayNameLocked(id))
	}
	winner := string(m.state.Winner)
	go m.narrate(func() string { return m.narrator.GameEnding(winner, survivors) })

	dels := m.phaseChangeLocked()
	return append(dels, m.syncAllLocked()...)
}

// 終了したゲームを破棄し、接続中のプレイヤーを引き継いで新しいロビーを作る
func (m *Manager) restartLocked(now time.Time) []delivery {
	m.state = NewGameState()
	for id := range m.players {
		m.state.AddPlayer(id)
	}
	m.ledger.Reset()
	m.introInFlight = false
	m.pendingGameEnd = false
	m.narratorBusy = false
	m.narrationSeq++
	m.nextPhaseAt = now.Add(time.Duration(m.cfg.LobbySeconds) * time.Second)

	m.logger.Info("Room restarted into a fresh lobby", zap.String("room", m.roomID), zap.Int("players", len(m.players)))

	dels := m.phaseChangeLocked()
	return append(dels, m.syncAllLocked()...)
}

// ナレーション生成はロック外で行い、結果をBeginNarrationで合流させる。
// LLM呼び出しがルームの直列化ポイントを塞ぐことはない。
func (m *Manager) narrate(generate func() string) {
	text := generate()
	m.BeginNarration(text, time.Now())
}

// ナレーション表示を開始。表示中はフェーズ期限が凍結され、
// 表示終了時に凍結していた時間の分だけ期限が後ろへずれる。
func (m *Manager) BeginNarration(text string, now time.Time) {
	m.mu.Lock()
	if len(m.players) == 0 {
		// ルームは空。状態をいじらずに破棄する
		m.mu.Unlock()
		return
	}

	if m.narratorBusy {
		// 直前のナレーションの凍結時間を先に適用してから引き継ぐ
		m.nextPhaseAt = m.nextPhaseAt.Add(now.Sub(m.narratorSince))
	}
	m.narratorBusy = true
	m.narratorSince = now
	m.narrationSeq++
	seq := m.narrationSeq

	duration := time.Duration(m.cfg.NarrationSeconds) * time.Second
	m.appendLog(models.EventNarratorMessage, map[string]any{"text": text})
	dels := m.broadcastLocked(models.Event{
		Type: models.EventNarratorMessage,
		Payload: models.NarratorMessagePayload{
			Text:      text,
			Timestamp: now,
			Duration:  m.cfg.NarrationSeconds,
		},
	})
	m.mu.Unlock()

	m.send(dels)

	time.AfterFunc(duration, func() {
		m.EndNarration(seq, time.Now())
	})
}

// ナレーション表示を終了し、凍結していた時間の分だけフェーズ期限を延長する。
// seqが一致しない場合は新しいナレーションに追い越されているので何もしない。
// ルームが空になっていた場合も状態をいじらずに破棄する。
func (m *Manager) EndNarration(seq int, now time.Time) {
	m.mu.Lock()
	if len(m.players) == 0 || !m.narratorBusy || seq != m.narrationSeq {
		m.mu.Unlock()
		return
	}
	m.narratorBusy = false
	m.nextPhaseAt = m.nextPhaseAt.Add(now.Sub(m.narratorSince))
	dels := m.syncAllLocked()
	m.mu.Unlock()

	m.send(dels)
}

// キャラクタープロフィールの生成と公開。生成はロック外で行う。
func (m *Manager) runCharacterIntro(refs []PlayerRef) {
	profiles := m.characters.GenerateProfiles(refs)
	m.narrator.SetProfiles(profiles)

	m.mu.Lock()
	var dels []delivery
	dels = append(dels, m.broadcastLocked(models.Event{Type: models.EventProfilesStart})...)
	for _, p := range profiles {
		dels = append(dels, m.broadcastLocked(models.Event{Type: models.EventProfile, Payload: p})...)
	}
	dels = append(dels, m.broadcastLocked(models.Event{Type: models.EventProfilesComplete})...)
	m.introInFlight = false
	// 公開中にゲームが決着していた場合、保留していた終了処理をここで実行する
	if m.pendingGameEnd {
		m.pendingGameEnd = false
		dels = append(dels, m.endGameLocked(time.Now())...)
	}
	m.mu.Unlock()

	m.send(dels)
}

func (m *Manager) phaseChangeLocked() []delivery {
	m.appendLog(models.EventPhaseChange, map[string]any{"phase": string(m.state.Phase)})
	return m.broadcastLocked(models.Event{
		Type:    models.EventPhaseChange,
		Payload: models.PhaseChangePayload{Phase: string(m.state.Phase), EndsAt: m.nextPhaseAt},
	})
}

// 全員に同じイベントを届ける送信予定を作る
func (m *Manager) broadcastLocked(ev models.Event) []delivery {
	dels := make([]delivery, 0, len(m.players))
	for _, p := range m.players {
		dels = append(dels, delivery{to: p.adapter, ev: ev})
	}
	return dels
}

// 指定した役職のプレイヤーにだけイベントを届ける送信予定を作る
func (m *Manager) broadcastToRoleLocked(role Role, ev models.Event) []delivery {
	var dels []delivery
	for id, p := range m.players {
		ps, ok := m.state.Players[id]
		if ok && ps.Role == role {
			dels = append(dels, delivery{to: p.adapter, ev: ev})
		}
	}
	return dels
}

// 全員に各自の視点でフィルタしたスナップショットを届ける送信予定を作る
func (m *Manager) syncAllLocked() []delivery {
	var dels []delivery
	for id, p := range m.players {
		dels = append(dels, delivery{to: p.adapter, ev: models.Event{
			Type:    models.EventGameState,
			Payload: m.projectForLocked(id),
		}})
	}
	return dels
}

func (m *Manager) appendLog(event string, details map[string]any) {
	m.eventLog = append(m.eventLog, models.GameLogEntry{
		Timestamp: time.Now(),
		Event:     event,
		Details:   details,
	})
	if len(m.eventLog) > maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-maxLogEntries:]
	}
}

func (m *Manager) displayNameLocked(playerID string) string {
	if p, ok := m.players[playerID]; ok {
		return p.name
	}
	return playerID
}

func (m *Manager) playerNamesLocked() []string {
	names := make([]string, 0, len(m.players))
	for _, ref := range m.playerRefsLocked() {
		names = append(names, ref.Name)
	}
	return names
}

func (m *Manager) playerRefsLocked() []PlayerRef {
	ids := make([]string, 0, len(m.players))
	for id := range m.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	refs := make([]PlayerRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, PlayerRef{ID: id, Name: m.players[id].name})
	}
	return refs
}

// ロック解放後にまとめて送信する。失敗はログに残すのみ（ベストエフォート）。
func (m *Manager) send(dels []delivery) {
	for _, d := range dels {
		if err := d.to.Deliver(d.ev); err != nil {
			m.logger.Error("Failed to deliver event",
				zap.String("room", m.roomID),
				zap.String("type", d.ev.Type),
				zap.Error(err),
			)
		}
	}
}

func ackTo(p *playerEntry, success bool, message string) delivery {
	return delivery{to: p.adapter, ev: models.Event{
		Type:    models.EventActionAck,
		Payload: models.ActionAckPayload{Success: success, Message: message},
	}}
}
