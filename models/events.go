package models

import (
	"time"
)

// クライアントと交わす全イベントの共通エンベロープ。
// typeフィールドで種別を判定し、payloadは種別ごとの構造体になる。
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// 受信イベントのタイプ
const (
	EventPlayerJoin          = "player.join"
	EventPlayerLeave         = "player.leave"
	EventNightAction         = "action.night"
	EventVote                = "action.vote"
	EventSendMessage         = "message.send"
	EventSyncRequest         = "game.sync_request"
	EventOpeningStoryRequest = "story.opening_request"
)

// 送信イベントのタイプ
const (
	EventPlayerJoined     = "player.joined"
	EventPlayerLeft       = "player.left"
	EventActionAck        = "action.ack"
	EventMorningNews      = "action.news"
	EventEveningNews      = "action.evening_news"
	EventVoteCast         = "action.vote_cast"
	EventPhaseChange      = "phase.change"
	EventMessageReceived  = "message.received"
	EventNarratorMessage  = "narrator.message"
	EventProfilesStart    = "character.profiles_start"
	EventProfile          = "character.profile"
	EventProfilesComplete = "character.profiles_complete"
	EventGameState        = "game.state"
)

// 夜アクションの種別
const (
	NightActionKill = "kill"
	NightActionHeal = "heal"
)

// InboundEvent はプレイヤーから受信する全イベントの閉じたユニオン。
// トランスポート層がワイヤーメッセージをこの型に変換してからゲームロジックへ渡す。
type InboundEvent interface {
	inbound()
}

type JoinPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type LeavePayload struct {
	PlayerID string `json:"playerId"`
}

type NightActionPayload struct {
	ActorID  string `json:"actorId"`
	Action   string `json:"action"` // "kill" または "heal"
	TargetID string `json:"targetId"`
}

type VotePayload struct {
	ActorID  string `json:"actorId"`
	TargetID string `json:"targetId"`
}

type MessagePayload struct {
	ActorID   string    `json:"actorId"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

type SyncRequestPayload struct{}

type OpeningStoryRequestPayload struct{}

func (JoinPayload) inbound()                {}
func (LeavePayload) inbound()               {}
func (NightActionPayload) inbound()         {}
func (VotePayload) inbound()                {}
func (MessagePayload) inbound()             {}
func (SyncRequestPayload) inbound()         {}
func (OpeningStoryRequestPayload) inbound() {}

// 送信イベントのペイロード

type PlayerJoinedPayload struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
}

type ActionAckPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// 朝・夕のニュース（夜の犠牲者、投票での追放者）
type NewsPayload struct {
	TargetID string `json:"targetId"`
}

type VoteCastPayload struct {
	ActorID  string `json:"actorId"`
	TargetID string `json:"targetId"`
}

type PhaseChangePayload struct {
	Phase  string    `json:"phase"`
	EndsAt time.Time `json:"endsAt"`
}

type NarratorMessagePayload struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Duration  int       `json:"duration"` // 表示時間（秒）
}

type CharacterProfilePayload struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	Profession  string `json:"profession"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
}

// ゲーム状態スナップショット内のプレイヤー情報。
// RoleRevealedは閲覧者に開示してよい役職のみが入る。
type PlayerSnapshot struct {
	PlayerID     string `json:"playerId"`
	Name         string `json:"name"`
	Alive        bool   `json:"alive"`
	RoleRevealed string `json:"roleRevealed,omitempty"`
}

type GameLogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	Details   map[string]any `json:"details,omitempty"`
}

type GameStatePayload struct {
	Players        []PlayerSnapshot  `json:"players"`
	Phase          string            `json:"phase"`
	PhaseEndsAt    time.Time         `json:"phaseEndsAt"`
	NarratorActive bool              `json:"narratorActive"`
	Votes          map[string]string `json:"votes,omitempty"`
	Winner         string            `json:"winner,omitempty"`
	Logs           []GameLogEntry    `json:"logs"`
}
