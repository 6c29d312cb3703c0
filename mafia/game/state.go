package game

import (
	"errors"
	"fmt"
)

// ゲームのフェーズ
type Phase string

const (
	PhaseLobby          Phase = "lobby"
	PhaseCharacterIntro Phase = "character_intro"
	PhaseNight          Phase = "night"
	PhaseDay            Phase = "day"
	PhaseVoting         Phase = "voting"
	PhaseEnded          Phase = "ended"
)

// プレイヤーの役職
type Role string

const (
	RoleInnocent Role = "innocent"
	RoleMafia    Role = "mafia"
	RoleMedic    Role = "medic"
)

// 勝者
type Winner string

const (
	WinnerNone      Winner = ""
	WinnerInnocents Winner = "innocents"
	WinnerMafia     Winner = "mafia"
	WinnerDraw      Winner = "draw"
)

// フェーズ遷移操作が間違ったフェーズから呼ばれた場合のエラー。
// 呼び出し側のバグを示すものであり、ユーザー向けエラーではない。
var ErrInvalidPhase = errors.New("invalid phase for this transition")

// 対象プレイヤーがロースターに存在しない場合のエラー。同じく呼び出し側のバグ。
var ErrPlayerNotFound = errors.New("player not found")

// プレイヤー1人分のゲーム内状態
type PlayerState struct {
	Role  Role
	Alive bool
}

// GameState はフェーズ・ロースター・勝者を持つ状態機械。
// ネットワークやタイマーのことは一切知らない。遷移は下記のガード付き操作のみ。
type GameState struct {
	Phase   Phase
	Players map[string]*PlayerState
	Winner  Winner
}

func NewGameState() *GameState {
	return &GameState{
		Phase:   PhaseLobby,
		Players: make(map[string]*PlayerState),
	}
}

// デフォルト状態（innocent・生存）でプレイヤーを追加
func (g *GameState) AddPlayer(playerID string) {
	g.Players[playerID] = &PlayerState{Role: RoleInnocent, Alive: true}
}

func (g *GameState) RemovePlayer(playerID string) {
	delete(g.Players, playerID)
}

// ロビーからキャラクター紹介フェーズへ。役職割り当て後に呼ぶ。
func (g *GameState) StartGame() error {
	if g.Phase != PhaseLobby {
		return fmt.Errorf("start game: %w (phase=%s)", ErrInvalidPhase, g.Phase)
	}
	g.Phase = PhaseCharacterIntro
	return nil
}

// キャラクター紹介から最初の夜へ
func (g *GameState) EndCharacterIntro() error {
	if g.Phase != PhaseCharacterIntro {
		return fmt.Errorf("end character intro: %w (phase=%s)", ErrInvalidPhase, g.Phase)
	}
	g.Phase = PhaseNight
	return nil
}

// 昼は時間切れで終わり、投票フェーズへ移る。昼の間に決着はつかない。
func (g *GameState) EndDay() error {
	if g.Phase != PhaseDay {
		return fmt.Errorf("end day: %w (phase=%s)", ErrInvalidPhase, g.Phase)
	}
	g.Phase = PhaseVoting
	return nil
}

// 投票フェーズを終了。ejectedIDが空でなければそのプレイヤーを追放し、
// 勝敗判定の上、決着なら ended、続行なら night へ。
func (g *GameState) EndVoting(ejectedID string) error {
	if g.Phase != PhaseVoting {
		return fmt.Errorf("end voting: %w (phase=%s)", ErrInvalidPhase, g.Phase)
	}

	if ejectedID != "" {
		p, ok := g.Players[ejectedID]
		if !ok {
			return fmt.Errorf("end voting: %w (target=%s)", ErrPlayerNotFound, ejectedID)
		}
		p.Alive = false
	}

	if over, _ := g.CheckGameOver(); over {
		g.Phase = PhaseEnded
	} else {
		g.Phase = PhaseNight
	}
	return nil
}

// 夜フェーズを終了。killedIDが空でなくhealedIDと異なる場合のみ死亡が成立する
// （医者のヒールが襲撃対象と一致した場合は誰も死なない）。
// 勝敗判定の上、決着なら ended、続行なら day へ。
func (g *GameState) EndNight(killedID, healedID string) error {
	if g.Phase != PhaseNight {
		return fmt.Errorf("end night: %w (phase=%s)", ErrInvalidPhase, g.Phase)
	}

	if killedID != "" && killedID != healedID {
		p, ok := g.Players[killedID]
		if !ok {
			return fmt.Errorf("end night: %w (target=%s)", ErrPlayerNotFound, killedID)
		}
		p.Alive = false
	}

	if over, _ := g.CheckGameOver(); over {
		g.Phase = PhaseEnded
	} else {
		g.Phase = PhaseDay
	}
	return nil
}

// 勝敗判定。生存マフィアと生存市民（innocent+medic）を数える。
// マフィア0かつ市民0なら引き分け、マフィア0なら市民勝利、
// マフィアが市民と同数以上なら（同数でも）マフィア勝利。判定と同時にWinnerを設定する。
func (g *GameState) CheckGameOver() (bool, Winner) {
	mafia := 0
	innocents := 0
	for _, p := range g.Players {
		if !p.Alive {
			continue
		}
		if p.Role == RoleMafia {
			mafia++
		} else {
			innocents++
		}
	}

	if mafia == 0 {
		if innocents == 0 {
			g.Winner = WinnerDraw
		} else {
			g.Winner = WinnerInnocents
		}
		return true, g.Winner
	}
	if mafia >= innocents {
		g.Winner = WinnerMafia
		return true, g.Winner
	}
	g.Winner = WinnerNone
	return false, WinnerNone
}

// 生存プレイヤーのID一覧
func (g *GameState) AlivePlayers() []string {
	var alive []string
	for id, p := range g.Players {
		if p.Alive {
			alive = append(alive, id)
		}
	}
	return alive
}
