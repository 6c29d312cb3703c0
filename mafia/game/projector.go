package game

import (
	"sort"

	"mafserver/models"
)

// projectForLocked は閲覧者の役職に応じて秘匿情報をフィルタしたスナップショットを作る。
// ゲーム進行中、他プレイヤーの真の役職は閲覧者と同じ役職の場合のみ開示し、
// それ以外は常に"innocent"を見せる（情報漏れなし）。ゲーム終了後は全役職を開示する。
func (m *Manager) projectForLocked(viewerID string) models.GameStatePayload {
	viewerRole := RoleInnocent
	if ps, ok := m.state.Players[viewerID]; ok {
		viewerRole = ps.Role
	}
	ended := m.state.Phase == PhaseEnded

	ids := make([]string, 0, len(m.state.Players))
	for id := range m.state.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	players := make([]models.PlayerSnapshot, 0, len(ids))
	for _, id := range ids {
		ps := m.state.Players[id]
		revealed := string(RoleInnocent)
		if ended || ps.Role == viewerRole {
			revealed = string(ps.Role)
		}
		players = append(players, models.PlayerSnapshot{
			PlayerID:     id,
			Name:         m.displayNameLocked(id),
			Alive:        ps.Alive,
			RoleRevealed: revealed,
		})
	}

	// 投票の可視性: マフィアはキル投票を常に見える。医者は夜の間ヒール投票、
	// それ以外はキル投票。その他のプレイヤーは夜以外に限ってキル投票が見える
	// （夜の襲撃対象は朝まで秘匿される）。
	var votes map[string]string
	switch {
	case viewerRole == RoleMafia:
		votes = m.ledger.Kills()
	case viewerRole == RoleMedic && m.state.Phase == PhaseNight:
		votes = m.ledger.Heals()
	case viewerRole == RoleMedic:
		votes = m.ledger.Kills()
	case m.state.Phase != PhaseNight:
		votes = m.ledger.Kills()
	}

	logs := make([]models.GameLogEntry, len(m.eventLog))
	copy(logs, m.eventLog)

	return models.GameStatePayload{
		Players:        players,
		Phase:          string(m.state.Phase),
		PhaseEndsAt:    m.nextPhaseAt,
		NarratorActive: m.narratorBusy,
		Votes:          votes,
		Winner:         string(m.state.Winner),
		Logs:           logs,
	}
}
