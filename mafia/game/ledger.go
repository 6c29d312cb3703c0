package game

// VoteLedger は秘匿投票の記録。キルに対する投票（夜はマフィア、投票フェーズは全員）と
// ヒール投票（夜の医者のみ）をactor→targetで保持する。
// 投票者の資格チェックは呼び出し側（オーケストレーター）の責任。
type VoteLedger struct {
	kills map[string]string
	heals map[string]string
	// ヒールを最初に投じた順。複数の医者がいる場合の決定的なタイブレークに使う
	healOrder []string
}

func NewVoteLedger() *VoteLedger {
	return &VoteLedger{
		kills: make(map[string]string),
		heals: make(map[string]string),
	}
}

// キル投票を記録。同じactorの再投票は上書き（最後の投票が有効）。
func (v *VoteLedger) CastKill(actorID, targetID string) {
	v.kills[actorID] = targetID
}

// ヒール投票を記録。同じactorの再投票は対象のみ上書きし、投票順は初回のまま。
func (v *VoteLedger) CastHeal(actorID, targetID string) {
	if _, ok := v.heals[actorID]; !ok {
		v.healOrder = append(v.healOrder, actorID)
	}
	v.heals[actorID] = targetID
}

// KillWinner は得票数が他の全対象を厳密に上回る対象を返す。
// 投票なし、または最多得票が同数の場合は空文字列（誰も死なない・追放されない）。
func (v *VoteLedger) KillWinner() string {
	if len(v.kills) == 0 {
		return ""
	}

	tally := make(map[string]int)
	for _, target := range v.kills {
		tally[target]++
	}

	winner := ""
	maxCount := 0
	tied := false
	for target, count := range tally {
		switch {
		case count > maxCount:
			winner = target
			maxCount = count
			tied = false
		case count == maxCount:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return winner
}

// HealWinner はヒール対象を1人返す。医者が複数いる場合は
// 最初にヒールを投じた医者の（最新の）対象が勝つ。投票がなければ空文字列。
func (v *VoteLedger) HealWinner() string {
	if len(v.healOrder) == 0 {
		return ""
	}
	return v.heals[v.healOrder[0]]
}

// 指定の対象に向けられた投票を全て取り除く。退出したプレイヤーが
// 解決時の勝者になるのを防ぐため、Leaveから呼ばれる。
func (v *VoteLedger) PurgeTarget(targetID string) {
	for actor, target := range v.kills {
		if target == targetID {
			delete(v.kills, actor)
		}
	}

	removed := make(map[string]bool)
	for actor, target := range v.heals {
		if target == targetID {
			delete(v.heals, actor)
			removed[actor] = true
		}
	}
	if len(removed) > 0 {
		order := v.healOrder[:0]
		for _, actor := range v.healOrder {
			if !removed[actor] {
				order = append(order, actor)
			}
		}
		v.healOrder = order
	}
}

// 閲覧用にキル投票のコピーを返す
func (v *VoteLedger) Kills() map[string]string {
	out := make(map[string]string, len(v.kills))
	for k, t := range v.kills {
		out[k] = t
	}
	return out
}

// 閲覧用にヒール投票のコピーを返す
func (v *VoteLedger) Heals() map[string]string {
	out := make(map[string]string, len(v.heals))
	for k, t := range v.heals {
		out[k] = t
	}
	return out
}

// 新しいフェーズの開始時に全投票をクリアする
func (v *VoteLedger) Reset() {
	v.kills = make(map[string]string)
	v.heals = make(map[string]string)
	v.healOrder = nil
}
