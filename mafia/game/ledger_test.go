package game

import "testing"

func TestKillWinnerStrictPlurality(t *testing.T) {
	tests := []struct {
		name  string
		votes map[string]string
		want  string
	}{
		{"no votes", map[string]string{}, ""},
		{"single vote", map[string]string{"a": "x"}, "x"},
		{"clear majority", map[string]string{"a": "x", "b": "x", "c": "y"}, "x"},
		{"two way tie", map[string]string{"a": "x", "b": "y"}, ""},
		{"three way tie", map[string]string{"a": "x", "b": "y", "c": "z"}, ""},
		{"unanimous", map[string]string{"a": "x", "b": "x", "c": "x"}, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVoteLedger()
			for actor, target := range tt.votes {
				v.CastKill(actor, target)
			}
			if got := v.KillWinner(); got != tt.want {
				t.Errorf("KillWinner() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCastKillOverwritesPreviousVote(t *testing.T) {
	v := NewVoteLedger()
	v.CastKill("a", "x")
	v.CastKill("b", "y")
	// aの再投票で最後の投票だけが有効になる
	v.CastKill("a", "y")

	if got := v.KillWinner(); got != "y" {
		t.Errorf("KillWinner() = %q, want %q", got, "y")
	}
	if kills := v.Kills(); len(kills) != 2 {
		t.Errorf("len(Kills()) = %d, want 2", len(kills))
	}
}

func TestHealWinnerFirstMedicWins(t *testing.T) {
	v := NewVoteLedger()
	v.CastHeal("medic1", "x")
	v.CastHeal("medic2", "y")

	if got := v.HealWinner(); got != "x" {
		t.Errorf("HealWinner() = %q, want first medic's target %q", got, "x")
	}

	// 先着の医者が対象を変えても優先順位は保たれる
	v.CastHeal("medic1", "z")
	if got := v.HealWinner(); got != "z" {
		t.Errorf("HealWinner() after retarget = %q, want %q", got, "z")
	}
}

func TestHealWinnerEmpty(t *testing.T) {
	v := NewVoteLedger()
	if got := v.HealWinner(); got != "" {
		t.Errorf("HealWinner() = %q, want empty", got)
	}
}

func TestLedgerReset(t *testing.T) {
	v := NewVoteLedger()
	v.CastKill("a", "x")
	v.CastHeal("medic1", "x")
	v.Reset()

	if got := v.KillWinner(); got != "" {
		t.Errorf("KillWinner() after reset = %q, want empty", got)
	}
	if got := v.HealWinner(); got != "" {
		t.Errorf("HealWinner() after reset = %q, want empty", got)
	}

	// リセット後は投票順もクリアされている
	v.CastHeal("medic2", "y")
	if got := v.HealWinner(); got != "y" {
		t.Errorf("HealWinner() = %q, want %q", got, "y")
	}
}

func TestPurgeTargetRemovesVotesForLeaver(t *testing.T) {
	v := NewVoteLedger()
	v.CastKill("a", "x")
	v.CastKill("b", "y")
	v.CastHeal("medic1", "x")
	v.CastHeal("medic2", "y")

	v.PurgeTarget("x")

	kills := v.Kills()
	if _, ok := kills["a"]; ok {
		t.Error("kill vote targeting the purged player survived")
	}
	if kills["b"] != "y" {
		t.Errorf("unrelated kill vote lost: %v", kills)
	}

	// medic1のヒールが消えたので、優先順位はmedic2に繰り上がる
	if got := v.HealWinner(); got != "y" {
		t.Errorf("HealWinner() after purge = %q, want %q", got, "y")
	}
}

func TestKillsHealsReturnCopies(t *testing.T) {
	v := NewVoteLedger()
	v.CastKill("a", "x")

	kills := v.Kills()
	kills["a"] = "tampered"

	if got := v.Kills()["a"]; got != "x" {
		t.Errorf("internal kills mutated through copy: %q", got)
	}
}
