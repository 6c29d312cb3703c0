package narrator

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"mafserver/models"

	"go.uber.org/zap"
)

// 固定のテキストかエラーを返すだけのLLMクライアント
type stubLLM struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

func (s *stubLLM) GenerateText(prompt string, maxTokens int, temperature float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

var errLLMDown = errors.New("llm unavailable")

func TestStoryOpeningFallback(t *testing.T) {
	s := NewService(&stubLLM{err: errLLMDown}, zap.NewNop())

	got := s.StoryOpening([]string{"Alice", "Bob", "Carol"})
	want := "Night falls over the quiet town. 3 residents lock their doors, knowing that danger lurks in the shadows. The mafia will strike tonight, but who can be trusted?"
	if got != want {
		t.Errorf("StoryOpening() fallback = %q, want %q", got, want)
	}
}

func TestDeathNarrativeFallbacks(t *testing.T) {
	s := NewService(&stubLLM{err: errLLMDown}, zap.NewNop())

	night := s.DeathNarrative("Alice", "mafia")
	if !strings.Contains(night, "Alice was discovered motionless") {
		t.Errorf("mafia death fallback = %q", night)
	}

	vote := s.DeathNarrative("Bob", "vote")
	if !strings.Contains(vote, "Bob walks toward an uncertain fate") {
		t.Errorf("vote death fallback = %q", vote)
	}
}

func TestSaveNarrativeFallback(t *testing.T) {
	s := NewService(&stubLLM{err: errLLMDown}, zap.NewNop())

	got := s.SaveNarrative("Alice")
	want := "The night passed quietly. Alice was protected by unseen forces."
	if got != want {
		t.Errorf("SaveNarrative() fallback = %q, want %q", got, want)
	}
}

func TestVotingNarrativeFallback(t *testing.T) {
	s := NewService(&stubLLM{err: errLLMDown}, zap.NewNop())

	got := s.VotingNarrative("Bob", map[string]string{"a": "Bob", "b": "Bob"})
	want := "After intense deliberation, the town has decided. Bob must leave. Was this the right choice?"
	if got != want {
		t.Errorf("VotingNarrative() fallback = %q, want %q", got, want)
	}
}

func TestPhaseTransitionFallbacks(t *testing.T) {
	s := NewService(&stubLLM{err: errLLMDown}, zap.NewNop())

	known := s.PhaseTransition("day", "voting")
	if !strings.Contains(known, "The time for words has passed") {
		t.Errorf("day->voting fallback = %q", known)
	}

	unknown := s.PhaseTransition("lobby", "character_intro")
	if unknown != "The character_intro phase begins..." {
		t.Errorf("generic fallback = %q", unknown)
	}
}

func TestGameEndingFallbacks(t *testing.T) {
	s := NewService(&stubLLM{err: errLLMDown}, zap.NewNop())

	tests := []struct {
		winner    string
		survivors []string
		want      string
	}{
		{"mafia", []string{"Alice"}, "The mafia has won. Alice remain to tell the tale of this dark chapter."},
		{"innocents", []string{"Alice", "Bob"}, "Justice prevails! The innocent townspeople have survived. Alice, Bob can finally rest easy."},
		{"draw", nil, "The conflict ends with no clear victor. no one must live with the consequences."},
	}
	for _, tt := range tests {
		if got := s.GameEnding(tt.winner, tt.survivors); got != tt.want {
			t.Errorf("GameEnding(%s) = %q, want %q", tt.winner, got, tt.want)
		}
	}
}

func TestGeneratedTextIsTrimmed(t *testing.T) {
	s := NewService(&stubLLM{text: "  A hush falls over the town.\n"}, zap.NewNop())

	if got := s.SaveNarrative("Alice"); got != "A hush falls over the town." {
		t.Errorf("SaveNarrative() = %q, want trimmed text", got)
	}
}

func TestProfilesEnrichPrompts(t *testing.T) {
	client := &stubLLM{text: "ok"}
	s := NewService(client, zap.NewNop())
	s.SetProfiles([]models.CharacterProfilePayload{
		{PlayerID: "p1", Name: "Alice", Profession: "Baker", Description: "Bakes bread.", Emoji: "🍞"},
	})

	s.DeathNarrative("Alice", "mafia")

	last := client.prompts[len(client.prompts)-1]
	if !strings.Contains(last, "Alice (Baker): Bakes bread.") {
		t.Errorf("prompt missing profile info:\n%s", last)
	}

	// プロフィール未登録のプレイヤーは住民として扱う
	s.DeathNarrative("Bob", "mafia")
	last = client.prompts[len(client.prompts)-1]
	if !strings.Contains(last, "Bob (town resident)") {
		t.Errorf("prompt missing resident fallback:\n%s", last)
	}
}

func TestAtmosphereFollowsEvents(t *testing.T) {
	client := &stubLLM{text: "ok"}
	s := NewService(client, zap.NewNop())

	if got := s.atmosphere(); got != "peaceful" {
		t.Fatalf("initial atmosphere = %q, want peaceful", got)
	}
	s.StoryOpening([]string{"Alice"})
	if got := s.atmosphere(); got != "mysterious" {
		t.Errorf("atmosphere after opening = %q, want mysterious", got)
	}
	s.DeathNarrative("Alice", "mafia")
	if got := s.atmosphere(); got != "dark" {
		t.Errorf("atmosphere after death = %q, want dark", got)
	}
}

func TestDayCountAdvancesOnDayTransitions(t *testing.T) {
	s := NewService(&stubLLM{text: "ok"}, zap.NewNop())

	s.PhaseTransition("night", "day")
	s.PhaseTransition("day", "voting")
	s.PhaseTransition("voting", "night")
	s.PhaseTransition("night", "day")

	if got := s.dayCount(); got != 2 {
		t.Errorf("dayCount = %d, want 2", got)
	}
}
