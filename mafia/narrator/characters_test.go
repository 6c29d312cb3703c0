package narrator

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"mafserver/mafia/game"

	"go.uber.org/zap"
)

func TestGenerateProfilesFallback(t *testing.T) {
	g := NewGenerator(&stubLLM{err: errLLMDown}, zap.NewNop())

	profiles := g.GenerateProfiles([]game.PlayerRef{{ID: "p1", Name: "Alice"}})
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles, want 1", len(profiles))
	}

	p := profiles[0]
	if p.PlayerID != "p1" || p.Name != "Alice" {
		t.Errorf("profile identity = %s/%s", p.PlayerID, p.Name)
	}
	if p.Profession == "" || p.Description == "" || p.Emoji == "" {
		t.Errorf("fallback profile incomplete: %+v", p)
	}
	if !strings.Contains(p.Description, "Alice") {
		t.Errorf("fallback description does not mention the player: %q", p.Description)
	}
}

func TestGenerateProfilesEmptyRoster(t *testing.T) {
	g := NewGenerator(&stubLLM{text: "ok"}, zap.NewNop())
	if got := g.GenerateProfiles(nil); got != nil {
		t.Errorf("GenerateProfiles(nil) = %v, want nil", got)
	}
}

func TestGenerateSingleTrimsAndTruncates(t *testing.T) {
	long := strings.Repeat("a", 300)
	g := NewGenerator(&stubLLM{text: `"` + long + `"`}, zap.NewNop())

	p := g.generateSingle("p1", "Alice", "Baker")
	if strings.Contains(p.Description, `"`) {
		t.Error("surrounding quotes were not stripped")
	}
	if len(p.Description) != 203 {
		t.Errorf("len(description) = %d, want 200 plus ellipsis", len(p.Description))
	}
	if !strings.HasSuffix(p.Description, "...") {
		t.Error("truncated description is missing the ellipsis")
	}
	if p.Emoji != "🍞" {
		t.Errorf("emoji = %q, want 🍞", p.Emoji)
	}
}

func TestSelectProfessionsUniqueWithinListSize(t *testing.T) {
	g := NewGenerator(&stubLLM{text: "ok"}, zap.NewNop())

	selected := g.selectProfessions(len(professions))
	seen := make(map[string]bool)
	for _, prof := range selected {
		if seen[prof] {
			t.Errorf("profession %q assigned twice", prof)
		}
		seen[prof] = true
	}

	// リストを超える人数では重複を許す
	if got := g.selectProfessions(len(professions) + 5); len(got) != len(professions)+5 {
		t.Errorf("len = %d, want %d", len(got), len(professions)+5)
	}
}

func TestTruncationKeepsRuneBoundaries(t *testing.T) {
	// マルチバイト文字の途中で切らないこと
	long := strings.Repeat("あ", 300)
	g := NewGenerator(&stubLLM{text: long}, zap.NewNop())

	p := g.generateSingle("p1", "Alice", "Baker")
	if !utf8.ValidString(p.Description) {
		t.Error("truncated description is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(p.Description); got != 203 {
		t.Errorf("rune count = %d, want 200 plus ellipsis", got)
	}
}

func TestGenerateProfilesConcurrently(t *testing.T) {
	// 生成器は全ルームで共有されるため、並行呼び出しに耐えること
	g := NewGenerator(&stubLLM{err: errLLMDown}, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			profiles := g.GenerateProfiles([]game.PlayerRef{{ID: "p1", Name: "Alice"}})
			if len(profiles) != 1 {
				t.Errorf("got %d profiles, want 1", len(profiles))
			}
		}()
	}
	wg.Wait()
}

func TestProfessionEmojiFallback(t *testing.T) {
	if got := professionEmoji("Astronaut"); got != "👤" {
		t.Errorf("professionEmoji(unknown) = %q, want 👤", got)
	}
}
