package narrator

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"mafserver/mafia/game"
	"mafserver/models"

	"go.uber.org/zap"
)

// Generator はプレイヤーごとのキャラクタープロフィールを生成する。
// 1ゲームにつきキャラクター紹介フェーズで一度だけ使われる。
// 全ルームで共有され並行に呼ばれるため、rngはmuで守る。
type Generator struct {
	client LLMClient
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var professions = []string{
	"Baker", "Librarian", "Mechanic", "Teacher",
	"Doctor", "Shop Owner", "Postman", "Firefighter",
	"Hairdresser", "Bartender", "Accountant", "Gardener",
	"Police Officer", "Nurse", "Chef", "Taxi Driver",
}

var professionEmojis = map[string]string{
	"Baker":          "🍞",
	"Librarian":      "📚",
	"Mechanic":       "🔧",
	"Teacher":        "📝",
	"Doctor":         "⚕️",
	"Shop Owner":     "🏪",
	"Postman":        "📮",
	"Firefighter":    "🚒",
	"Hairdresser":    "💇",
	"Bartender":      "🍺",
	"Accountant":     "📊",
	"Gardener":       "🌱",
	"Police Officer": "👮",
	"Nurse":          "👩‍⚕️",
	"Chef":           "👨‍🍳",
	"Taxi Driver":    "🚕",
}

func NewGenerator(client LLMClient, logger *zap.Logger) *Generator {
	return &Generator{
		client: client,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// 全プレイヤーのプロフィールを生成する。LLMが失敗したプレイヤーには
// 職業ごとの定型文でフォールバックする。
func (g *Generator) GenerateProfiles(players []game.PlayerRef) []models.CharacterProfilePayload {
	if len(players) == 0 {
		return nil
	}

	assigned := g.selectProfessions(len(players))
	profiles := make([]models.CharacterProfilePayload, 0, len(players))
	for i, p := range players {
		g.logger.Info("Generating character profile",
			zap.Int("index", i+1),
			zap.Int("total", len(players)),
			zap.String("name", p.Name),
			zap.String("profession", assigned[i]),
		)
		profiles = append(profiles, g.generateSingle(p.ID, p.Name, assigned[i]))

		// レート制限を避けるため呼び出しの間を空ける
		if i < len(players)-1 {
			time.Sleep(500 * time.Millisecond)
		}
	}
	return profiles
}

func (g *Generator) generateSingle(playerID, name, profession string) models.CharacterProfilePayload {
	prompt := fmt.Sprintf(`Create a character profile for a mafia game set in a small town.

Character Details:
- Name: %s
- Profession: %s

Generate a short character description (maximum 2 sentences) that includes:
1. What they do in their profession
2. One interesting personality trait or habit
3. How they might be connected to the town

Style: Realistic, intriguing but not suspicious. Make them feel like a real person.
Format: Return only the description, no extra text.`, name, profession)

	text, err := g.client.GenerateText(prompt, 100, 0.8)
	if err != nil {
		g.logger.Warn("LLM failed for profile, using fallback", zap.String("name", name), zap.Error(err))
		return g.fallbackProfile(playerID, name, profession)
	}

	description := strings.TrimSpace(text)
	description = strings.Trim(description, `"`)
	// マルチバイト文字を壊さないようルーン単位で切り詰める
	if runes := []rune(description); len(runes) > 200 {
		description = string(runes[:200]) + "..."
	}

	return models.CharacterProfilePayload{
		PlayerID:    playerID,
		Name:        name,
		Profession:  profession,
		Description: description,
		Emoji:       professionEmoji(profession),
	}
}

// 重複しない職業を人数分選ぶ。人数が職業リストを超える場合は重複を許す
func (g *Generator) selectProfessions(count int) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if count <= len(professions) {
		perm := g.rng.Perm(len(professions))
		selected := make([]string, count)
		for i := 0; i < count; i++ {
			selected[i] = professions[perm[i]]
		}
		return selected
	}
	selected := make([]string, count)
	for i := 0; i < count; i++ {
		selected[i] = professions[g.rng.Intn(len(professions))]
	}
	return selected
}

func (g *Generator) fallbackProfile(playerID, name, profession string) models.CharacterProfilePayload {
	fallbacks := map[string]string{
		"Baker":      "%s runs the local bakery and is known for fresh bread every morning.",
		"Librarian":  "%s manages the town library and knows everyone's reading preferences.",
		"Mechanic":   "%s fixes cars and machinery at the local garage.",
		"Teacher":    "%s teaches at the local school and cares deeply about the students.",
		"Doctor":     "%s provides medical care to the townspeople at the clinic.",
		"Shop Owner": "%s runs a general store that serves the whole community.",
	}

	format, ok := fallbacks[profession]
	description := ""
	if ok {
		description = fmt.Sprintf(format, name)
	} else {
		description = fmt.Sprintf("%s works as a %s in the town.", name, strings.ToLower(profession))
	}

	return models.CharacterProfilePayload{
		PlayerID:    playerID,
		Name:        name,
		Profession:  profession,
		Description: description,
		Emoji:       professionEmoji(profession),
	}
}

func professionEmoji(profession string) string {
	if emoji, ok := professionEmojis[profession]; ok {
		return emoji
	}
	return "👤"
}
