package narrator

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"mafserver/models"

	"go.uber.org/zap"
)

// ナレーション生成に使うゲームの文脈。直近のイベントだけを保持する
const maxContextEvents = 20

type contextEvent struct {
	kind      string
	details   map[string]any
	timestamp time.Time
}

type gameContext struct {
	atmosphere string
	dayCount   int
	events     []contextEvent
	profiles   map[string]models.CharacterProfilePayload // 表示名→プロフィール
}

// Service はLLMでゲームのナレーションを生成する。
// LLM呼び出しが失敗した場合は必ず決定的なフォールバック文を返すため、
// ゲーム進行を止めたり壊したりすることはない。
type Service struct {
	mu     sync.Mutex
	client LLMClient
	logger *zap.Logger
	ctx    gameContext
}

func NewService(client LLMClient, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
		ctx: gameContext{
			atmosphere: "peaceful",
			profiles:   make(map[string]models.CharacterProfilePayload),
		},
	}
}

// キャラクタープロフィールをナレーションの文脈として登録する
func (s *Service) SetProfiles(profiles []models.CharacterProfilePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range profiles {
		s.ctx.profiles[p.Name] = p
	}
	s.logger.Info("Character profiles set for narrative context", zap.Int("count", len(profiles)))
}

// ゲーム開始時のオープニングを生成する
func (s *Service) StoryOpening(names []string) string {
	var characters []string
	s.mu.Lock()
	for _, name := range names {
		if p, ok := s.ctx.profiles[name]; ok {
			characters = append(characters, fmt.Sprintf("- %s %s (%s): %s", p.Emoji, name, p.Profession, p.Description))
		} else {
			characters = append(characters, fmt.Sprintf("- %s (resident)", name))
		}
	}
	s.mu.Unlock()

	prompt := fmt.Sprintf(`Write a dramatic opening for a mafia game set in a small town.

Town Residents:
%s

Requirements:
- 4-5 sentences maximum
- Create rich atmosphere of mystery and tension
- Reference specific residents and their roles in the community
- Mention the approaching night and growing unease
- Don't reveal anyone's game role (mafia/innocent)
- Use vivid, atmospheric language

Style: Dark, atmospheric, cinematic, literary.`, strings.Join(characters, "\n"))

	text, err := s.client.GenerateText(prompt, 250, 0.8)
	if err != nil {
		s.logger.Warn("Failed to generate opening story", zap.Error(err))
		text = fmt.Sprintf("Night falls over the quiet town. %d residents lock their doors, knowing that danger lurks in the shadows. The mafia will strike tonight, but who can be trusted?", len(names))
	}

	s.record("game_start", map[string]any{"player_count": len(names)}, "mysterious")
	return strings.TrimSpace(text)
}

// プレイヤー死亡のナレーションを生成する。causeは"mafia"（夜の襲撃）か"vote"（追放）。
func (s *Service) DeathNarrative(victim, cause string) string {
	deathType := "executed by town vote"
	styleHint := "dramatic and emotional, focus on the community's decision"
	if cause == "mafia" {
		deathType = "killed by the mafia during the night"
		styleHint = "mysterious and dark, focus on the discovery of the body"
	}

	prompt := fmt.Sprintf(`Write a dramatic narrative about a character's death in a mafia game.

Victim: %s
Death type: %s
Game atmosphere: %s

Requirements:
- 3-4 sentences maximum
- %s
- Show how their death affects the town
- Don't reveal any game roles

Style: Cinematic, dramatic, immersive, literary.`, s.characterInfo(victim), deathType, s.atmosphere(), styleHint)

	text, err := s.client.GenerateText(prompt, 200, 0.7)
	if err != nil {
		s.logger.Warn("Failed to generate death narrative", zap.Error(err))
		if cause == "mafia" {
			text = fmt.Sprintf("As dawn broke over the town square, %s was discovered motionless, their secrets forever silenced by the shadows that prowl these streets. The town mourns another soul claimed by the darkness.", victim)
		} else {
			text = fmt.Sprintf("With heavy hearts and trembling hands, the townspeople have spoken. %s walks toward an uncertain fate, their footsteps echoing through streets that may never see them again.", victim)
		}
	}

	s.record("player_death", map[string]any{"victim": victim, "cause": cause}, "dark")
	return strings.TrimSpace(text)
}

// 医者に救われた夜のナレーションを生成する。医者の正体は明かさない。
func (s *Service) SaveNarrative(target string) string {
	prompt := fmt.Sprintf(`Write a dramatic narrative about someone being saved by a medic in a mafia game.

Saved player: %s
Game atmosphere: %s

Requirements:
- 2-3 sentences maximum
- Show that danger was averted without revealing the medic
- Suggest they were protected by "unseen forces" or a "guardian angel"
- Don't reveal any game roles

Style: Mysterious, hopeful, atmospheric.`, s.characterInfo(target), s.atmosphere())

	text, err := s.client.GenerateText(prompt, 150, 0.7)
	if err != nil {
		s.logger.Warn("Failed to generate save narrative", zap.Error(err))
		text = fmt.Sprintf("The night passed quietly. %s was protected by unseen forces.", target)
	}

	s.record("player_saved", map[string]any{"saved_player": target}, "")
	return strings.TrimSpace(text)
}

// 投票による追放のナレーションを生成する
func (s *Service) VotingNarrative(target string, votes map[string]string) string {
	prompt := fmt.Sprintf(`Write a dramatic narrative about a town voting to exile someone in a mafia game.

Voted player: %s
Total votes: %d
Game atmosphere: %s

Requirements:
- 3-4 sentences maximum
- Show the tension and emotion of the decision
- Include the community's conflicted reaction
- Create dramatic tension about whether it's the right choice

Style: Tense, emotional, community-focused, literary.`, s.characterInfo(target), len(votes), s.atmosphere())

	text, err := s.client.GenerateText(prompt, 200, 0.7)
	if err != nil {
		s.logger.Warn("Failed to generate voting narrative", zap.Error(err))
		text = fmt.Sprintf("After intense deliberation, the town has decided. %s must leave. Was this the right choice?", target)
	}

	s.record("voting_execution", map[string]any{"voted_player": target}, "tense")
	return strings.TrimSpace(text)
}

// フェーズ遷移の短いナレーションを生成する
func (s *Service) PhaseTransition(from, to string) string {
	prompt := fmt.Sprintf(`Write a brief atmospheric transition for a mafia game.

Transition: %s -> %s
Current atmosphere: %s
Day count: %d

Requirements:
- 1-2 sentences maximum
- Create appropriate mood for the phase
- Build tension and atmosphere

Style: Atmospheric, cinematic, brief`, from, to, s.atmosphere(), s.dayCount())

	text, err := s.client.GenerateText(prompt, 80, 0.6)
	if err != nil {
		s.logger.Warn("Failed to generate phase transition", zap.Error(err))
		fallbacks := map[string]string{
			"night_to_day":    "As the first pale light of dawn creeps over the town, the shadows retreat reluctantly, leaving behind whispers of secrets that linger in the crisp morning air.",
			"day_to_voting":   "The sun reaches its zenith as heated discussions fill the town square. The time for words has passed - now comes the moment of terrible decision.",
			"voting_to_night": "As twilight descends like a heavy curtain, the town holds its breath. Another night of uncertainty awaits, and not everyone may see the dawn.",
		}
		text, ok := fallbacks[from+"_to_"+to]
		if !ok {
			text = fmt.Sprintf("The %s phase begins...", to)
		}
		s.advanceDay(to)
		return text
	}

	s.advanceDay(to)
	s.record("phase_transition", map[string]any{"from": from, "to": to}, "")
	return strings.TrimSpace(text)
}

// ゲーム終了のナレーションを生成する
func (s *Service) GameEnding(winner string, survivors []string) string {
	survivorsText := "no one"
	if len(survivors) > 0 {
		survivorsText = strings.Join(survivors, ", ")
	}

	var victoryType, mood string
	switch winner {
	case "mafia":
		victoryType = "The mafia has taken control of the town"
		mood = "dark and ominous"
	case "innocents":
		victoryType = "The innocent townspeople have prevailed"
		mood = "hopeful but scarred"
	default:
		victoryType = "The conflict ends in a stalemate"
		mood = "ambiguous and haunting"
	}

	prompt := fmt.Sprintf(`Write an epic ending for a mafia game.

Victory: %s
Survivors: %s
Total days survived: %d

Requirements:
- 3-4 sentences maximum
- %s tone
- Reference the survivors and their journey
- Include a moral or reflection about trust/betrayal

Style: Epic, conclusive, emotionally resonant`, victoryType, survivorsText, s.dayCount(), mood)

	text, err := s.client.GenerateText(prompt, 150, 0.7)
	if err != nil {
		s.logger.Warn("Failed to generate game ending", zap.Error(err))
		switch winner {
		case "mafia":
			text = fmt.Sprintf("The mafia has won. %s remain to tell the tale of this dark chapter.", survivorsText)
		case "innocents":
			text = fmt.Sprintf("Justice prevails! The innocent townspeople have survived. %s can finally rest easy.", survivorsText)
		default:
			text = fmt.Sprintf("The conflict ends with no clear victor. %s must live with the consequences.", survivorsText)
		}
	}

	s.record("game_end", map[string]any{"winner": winner, "survivors": survivors}, "")
	return strings.TrimSpace(text)
}

func (s *Service) characterInfo(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.ctx.profiles[name]; ok {
		return fmt.Sprintf("%s (%s): %s", name, p.Profession, p.Description)
	}
	return fmt.Sprintf("%s (town resident)", name)
}

func (s *Service) atmosphere() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.atmosphere
}

func (s *Service) dayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx.dayCount
}

func (s *Service) advanceDay(toPhase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if toPhase == "day" {
		s.ctx.dayCount++
	}
}

// イベントを文脈に記録し、必要なら雰囲気を更新する
func (s *Service) record(kind string, details map[string]any, atmosphere string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.events = append(s.ctx.events, contextEvent{kind: kind, details: details, timestamp: time.Now()})
	if len(s.ctx.events) > maxContextEvents {
		s.ctx.events = s.ctx.events[len(s.ctx.events)-maxContextEvents:]
	}
	if atmosphere != "" {
		s.ctx.atmosphere = atmosphere
	}
}
