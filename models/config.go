package models

// Config 構造体はルームごとのゲーム設定を保持します。
// config.jsonから読み込み、ゼロ値のフィールドにはデフォルト値を適用します。
type Config struct {
	MafiaCount       int `json:"mafia_count"`       // マフィアの人数
	MedicCount       int `json:"medic_count"`       // 医者の人数
	NightSeconds     int `json:"night_seconds"`     // 夜フェーズの長さ（秒）
	DaySeconds       int `json:"day_seconds"`       // 昼フェーズの長さ（秒）
	VoteSeconds      int `json:"vote_seconds"`      // 投票フェーズの長さ（秒）
	LobbySeconds     int `json:"lobby_seconds"`     // ロビーの長さ（秒）
	IntroSeconds     int `json:"intro_seconds"`     // キャラクター紹介フェーズの長さ（秒）
	EndedSeconds     int `json:"ended_seconds"`     // ゲーム終了後、再スタートまでの猶予（秒）
	NarrationSeconds int `json:"narration_seconds"` // ナレーション表示時間（秒）
}

// ゼロ値のフィールドにデフォルト値を設定
func (c *Config) ApplyDefaults() {
	if c.MafiaCount == 0 {
		c.MafiaCount = 1
	}
	if c.MedicCount == 0 {
		c.MedicCount = 1
	}
	if c.NightSeconds == 0 {
		c.NightSeconds = 30
	}
	if c.DaySeconds == 0 {
		c.DaySeconds = 60
	}
	if c.VoteSeconds == 0 {
		c.VoteSeconds = 30
	}
	if c.LobbySeconds == 0 {
		c.LobbySeconds = 60
	}
	if c.IntroSeconds == 0 {
		c.IntroSeconds = 20
	}
	if c.EndedSeconds == 0 {
		c.EndedSeconds = 15
	}
	if c.NarrationSeconds == 0 {
		c.NarrationSeconds = 8
	}
}
