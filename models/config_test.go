package models

import "testing"

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	var c Config
	c.ApplyDefaults()

	want := Config{
		MafiaCount:       1,
		MedicCount:       1,
		NightSeconds:     30,
		DaySeconds:       60,
		VoteSeconds:      30,
		LobbySeconds:     60,
		IntroSeconds:     20,
		EndedSeconds:     15,
		NarrationSeconds: 8,
	}
	if c != want {
		t.Errorf("ApplyDefaults() = %+v, want %+v", c, want)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	c := Config{MafiaCount: 2, NightSeconds: 45}
	c.ApplyDefaults()

	if c.MafiaCount != 2 || c.NightSeconds != 45 {
		t.Errorf("explicit values were overwritten: %+v", c)
	}
	if c.MedicCount != 1 || c.DaySeconds != 60 {
		t.Errorf("zero fields were not defaulted: %+v", c)
	}
}
