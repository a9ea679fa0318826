package config

import "fmt"

// DifficultyPreset represents a named maze size.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset converts a flag value to a preset.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (easy, normal, hard)", s)
	}
}

// ApplyPreset sets the grid size for a preset. The wall threshold is left
// alone: the terminal draws walls at a third of a cell, so any band narrower
// than that touches the same glyphs and only the web client sees a difference.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Grid.Rows, cfg.Grid.Cols = 8, 8
	case DifficultyNormal:
		cfg.Grid.Rows, cfg.Grid.Cols = 16, 16
	case DifficultyHard:
		cfg.Grid.Rows, cfg.Grid.Cols = 20, 32
	}
}
