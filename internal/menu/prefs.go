package menu

import "fmt"

type Difficulty uint8

const (
	DifficultyLow Difficulty = iota
	DifficultyMedium
	DifficultyHigh
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyMedium:
		return "Medium"
	case DifficultyHigh:
		return "High"
	default:
		return "Low"
	}
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch s {
	case "Low":
		return DifficultyLow, nil
	case "Medium":
		return DifficultyMedium, nil
	case "High":
		return DifficultyHigh, nil
	default:
		return DifficultyLow, fmt.Errorf("unknown difficulty %q", s)
	}
}

// Training duration bounds in minutes.
const (
	MinDuration = 1
	MaxDuration = 60
)

// Preferences are the training settings kept across screens.
type Preferences struct {
	Duration   int        `json:"duration"` // minutes
	Difficulty Difficulty `json:"difficulty"`
}

func DefaultPreferences() Preferences {
	return Preferences{Duration: 5, Difficulty: DifficultyLow}
}
