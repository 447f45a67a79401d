package burnout

import "fmt"

// Level is the traffic-light burnout band. The same score-to-level
// mapping applies to the workload-only score and the fused final score.
type Level string

const (
	LevelGreen  Level = "green"
	LevelYellow Level = "yellow"
	LevelRed    Level = "red"
)

const (
	yellowFloor = 35
	redFloor    = 65
)

func LevelForScore(score int) Level {
	switch {
	case score >= redFloor:
		return LevelRed
	case score >= yellowFloor:
		return LevelYellow
	default:
		return LevelGreen
	}
}

func (l Level) Valid() bool {
	switch l {
	case LevelGreen, LevelYellow, LevelRed:
		return true
	default:
		return false
	}
}

func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("burnout: unknown level %q", s)
	}
	return l, nil
}
