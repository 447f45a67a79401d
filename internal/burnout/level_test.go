package burnout

import "testing"

func TestLevelForScoreBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Level
	}{
		{0, LevelGreen},
		{20, LevelGreen},
		{34, LevelGreen},
		{35, LevelYellow},
		{50, LevelYellow},
		{64, LevelYellow},
		{65, LevelRed},
		{87, LevelRed},
		{100, LevelRed},
	}
	for _, tc := range cases {
		if got := LevelForScore(tc.score); got != tc.want {
			t.Fatalf("LevelForScore(%d): want=%s got=%s", tc.score, tc.want, got)
		}
	}
}

func TestLevelValid(t *testing.T) {
	for _, l := range []Level{LevelGreen, LevelYellow, LevelRed} {
		if !l.Valid() {
			t.Fatalf("Valid(%s): want=true", l)
		}
	}
	if Level("orange").Valid() {
		t.Fatalf("Valid(orange): want=false")
	}
	if Level("").Valid() {
		t.Fatalf("Valid(empty): want=false")
	}
}

func TestParseLevel(t *testing.T) {
	got, err := ParseLevel("yellow")
	if err != nil {
		t.Fatalf("ParseLevel(yellow): %v", err)
	}
	if got != LevelYellow {
		t.Fatalf("ParseLevel(yellow): want=%s got=%s", LevelYellow, got)
	}
	if _, err := ParseLevel("RED"); err == nil {
		t.Fatalf("ParseLevel(RED): want error, levels are lowercase")
	}
}
