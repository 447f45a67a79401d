package sentiment

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/emberwell/pulsecheck-backend/internal/burnout"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func newLexicon(t *testing.T) *LexiconProvider {
	t.Helper()
	p, err := NewLexiconProvider(testLogger(t))
	if err != nil {
		t.Fatalf("NewLexiconProvider: %v", err)
	}
	return p
}

func TestLexiconNegativeText(t *testing.T) {
	p := newLexicon(t)

	got, err := p.Analyze(context.Background(), burnout.QualitativeInput{
		Texts: []string{
			"I am completely exhausted and overwhelmed.",
			"Can't keep up with the deadlines anymore.",
		},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Score >= 0 {
		t.Fatalf("Score: want negative got=%v", got.Score)
	}
	if got.Score < -1 || got.Score > 1 {
		t.Fatalf("Score out of range: %v", got.Score)
	}
	if got.Confidence <= 0 || got.Confidence > 1 {
		t.Fatalf("Confidence out of range: %v", got.Confidence)
	}
	if !got.Flags.EmotionalExhaustion {
		t.Fatalf("Flags.EmotionalExhaustion: want true")
	}
	if !got.Flags.Overwhelm {
		t.Fatalf("Flags.Overwhelm: want true")
	}
	if got.Flags.SleepConcerns {
		t.Fatalf("Flags.SleepConcerns: want false")
	}
	if !containsKeyword(got.StressKeywords, "deadline") {
		t.Fatalf("StressKeywords: want deadline match, got %v", got.StressKeywords)
	}
	if got.Source != "lexicon" {
		t.Fatalf("Source: want=lexicon got=%s", got.Source)
	}
}

func TestLexiconPositiveText(t *testing.T) {
	p := newLexicon(t)

	got, err := p.Analyze(context.Background(), burnout.QualitativeInput{
		Texts: []string{"Slept well, feeling rested and energized. Calm, productive day."},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Score <= 0 {
		t.Fatalf("Score: want positive got=%v", got.Score)
	}
	if got.Flags != (burnout.SentimentFlags{}) {
		t.Fatalf("Flags: want none got=%+v", got.Flags)
	}
	if len(got.StressKeywords) != 0 {
		t.Fatalf("StressKeywords: want none got=%v", got.StressKeywords)
	}
}

func TestLexiconFlagSpecificity(t *testing.T) {
	p := newLexicon(t)

	got, err := p.Analyze(context.Background(), burnout.QualitativeInput{
		Texts: []string{"barely slept last night, up all night again"},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !got.Flags.SleepConcerns {
		t.Fatalf("Flags.SleepConcerns: want true")
	}
	if got.Flags.Overwhelm || got.Flags.Detachment || got.Flags.Irritability {
		t.Fatalf("Flags: unexpected extras: %+v", got.Flags)
	}
}

func TestLexiconEmptyInput(t *testing.T) {
	p := newLexicon(t)

	got, err := p.Analyze(context.Background(), burnout.QualitativeInput{Texts: []string{"  ", ""}})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := burnout.NeutralSentiment("lexicon")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Analyze empty: want=%+v got=%+v", want, got)
	}
}

func TestLexiconBoundsUnderRepetition(t *testing.T) {
	p := newLexicon(t)

	text := strings.Repeat("exhausted overwhelmed hopeless miserable ", 50)
	got, err := p.Analyze(context.Background(), burnout.QualitativeInput{Texts: []string{text}})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Score < -1 || got.Score > 1 {
		t.Fatalf("Score out of range under repetition: %v", got.Score)
	}
	if got.Confidence != 1 {
		t.Fatalf("Confidence: want saturated 1 got=%v", got.Confidence)
	}
}

func TestLexiconDeterministic(t *testing.T) {
	p := newLexicon(t)
	in := burnout.QualitativeInput{Texts: []string{"drained, swamped, and dreading tomorrow's deadline pressure"}}

	first, err := p.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze #1: %v", err)
	}
	second, err := p.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze #2: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Analyze not deterministic:\n#1=%+v\n#2=%+v", first, second)
	}
}

func TestLexiconContextCanceled(t *testing.T) {
	p := newLexicon(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Analyze(ctx, burnout.QualitativeInput{Texts: []string{"exhausted"}}); err == nil {
		t.Fatalf("Analyze: want context error")
	}
}

func containsKeyword(keywords []string, want string) bool {
	for _, kw := range keywords {
		if strings.Contains(kw, want) {
			return true
		}
	}
	return false
}
