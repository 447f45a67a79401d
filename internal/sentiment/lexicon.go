package sentiment

import (
	"context"
	"embed"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/emberwell/pulsecheck-backend/internal/burnout"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

const lexiconEnv = "SENTIMENT_LEXICON_YAML"

//go:embed lexicon.yaml
var lexiconFS embed.FS

// confidence reaches 1.0 once one token in matchDensityFull is a lexicon hit
const matchDensityFull = 5.0

type yamlLexicon struct {
	Version        int                     `yaml:"version"`
	Terms          map[string]float64      `yaml:"terms"`
	Flags          map[string]yamlFlagSpec `yaml:"flags"`
	StressKeywords []string                `yaml:"stress_keywords"`
}

type yamlFlagSpec struct {
	Threshold int      `yaml:"threshold"`
	Phrases   []string `yaml:"phrases"`
}

// LexiconProvider scores qualitative text against an embedded weighted
// lexicon. Fully deterministic and offline: the default provider when no
// external sentiment endpoint is configured.
type LexiconProvider struct {
	log *logger.Logger

	words   map[string]float64
	phrases []weightedPhrase

	flags          []flagSpec
	stressKeywords []string
}

type weightedPhrase struct {
	phrase string
	weight float64
}

type flagSpec struct {
	name      string
	threshold int
	phrases   []string
}

func NewLexiconProvider(log *logger.Logger) (*LexiconProvider, error) {
	data, err := readLexicon()
	if err != nil {
		return nil, err
	}

	var lex yamlLexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse sentiment lexicon: %w", err)
	}
	if len(lex.Terms) == 0 {
		return nil, fmt.Errorf("sentiment lexicon has no terms")
	}

	p := &LexiconProvider{
		log:            log.With("provider", "LexiconSentiment"),
		words:          make(map[string]float64),
		stressKeywords: lex.StressKeywords,
	}
	for term, weight := range lex.Terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.ContainsRune(term, ' ') {
			p.phrases = append(p.phrases, weightedPhrase{phrase: term, weight: weight})
		} else {
			p.words[term] = weight
		}
	}
	// map iteration order is random; fix phrase order for determinism
	sort.Slice(p.phrases, func(i, j int) bool { return p.phrases[i].phrase < p.phrases[j].phrase })

	for name, spec := range lex.Flags {
		threshold := spec.Threshold
		if threshold <= 0 {
			threshold = 1
		}
		p.flags = append(p.flags, flagSpec{name: name, threshold: threshold, phrases: spec.Phrases})
	}
	sort.Slice(p.flags, func(i, j int) bool { return p.flags[i].name < p.flags[j].name })

	return p, nil
}

func readLexicon() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(lexiconEnv)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", lexiconEnv, err)
		}
		return data, nil
	}
	return lexiconFS.ReadFile("lexicon.yaml")
}

func (p *LexiconProvider) Analyze(ctx context.Context, in burnout.QualitativeInput) (burnout.SentimentResult, error) {
	if err := ctx.Err(); err != nil {
		return burnout.SentimentResult{}, err
	}
	if in.Empty() {
		return burnout.NeutralSentiment("lexicon"), nil
	}

	text := normalizeText(in.Texts)
	tokens := tokenize(text)

	var raw float64
	matches := 0
	for _, tok := range tokens {
		if weight, ok := p.words[tok]; ok {
			raw += weight
			matches++
		}
	}
	for _, wp := range p.phrases {
		if n := strings.Count(text, wp.phrase); n > 0 {
			raw += wp.weight * float64(n)
			matches += n
		}
	}

	result := burnout.SentimentResult{Source: "lexicon"}
	// squash the open-ended weighted sum into (-1, 1)
	result.Score = raw / (1 + math.Abs(raw))
	if len(tokens) > 0 {
		density := float64(matches) / float64(len(tokens))
		result.Confidence = math.Min(1, density*matchDensityFull)
	}

	for _, spec := range p.flags {
		hits := 0
		for _, phrase := range spec.phrases {
			hits += strings.Count(text, strings.ToLower(phrase))
		}
		if hits >= spec.threshold {
			setFlag(&result.Flags, spec.name)
		}
	}

	for _, kw := range p.stressKeywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			result.StressKeywords = append(result.StressKeywords, kw)
		}
	}

	return result, nil
}

func setFlag(f *burnout.SentimentFlags, name string) {
	switch name {
	case "emotional_exhaustion":
		f.EmotionalExhaustion = true
	case "overwhelm":
		f.Overwhelm = true
	case "sleep_concerns":
		f.SleepConcerns = true
	case "detachment":
		f.Detachment = true
	case "irritability":
		f.Irritability = true
	}
}

func normalizeText(texts []string) string {
	joined := strings.ToLower(strings.Join(texts, " "))
	return strings.Join(strings.Fields(joined), " ")
}

func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}
