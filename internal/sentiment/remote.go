package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emberwell/pulsecheck-backend/internal/burnout"
	"github.com/emberwell/pulsecheck-backend/internal/platform/logger"
)

// HTTPProvider delegates scoring to an external sentiment service. Any
// transport or decode failure is returned as-is; the orchestrator owns
// the neutral-fallback decision.
type HTTPProvider struct {
	url        string
	httpClient *http.Client
	log        *logger.Logger
}

func NewHTTPProvider(url string, timeout time.Duration, log *logger.Logger) (*HTTPProvider, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("missing SENTIMENT_PROVIDER_URL")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProvider{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With("provider", "HTTPSentiment"),
	}, nil
}

type remoteRequest struct {
	Texts []string `json:"texts"`
}

type remoteResponse struct {
	Score      float64                `json:"score"`
	Confidence float64                `json:"confidence"`
	Flags      burnout.SentimentFlags `json:"flags"`
	Keywords   []string               `json:"keywords"`
}

func (p *HTTPProvider) Analyze(ctx context.Context, in burnout.QualitativeInput) (burnout.SentimentResult, error) {
	if in.Empty() {
		return burnout.NeutralSentiment("http"), nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(remoteRequest{Texts: in.Texts}); err != nil {
		return burnout.SentimentResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, &buf)
	if err != nil {
		return burnout.SentimentResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return burnout.SentimentResult{}, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return burnout.SentimentResult{}, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return burnout.SentimentResult{}, fmt.Errorf("sentiment provider http %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var decoded remoteResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return burnout.SentimentResult{}, fmt.Errorf("sentiment provider body: %w", err)
	}

	return burnout.SentimentResult{
		Score:          clamp(decoded.Score, -1, 1),
		Confidence:     clamp(decoded.Confidence, 0, 1),
		Flags:          decoded.Flags,
		StressKeywords: decoded.Keywords,
		Source:         "http",
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncateBody(raw []byte) string {
	const max = 256
	s := strings.TrimSpace(string(raw))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
