package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"blackjack-helper/server/agent"
)

const cardPrompt = `Analyze this blackjack game image and identify all visible cards.

Identify:
1. Player's cards (the cards in the player's hand, nearest the bottom of the image)
2. Dealer's cards (the cards in the dealer's hand, nearest the top of the image)

For each card give:
- rank: A, 2, 3, 4, 5, 6, 7, 8, 9, 10, J, Q, K
- suit: hearts, diamonds, clubs or spades
- confidence: your confidence from 0.0 to 1.0

Return JSON only, in this format:
{
  "player_cards": [
    {"rank": "A", "suit": "hearts", "confidence": 0.95},
    {"rank": "K", "suit": "spades", "confidence": 0.90}
  ],
  "dealer_cards": [
    {"rank": "7", "suit": "diamonds", "confidence": 0.85}
  ]
}

If you cannot clearly identify any cards, return empty arrays for player_cards and dealer_cards.`

// Recognizer reads the cards on the table from a photo using an
// OpenAI-compatible vision model.
type Recognizer struct {
	cfg       apiConfig
	httpc     *http.Client
	MaxTokens int
}

func NewRecognizer(model string) (*Recognizer, error) {
	cfg, err := resolveAPIConfig(model)
	if err != nil {
		return nil, err
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 90 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   16,
	}
	return &Recognizer{
		cfg:       cfg,
		httpc:     &http.Client{Transport: tr},
		MaxTokens: 1000,
	}, nil
}

// WithHTTPClient overrides the internal HTTP client (e.g. in tests).
func (r *Recognizer) WithHTTPClient(c *http.Client) *Recognizer {
	if c != nil {
		r.httpc = c
	}
	return r
}

func (r *Recognizer) Model() string { return r.cfg.Model }

// Recognize sends one base64 image to the model and returns the cards it
// reports, along with the raw reply text. A reply without a JSON object
// means no cards were found.
func (r *Recognizer) Recognize(ctx context.Context, imageBase64, mime string) (agent.Frame, string, error) {
	if !isImageMIME(mime) {
		return agent.Frame{}, "", fmt.Errorf("unsupported image type %q", mime)
	}
	payload := map[string]any{
		"model": r.cfg.Model,
		"messages": []map[string]any{{
			"role": "user",
			"content": []map[string]any{
				{"type": "text", "text": cardPrompt},
				{"type": "image_url", "image_url": map[string]string{
					"url": "data:" + mime + ";base64," + imageBase64,
				}},
			},
		}},
		"response_format": map[string]any{"type": "json_object"},
	}
	if r.MaxTokens > 0 {
		payload["max_tokens"] = r.MaxTokens
	}
	applyTuningFromEnv(payload)

	b, err := json.Marshal(payload)
	if err != nil {
		return agent.Frame{}, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return agent.Frame{}, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(r.cfg.HeaderName, r.cfg.HeaderPrefix+r.cfg.APIKey)
	if r.cfg.Organization != "" {
		req.Header.Set("OpenAI-Organization", r.cfg.Organization)
	}
	for k, v := range r.cfg.ExtraHeaders {
		setHeaderPreserveCase(req.Header, k, v)
	}

	resp, err := r.httpc.Do(req)
	if err != nil {
		return agent.Frame{}, "", err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	body := buf.Bytes()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return agent.Frame{}, "", fmt.Errorf("vision http %d: %s", resp.StatusCode, truncate(string(body), 800))
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &cc); err != nil {
		return agent.Frame{}, "", err
	}
	if len(cc.Choices) == 0 {
		return agent.Frame{}, "", errors.New("no choices returned")
	}
	text := cc.Choices[0].Message.Content

	frame := agent.Frame{PlayerCards: []agent.Card{}, DealerCards: []agent.Card{}}
	raw := extractJSONObject(text)
	if raw == "" {
		return frame, text, nil
	}
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		return agent.Frame{}, text, fmt.Errorf("decode recognized cards: %w", err)
	}
	return frame, text, nil
}

func applyTuningFromEnv(m map[string]any) {
	if v := firstNonEmpty(os.Getenv("OPENAI_TEMPERATURE"), os.Getenv("OPENROUTER_TEMPERATURE")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m["temperature"] = f
		}
	}
	if v := firstNonEmpty(os.Getenv("OPENAI_TOP_P"), os.Getenv("OPENROUTER_TOP_P")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m["top_p"] = f
		}
	}
}

// setHeaderPreserveCase keeps non-canonical names such as HTTP-Referer as
// written; some gateways match them literally.
func setHeaderPreserveCase(h http.Header, key, value string) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	if textproto.CanonicalMIMEHeaderKey(key) == key {
		h.Set(key, value)
		return
	}
	h[key] = []string{value}
}

func isImageMIME(m string) bool {
	switch strings.ToLower(strings.TrimSpace(m)) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif":
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}
