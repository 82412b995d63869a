package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSetHeaderPreserveCase(t *testing.T) {
	hdr := http.Header{}
	setHeaderPreserveCase(hdr, "HTTP-Referer", "https://example.com/app")
	if vals := hdr["HTTP-Referer"]; len(vals) != 1 || vals[0] != "https://example.com/app" {
		t.Fatalf("expected HTTP-Referer slice to be preserved, got %+v", vals)
	}
	if _, exists := hdr["Http-Referer"]; exists {
		t.Fatalf("unexpected canonical header variant present: %+v", hdr)
	}

	setHeaderPreserveCase(hdr, "Referer", "https://example.com/app")
	if got := hdr.Get("Referer"); got != "https://example.com/app" {
		t.Fatalf("expected Referer to be set via canonical path, got %q", got)
	}

	// Blank values should be ignored.
	setHeaderPreserveCase(hdr, "  ", "value")
	setHeaderPreserveCase(hdr, "X-Test", "   ")
	if _, exists := hdr[" "]; exists {
		t.Fatalf("expected blank header keys to be ignored")
	}
	if got := hdr.Get("X-Test"); got != "" {
		t.Fatalf("expected blank header values to be skipped, got %q", got)
	}
}

func visionServer(t *testing.T, reply string, check func(*http.Request, map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(r, body)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": reply}}},
		})
	}))
	t.Cleanup(srv.Close)
	t.Setenv("OPENAI_API_BASE", srv.URL)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_PROVIDER", "openai")
	return srv
}

func TestRecognize(t *testing.T) {
	reply := "Here are the cards:\n```json\n" +
		`{"player_cards":[{"rank":"A","suit":"hearts","confidence":0.95},{"rank":"9","suit":"spades","confidence":0.9}],` +
		`"dealer_cards":[{"rank":"7","suit":"diamonds","confidence":0.85}]}` + "\n```"
	visionServer(t, reply, func(r *http.Request, body map[string]any) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected Authorization %q", got)
		}
		if body["model"] != "gpt-4o-mini" {
			t.Errorf("unexpected model %v", body["model"])
		}
		raw, _ := json.Marshal(body["messages"])
		if !strings.Contains(string(raw), "data:image/jpeg;base64,aGVsbG8=") {
			t.Errorf("expected data URL in messages, got %s", raw)
		}
	})

	rec, err := NewRecognizer("gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewRecognizer returned error: %v", err)
	}
	frame, text, err := rec.Recognize(context.Background(), "aGVsbG8=", "image/jpeg")
	if err != nil {
		t.Fatalf("Recognize returned error: %v", err)
	}
	if text != reply {
		t.Fatalf("expected raw reply to be returned")
	}
	if len(frame.PlayerCards) != 2 || len(frame.DealerCards) != 1 {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if frame.PlayerCards[0].Rank != "A" || frame.DealerCards[0].Suit != "diamonds" {
		t.Fatalf("unexpected cards %+v", frame)
	}
}

func TestRecognizeNoJSON(t *testing.T) {
	visionServer(t, "I cannot see any cards.", nil)
	rec, err := NewRecognizer("")
	if err != nil {
		t.Fatalf("NewRecognizer returned error: %v", err)
	}
	frame, _, err := rec.Recognize(context.Background(), "aGVsbG8=", "image/png")
	if err != nil {
		t.Fatalf("Recognize returned error: %v", err)
	}
	if frame.PlayerCards == nil || len(frame.PlayerCards) != 0 || len(frame.DealerCards) != 0 {
		t.Fatalf("expected empty card lists, got %+v", frame)
	}
}

func TestRecognizeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()
	t.Setenv("OPENAI_API_BASE", srv.URL)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_PROVIDER", "openai")

	rec, err := NewRecognizer("gpt-4o")
	if err != nil {
		t.Fatalf("NewRecognizer returned error: %v", err)
	}
	_, _, err = rec.Recognize(context.Background(), "aGVsbG8=", "image/jpeg")
	if err == nil || !strings.Contains(err.Error(), "vision http 429") {
		t.Fatalf("expected http 429 error, got %v", err)
	}
}

func TestRecognizeRejectsMIME(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	rec, err := NewRecognizer("gpt-4o")
	if err != nil {
		t.Fatalf("NewRecognizer returned error: %v", err)
	}
	if _, _, err := rec.Recognize(context.Background(), "aGVsbG8=", "application/pdf"); err == nil {
		t.Fatalf("expected unsupported type error")
	}
}

func TestExtractJSONObject(t *testing.T) {
	if got := extractJSONObject("prefix {\"a\":1} suffix"); got != `{"a":1}` {
		t.Fatalf("unexpected %q", got)
	}
	if got := extractJSONObject("} no object {"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
