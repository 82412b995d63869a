package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"blackjack-helper/server/agent"
	"blackjack-helper/server/counter"
	"blackjack-helper/server/session"
)

const (
	serviceName    = "BlackJack Helper API"
	serviceVersion = "1.0.0"
)

// Recognizer turns a photo of the table into recognized cards.
type Recognizer interface {
	Recognize(ctx context.Context, imageBase64, mime string) (agent.Frame, string, error)
}

type API struct {
	Analyzer *session.Analyzer
	Count    *counter.Counter
	Vision   Recognizer // nil disables /api/analyze-frame
	Cfg      Config
}

type analyzeResponse struct {
	Success   bool               `json:"success"`
	GameState *session.GameState `json:"game_state"`
	Error     string             `json:"error,omitempty"`
}

func Router(a *API) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors(a.Cfg.CORSOrigins))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"name":    serviceName,
			"version": serviceVersion,
			"status":  "running",
			"endpoints": map[string]string{
				"analyze_frame": "/api/analyze-frame",
				"evaluate":      "/api/evaluate",
				"count":         "/api/count",
				"count_reset":   "/api/count/reset",
			},
		})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze-frame", a.analyzeFrame)
		r.Post("/evaluate", a.evaluate)
		r.Get("/count", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]int{"cumulative_running_count": a.Count.Current()})
		})
		r.Post("/count/reset", func(w http.ResponseWriter, r *http.Request) {
			v, err := a.Count.Reset(r.Context())
			if err != nil {
				var pe *counter.PersistError
				if !errors.As(err, &pe) {
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
				// The in-memory count is reset; only the durable copy lags.
				writeJSONStatus(w, http.StatusOK, map[string]any{"cumulative_running_count": v, "warning": err.Error()})
				return
			}
			writeJSON(w, map[string]int{"cumulative_running_count": v})
		})
	})
	return r
}

func (a *API) analyzeFrame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageBase64 string `json:"image_base64"`
	}
	body := r.Body
	if a.Cfg.MaxImageBytes > 0 {
		// base64 inflates the image by a third; leave room for the envelope.
		body = http.MaxBytesReader(w, r.Body, int64(a.Cfg.MaxImageBytes)*2)
	}
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, analyzeResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.ImageBase64) == "" {
		writeJSONStatus(w, http.StatusUnprocessableEntity, analyzeResponse{Error: "image_base64 is required"})
		return
	}

	payload, mime, err := decodeImage(req.ImageBase64, a.Cfg.MaxImageBytes)
	if err != nil {
		writeJSON(w, analyzeResponse{Error: "Invalid image data: " + err.Error()})
		return
	}
	if a.Vision == nil {
		writeJSON(w, analyzeResponse{Error: "frame recognition is not configured"})
		return
	}

	ctx, cancel := withTimeout(r.Context(), a.Cfg.RecognizeTimeout)
	defer cancel()
	frame, _, err := a.Vision.Recognize(ctx, payload, mime)
	if err != nil {
		writeJSON(w, analyzeResponse{Error: "Error analyzing frame: " + err.Error()})
		return
	}
	a.respondFrame(w, r, frame)
}

func (a *API) evaluate(w http.ResponseWriter, r *http.Request) {
	var frame agent.Frame
	if err := json.NewDecoder(r.Body).Decode(&frame); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, analyzeResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	a.respondFrame(w, r, frame)
}

func (a *API) respondFrame(w http.ResponseWriter, r *http.Request, frame agent.Frame) {
	player, dealer, err := frame.Validate()
	if err != nil {
		writeJSON(w, analyzeResponse{Error: "Error analyzing frame: " + err.Error()})
		return
	}
	gs, err := a.Analyzer.ProcessFrame(r.Context(), player, dealer)
	if err != nil {
		writeJSON(w, analyzeResponse{Error: "Error processing frame: " + err.Error()})
		return
	}
	writeJSON(w, analyzeResponse{Success: true, GameState: &gs})
}

// decodeImage checks that s is base64 for a JPEG, PNG or GIF no larger
// than limit and returns the payload without any data-URL prefix, plus
// its MIME type.
func decodeImage(s string, limit int) (string, string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	if limit > 0 && base64.StdEncoding.DecodedLen(len(s)) > limit {
		return "", "", fmt.Errorf("image larger than %d bytes", limit)
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", "", err
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", "", err
	}
	return s, "image/" + format, nil
}

func cors(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := map[string]bool{}
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && (allowAll || allowed[origin]) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, v any) { writeJSONStatus(w, http.StatusOK, v) }

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// withTimeout leaves ctx alone when d is not positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
