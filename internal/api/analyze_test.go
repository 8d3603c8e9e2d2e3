package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mirador-data/behavior.report/internal/inference"
	"github.com/mirador-data/behavior.report/internal/vision"
)

func postAnalyze(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(w, req)
	return w
}

func TestAnalyzeHappyPath(t *testing.T) {
	srv, _ := newTestServer(t, sadLoader())

	body, _ := json.Marshal(map[string]string{"image": framePayload(t)})
	w := postAnalyze(t, srv, string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	var resp struct {
		Success  bool `json:"success"`
		Analysis struct {
			Emotion      string `json:"emotion"`
			HeadDown     bool   `json:"head_down"`
			OverallState string `json:"overall_state"`
			EmotionError string `json:"emotion_error"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Analysis.Emotion != "sad" || !resp.Analysis.HeadDown {
		t.Errorf("analysis = %+v", resp.Analysis)
	}
	if resp.Analysis.OverallState != vision.StateAnxious {
		t.Errorf("overall_state = %q, want anxious", resp.Analysis.OverallState)
	}
	if resp.Analysis.EmotionError != "" {
		t.Errorf("unexpected emotion_error %q", resp.Analysis.EmotionError)
	}
}

// The sync path must classify with the same tuning the streaming path gets:
// a widened hunch ratio flips the hunched flag for the same image.
func TestAnalyzeHonorsTunedHeuristics(t *testing.T) {
	// Test frame is 16px wide with shoulders 6px apart: under the default
	// 0.15 ratio (threshold 2.4px) that is not hunched; under 0.5
	// (threshold 8px) it is.
	tuned := NewServer(Config{
		Models: sadLoader(),
		Heuristics: vision.HeuristicParams{
			HunchRatio:            0.5,
			HandsOnFaceDistancePx: 100,
		},
	})

	body, _ := json.Marshal(map[string]string{"image": framePayload(t)})

	var resp struct {
		Analysis struct {
			Hunched bool `json:"hunched"`
		} `json:"analysis"`
	}

	w := postAnalyze(t, tuned, string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Analysis.Hunched {
		t.Error("tuned hunch ratio did not reach the sync analyzer")
	}

	srv, _ := newTestServer(t, sadLoader())
	w = postAnalyze(t, srv, string(body))
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Analysis.Hunched {
		t.Error("default heuristics flagged hunched for 6px shoulder spread")
	}
}

func TestAnalyzeMissingImage(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := postAnalyze(t, srv, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("image")) {
		t.Errorf("error body should name the missing field, got %s", w.Body)
	}
}

func TestAnalyzeBadPayload(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for name, body := range map[string]string{
		"not json":    `{{{`,
		"bad base64":  `{"image": "!!not-base64!!"}`,
		"not a image": `{"image": "aGVsbG8gd29ybGQ="}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := postAnalyze(t, srv, body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestAnalyzeSurfacesModelFaults(t *testing.T) {
	// The synchronous path reports sub-step faults in the body instead of
	// silently defaulting like the streaming path.
	loader := inference.NewLoader(func() (*inference.Models, error) {
		return &inference.Models{
			Emotion: &faultyEmotion{},
			Pose:    &inference.StaticPose{},
		}, nil
	})
	srv, _ := newTestServer(t, loader)

	body, _ := json.Marshal(map[string]string{"image": framePayload(t)})
	w := postAnalyze(t, srv, string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Success  bool `json:"success"`
		Analysis struct {
			Emotion      *string `json:"emotion"`
			EmotionError string  `json:"emotion_error"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Analysis.Emotion != nil {
		t.Errorf("emotion = %v, want null", *resp.Analysis.Emotion)
	}
	if resp.Analysis.EmotionError == "" {
		t.Error("emotion_error not surfaced")
	}
}

type faultyEmotion struct{}

func (faultyEmotion) ClassifyEmotion(_ context.Context, _ image.Image, _ vision.EmotionOptions) (*vision.EmotionResult, error) {
	return nil, errors.New("inference backend down")
}
