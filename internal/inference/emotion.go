package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/mirador-data/behavior.report/internal/httputil"
	"github.com/mirador-data/behavior.report/internal/vision"
)

// maxErrBody caps how much of a sidecar error body is quoted in errors.
const maxErrBody = 4096

// EmotionClient calls the facial-emotion sidecar. The sidecar runs in
// tolerant mode: a frame with no confidently detected face is a normal
// response (face_detected=false), which this client maps to
// vision.ErrNoDetection rather than a fault.
type EmotionClient struct {
	baseURL string
	http    httputil.HTTPClient
}

// NewEmotionClient creates a client for the emotion sidecar at baseURL.
func NewEmotionClient(baseURL string, c httputil.HTTPClient) *EmotionClient {
	if c == nil {
		c = httputil.NewSidecarClient(0)
	}
	return &EmotionClient{baseURL: strings.TrimRight(baseURL, "/"), http: c}
}

type emotionRequest struct {
	Image   string   `json:"image"`
	Actions []string `json:"actions"`
}

type emotionResponse struct {
	FaceDetected    bool                        `json:"face_detected"`
	DominantEmotion vision.Category             `json:"dominant_emotion"`
	Emotion         map[vision.Category]float64 `json:"emotion"`
	Age             *int                        `json:"age"`
	DominantGender  *string                     `json:"dominant_gender"`
}

// ClassifyEmotion implements vision.EmotionClassifier.
func (c *EmotionClient) ClassifyEmotion(ctx context.Context, img image.Image, opts vision.EmotionOptions) (*vision.EmotionResult, error) {
	payload, err := encodeJPEG(img)
	if err != nil {
		return nil, err
	}

	actions := []string{"emotion"}
	if opts.Demographics {
		actions = append(actions, "age", "gender")
	}

	body, err := json.Marshal(emotionRequest{Image: payload, Actions: actions})
	if err != nil {
		return nil, fmt.Errorf("emotion marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emotion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("emotion sidecar %s: %s", resp.Status, readErrBody(resp.Body))
	}

	var out emotionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("emotion decode: %w", err)
	}

	if !out.FaceDetected || out.DominantEmotion == "" {
		return nil, vision.ErrNoDetection
	}

	result := &vision.EmotionResult{
		Dominant: out.DominantEmotion,
		Scores:   out.Emotion,
		Age:      out.Age,
		Gender:   out.DominantGender,
	}
	if result.Scores == nil {
		result.Scores = map[vision.Category]float64{}
	}
	return result, nil
}

func readErrBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, maxErrBody))
	return strings.TrimSpace(string(body))
}
