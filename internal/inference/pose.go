package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/mirador-data/behavior.report/internal/httputil"
	"github.com/mirador-data/behavior.report/internal/vision"
)

// PoseClient calls the pose-keypoint sidecar. The sidecar answers one entry
// per detected person, each carrying the 17 COCO keypoints with undetected
// landmarks at (0,0). An empty persons list is the normal "nobody visible"
// outcome, not an error.
type PoseClient struct {
	baseURL string
	http    httputil.HTTPClient
}

// NewPoseClient creates a client for the pose sidecar at baseURL.
func NewPoseClient(baseURL string, c httputil.HTTPClient) *PoseClient {
	if c == nil {
		c = httputil.NewSidecarClient(0)
	}
	return &PoseClient{baseURL: strings.TrimRight(baseURL, "/"), http: c}
}

type poseRequest struct {
	Image string `json:"image"`
}

type poseResponse struct {
	Persons []struct {
		Keypoints [][2]float64 `json:"keypoints"`
	} `json:"persons"`
}

// EstimatePose implements vision.PoseEstimator.
func (c *PoseClient) EstimatePose(ctx context.Context, img image.Image) ([]vision.Keypoints, error) {
	payload, err := encodeJPEG(img)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(poseRequest{Image: payload})
	if err != nil {
		return nil, fmt.Errorf("pose marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pose", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pose request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pose sidecar %s: %s", resp.Status, readErrBody(resp.Body))
	}

	var out poseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("pose decode: %w", err)
	}

	persons := make([]vision.Keypoints, 0, len(out.Persons))
	for _, p := range out.Persons {
		kp := make(vision.Keypoints, len(p.Keypoints))
		for i, xy := range p.Keypoints {
			kp[i] = vision.Point{X: xy[0], Y: xy[1]}
		}
		persons = append(persons, kp)
	}
	return persons, nil
}
