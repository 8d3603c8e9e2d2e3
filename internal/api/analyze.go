package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mirador-data/behavior.report/internal/httputil"
	"github.com/mirador-data/behavior.report/internal/vision"
)

type analyzeRequest struct {
	Image string `json:"image"`
}

type analyzeResponse struct {
	Success  bool                  `json:"success"`
	Analysis vision.DetailedResult `json:"analysis"`
}

// handleAnalyze is the synchronous single-image path. Unlike the streaming
// path it surfaces sub-step faults in the response body and requests
// demographics from the classifier.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON body")
		return
	}
	if req.Image == "" {
		httputil.BadRequest(w, `the "image" field with a base64 image is required`)
		return
	}

	img, err := vision.DecodeFrame(req.Image)
	if err != nil {
		if s.metrics != nil {
			s.metrics.DecodeFailures.Add(1)
		}
		var decodeErr *vision.DecodeError
		if errors.As(err, &decodeErr) {
			httputil.BadRequest(w, "could not decode image: "+decodeErr.Reason)
			return
		}
		httputil.BadRequest(w, "could not decode image")
		return
	}

	models, err := s.models.Get()
	if err != nil {
		httputil.InternalServerError(w, "analysis models unavailable")
		return
	}

	analyzer := vision.NewAnalyzer(vision.AnalyzerConfig{
		Emotion:       models.Emotion,
		Pose:          models.Pose,
		Heuristics:    s.heuristics,
		WorkingWidth:  s.workingWidth,
		WorkingHeight: s.workingHeight,
		OnModelFault: func(stage string, err error) {
			if s.metrics == nil {
				return
			}
			if stage == "emotion" {
				s.metrics.EmotionFaults.Add(1)
			} else {
				s.metrics.PoseFaults.Add(1)
			}
		},
	})
	result := analyzer.AnalyzeDetailed(r.Context(), img)
	if s.metrics != nil {
		s.metrics.FramesAnalyzed.Add(1)
	}

	httputil.WriteJSONOK(w, analyzeResponse{Success: true, Analysis: result})
}
