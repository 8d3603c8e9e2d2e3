package vision

import (
	"context"
	"errors"
	"image"
	"time"
)

// ErrNoDetection is returned by an EmotionClassifier when the model ran
// successfully but found no face in the frame. It distinguishes the normal
// "nothing there" outcome from a genuine model or transport fault.
var ErrNoDetection = errors.New("no detection")

// EmotionOptions selects optional classifier work beyond the emotion scores.
type EmotionOptions struct {
	// Demographics also requests age and gender estimates. Only the
	// synchronous single-image path asks for these.
	Demographics bool
}

// EmotionResult is one classifier inference over a frame.
type EmotionResult struct {
	Dominant Category
	Scores   map[Category]float64

	// Set only when Demographics was requested and the model supports them.
	Age    *int
	Gender *string
}

// EmotionClassifier scores facial emotion over a raster image. It runs in
// tolerant mode: an image with no confidently detected face yields
// ErrNoDetection, not a fault.
type EmotionClassifier interface {
	ClassifyEmotion(ctx context.Context, img image.Image, opts EmotionOptions) (*EmotionResult, error)
}

// PoseEstimator detects persons in a raster image and returns each one's
// keypoint set. An empty slice is the normal "nobody visible" outcome.
type PoseEstimator interface {
	EstimatePose(ctx context.Context, img image.Image) ([]Keypoints, error)
}

// AnalyzerConfig holds the analyzer's dependencies and tuning.
type AnalyzerConfig struct {
	Emotion EmotionClassifier
	Pose    PoseEstimator

	// Heuristics defaults to DefaultHeuristicParams when zero.
	Heuristics HeuristicParams

	// WorkingWidth/WorkingHeight set the downscaled resolution the emotion
	// classifier sees. Defaults: 320×240.
	WorkingWidth  int
	WorkingHeight int

	// OnModelFault, when non-nil, is called for every swallowed model fault
	// (stage is "emotion" or "pose"). ErrNoDetection does not count as a
	// fault. Used to keep fault counters honest even though the streaming
	// path defaults the affected fields.
	OnModelFault func(stage string, err error)

	// Now is the result timestamp source; defaults to time.Now.
	Now func() time.Time
}

// Analyzer orchestrates the two models and the posture heuristics into one
// per-frame result. It is safe for concurrent use across sessions: it holds
// no per-frame state and the model handles are read-only after construction.
type Analyzer struct {
	cfg AnalyzerConfig
}

// NewAnalyzer builds an analyzer, filling in defaults for zero config fields.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	if cfg.Heuristics == (HeuristicParams{}) {
		cfg.Heuristics = DefaultHeuristicParams()
	}
	if cfg.WorkingWidth <= 0 {
		cfg.WorkingWidth = 320
	}
	if cfg.WorkingHeight <= 0 {
		cfg.WorkingHeight = 240
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Analyzer{cfg: cfg}
}

// Heuristics returns the active posture thresholds.
func (a *Analyzer) Heuristics() HeuristicParams { return a.cfg.Heuristics }

// Analyze runs the streaming-path analysis over one raster. It always
// returns a complete FrameResult and never an error: model faults are
// swallowed into absent/default fields (and reported through OnModelFault),
// keeping the per-frame loop always-advancing.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image) FrameResult {
	result, _, _ := a.analyze(ctx, img, EmotionOptions{})
	return result
}

// AnalyzeDetailed runs the synchronous-path analysis: demographics are
// requested from the classifier and sub-step faults are surfaced as strings
// alongside otherwise-default fields instead of being silently dropped.
// This fault policy intentionally diverges from Analyze; both are preserved
// from the behaviour the service's clients already depend on.
func (a *Analyzer) AnalyzeDetailed(ctx context.Context, img image.Image) DetailedResult {
	result, emo, faults := a.analyze(ctx, img, EmotionOptions{Demographics: true})
	detailed := DetailedResult{FrameResult: result}
	if emo != nil {
		detailed.Age = emo.Age
		detailed.Gender = emo.Gender
	}
	if faults.emotion != nil {
		detailed.EmotionError = faults.emotion.Error()
	}
	if faults.pose != nil {
		detailed.PostureError = faults.pose.Error()
	}
	return detailed
}

// DetailedResult is the synchronous-path output: the frame result plus
// optional demographics and surfaced sub-step faults.
type DetailedResult struct {
	FrameResult
	Age          *int    `json:"age"`
	Gender       *string `json:"gender"`
	EmotionError string  `json:"emotion_error,omitempty"`
	PostureError string  `json:"posture_error,omitempty"`
}

type stageFaults struct {
	emotion error
	pose    error
}

func (a *Analyzer) analyze(ctx context.Context, img image.Image, opts EmotionOptions) (FrameResult, *EmotionResult, stageFaults) {
	result := FrameResult{
		EmotionScores: map[Category]float64{},
		OverallState:  StateNormal,
		Timestamp:     a.cfg.Now(),
	}
	var faults stageFaults
	var emo *EmotionResult

	// Stage 1: emotion on the downscaled working raster.
	if a.cfg.Emotion != nil {
		small := Downscale(img, a.cfg.WorkingWidth, a.cfg.WorkingHeight)
		var err error
		emo, err = a.cfg.Emotion.ClassifyEmotion(ctx, small, opts)
		switch {
		case errors.Is(err, ErrNoDetection):
			tracef("emotion: no face detected")
		case err != nil:
			faults.emotion = err
			opsf("emotion inference fault (defaulting fields): %v", err)
			if a.cfg.OnModelFault != nil {
				a.cfg.OnModelFault("emotion", err)
			}
		case emo != nil:
			result.Emotion = emo.Dominant
			if emo.Scores != nil {
				result.EmotionScores = emo.Scores
			}
		}
	}

	// Stage 2: pose on the original raster, heuristics OR-combined across
	// every detected person.
	if a.cfg.Pose != nil {
		persons, err := a.cfg.Pose.EstimatePose(ctx, img)
		if err != nil {
			faults.pose = err
			opsf("pose inference fault (defaulting flags): %v", err)
			if a.cfg.OnModelFault != nil {
				a.cfg.OnModelFault("pose", err)
			}
		} else {
			width := img.Bounds().Dx()
			for _, kp := range persons {
				result.PostureFlags = result.PostureFlags.Or(
					EvaluatePosture(kp, width, a.cfg.Heuristics))
			}
		}
	}

	// Stage 3: overall state from the combination.
	result.OverallState = DeriveOverallState(result.Emotion, result.PostureFlags)
	return result, emo, faults
}
