package inference

import (
	"context"
	"image"

	"github.com/mirador-data/behavior.report/internal/vision"
)

// StaticEmotion is a canned EmotionClassifier for dev mode and tests. It
// answers the configured result for every frame without calling out.
type StaticEmotion struct {
	Result vision.EmotionResult
	// NoFace makes every call report vision.ErrNoDetection.
	NoFace bool
}

// ClassifyEmotion implements vision.EmotionClassifier.
func (s *StaticEmotion) ClassifyEmotion(context.Context, image.Image, vision.EmotionOptions) (*vision.EmotionResult, error) {
	if s.NoFace {
		return nil, vision.ErrNoDetection
	}
	r := s.Result
	if r.Scores == nil {
		r.Scores = map[vision.Category]float64{r.Dominant: 100}
	}
	return &r, nil
}

// StaticPose is a canned PoseEstimator for dev mode and tests.
type StaticPose struct {
	Persons []vision.Keypoints
}

// EstimatePose implements vision.PoseEstimator.
func (s *StaticPose) EstimatePose(context.Context, image.Image) ([]vision.Keypoints, error) {
	return s.Persons, nil
}

// NewStaticLoader returns a loader whose models answer neutral results
// without any sidecar. Used by -dev mode so the server runs end to end on a
// laptop with no models installed.
func NewStaticLoader() *Loader {
	return NewLoader(func() (*Models, error) {
		return &Models{
			Emotion: &StaticEmotion{Result: vision.EmotionResult{
				Dominant: vision.EmotionNeutral,
				Scores:   map[vision.Category]float64{vision.EmotionNeutral: 100},
			}},
			Pose: &StaticPose{},
		}, nil
	})
}
