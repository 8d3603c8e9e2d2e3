package vision

import (
	"encoding/json"
	"time"
)

// Category is an emotion label from the classifier's fixed vocabulary.
// The zero value means "no emotion detected" and marshals as JSON null so
// the wire shape matches what clients of the legacy service expect.
type Category string

// Emotion categories emitted by the classifier.
const (
	EmotionAngry    Category = "angry"
	EmotionDisgust  Category = "disgust"
	EmotionFear     Category = "fear"
	EmotionHappy    Category = "happy"
	EmotionSad      Category = "sad"
	EmotionSurprise Category = "surprise"
	EmotionNeutral  Category = "neutral"
)

// Categories lists every emotion category in a stable order.
var Categories = []Category{
	EmotionAngry, EmotionDisgust, EmotionFear,
	EmotionHappy, EmotionSad, EmotionSurprise, EmotionNeutral,
}

// MarshalJSON encodes the empty category as null.
func (c Category) MarshalJSON() ([]byte, error) {
	if c == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// UnmarshalJSON accepts null as the empty category.
func (c *Category) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = Category(s)
	return nil
}

// Negative reports whether the category counts as a distress emotion for the
// per-frame overall-state derivation.
func (c Category) Negative() bool {
	switch c {
	case EmotionSad, EmotionFear, EmotionAngry:
		return true
	}
	return false
}

// Per-frame overall states, derived from the emotion/posture combination.
const (
	StateNormal   = "normal"
	StateStressed = "stressed"
	StateAnxious  = "anxious"
	StateNervous  = "nervous"
)

// Whole-session overall states. These come from a deliberately coarser
// percentage-threshold classification, not from the per-frame rules.
const (
	SessionStable  = "stable"
	SessionSad     = "sad"
	SessionAnxious = "anxious"
)

// FrameResult is the complete analysis output for one frame. It is immutable
// once produced.
type FrameResult struct {
	Emotion       Category             `json:"emotion"`
	EmotionScores map[Category]float64 `json:"emotion_scores"`
	PostureFlags
	OverallState string    `json:"overall_state"`
	Timestamp    time.Time `json:"timestamp"`
}

// DeriveOverallState classifies one frame from its emotion and posture
// combination. The branch order is load-bearing: hands_on_face only decides
// the state when the distress-emotion branch did not already fire.
func DeriveOverallState(emotion Category, flags PostureFlags) string {
	switch {
	case emotion.Negative() && (flags.HeadDown || flags.Hunched):
		return StateAnxious
	case emotion.Negative():
		return StateStressed
	case flags.HandsOnFace:
		return StateNervous
	default:
		return StateNormal
	}
}
