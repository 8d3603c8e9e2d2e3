package vision

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestFrameResultJSONShape(t *testing.T) {
	r := FrameResult{
		Emotion:       EmotionSad,
		EmotionScores: map[Category]float64{EmotionSad: 81.5},
		PostureFlags:  PostureFlags{HeadDown: true},
		OverallState:  StateAnxious,
		Timestamp:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{
		`"emotion":"sad"`, `"head_down":true`, `"hunched":false`,
		`"hands_on_face":false`, `"overall_state":"anxious"`, `"timestamp"`,
	} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("marshalled result missing %s: %s", key, raw)
		}
	}
}

func TestCategoryMarshalsEmptyAsNull(t *testing.T) {
	raw, err := json.Marshal(FrameResult{EmotionScores: map[Category]float64{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"emotion":null`) {
		t.Errorf("empty emotion did not marshal as null: %s", raw)
	}

	var c Category
	if err := json.Unmarshal([]byte("null"), &c); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if c != "" {
		t.Errorf("unmarshal null = %q, want empty", c)
	}
}
