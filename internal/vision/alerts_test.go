package vision

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvaluateAlertsThresholdsAreStrict(t *testing.T) {
	tests := []struct {
		name  string
		pcts  map[Category]float64
		want  []AlertType
	}{
		{
			name: "all below thresholds",
			pcts: map[Category]float64{EmotionSad: 35, EmotionFear: 25, EmotionAngry: 30},
			want: []AlertType{},
		},
		{
			name: "sad just over",
			pcts: map[Category]float64{EmotionSad: 35.01},
			want: []AlertType{AlertHighSadness},
		},
		{
			name: "fear just over",
			pcts: map[Category]float64{EmotionFear: 25.01},
			want: []AlertType{AlertHighAnxiety},
		},
		{
			name: "angry just over",
			pcts: map[Category]float64{EmotionAngry: 30.01},
			want: []AlertType{AlertHighAnger},
		},
		{
			name: "missing categories count as zero",
			pcts: map[Category]float64{EmotionHappy: 100},
			want: []AlertType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := EvaluateAlerts(tt.pcts, PostureCounts{}, 10)
			got := alertTypes(alerts)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("alert types mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateAlertsDepressivePosture(t *testing.T) {
	// 4 head-down frames out of 10: 4 > 10*0.3, so the rule fires.
	alerts := EvaluateAlerts(map[Category]float64{}, PostureCounts{HeadDown: 4}, 10)
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0].Type != AlertDepressivePosture {
		t.Errorf("type = %s, want %s", alerts[0].Type, AlertDepressivePosture)
	}
	if alerts[0].Severity != SeverityLow {
		t.Errorf("severity = %s, want %s", alerts[0].Severity, SeverityLow)
	}

	// Exactly at the boundary (3 > 3 is false): no alert.
	alerts = EvaluateAlerts(map[Category]float64{}, PostureCounts{HeadDown: 3}, 10)
	if len(alerts) != 0 {
		t.Fatalf("got %d alerts at boundary, want 0", len(alerts))
	}
}

func TestEvaluateAlertsEmissionOrderIsFixed(t *testing.T) {
	pcts := map[Category]float64{
		EmotionAngry: 90,
		EmotionFear:  90,
		EmotionSad:   90,
	}
	alerts := EvaluateAlerts(pcts, PostureCounts{HeadDown: 9}, 10)

	want := []AlertType{AlertHighSadness, AlertHighAnxiety, AlertHighAnger, AlertDepressivePosture}
	if diff := cmp.Diff(want, alertTypes(alerts)); diff != "" {
		t.Errorf("emission order mismatch (-want +got):\n%s", diff)
	}
	for _, a := range alerts[:3] {
		if a.Severity != SeverityMedium {
			t.Errorf("%s severity = %s, want %s", a.Type, a.Severity, SeverityMedium)
		}
	}
	if alerts[3].Severity != SeverityLow {
		t.Errorf("%s severity = %s, want %s", alerts[3].Type, alerts[3].Severity, SeverityLow)
	}
}

func alertTypes(alerts []Alert) []AlertType {
	types := []AlertType{}
	for _, a := range alerts {
		types = append(types, a.Type)
	}
	return types
}
