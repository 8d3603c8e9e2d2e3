package vision

// Severity grades an alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AlertType identifies which threshold rule raised an alert.
type AlertType string

const (
	AlertHighSadness       AlertType = "high_sadness"
	AlertHighAnxiety       AlertType = "high_anxiety"
	AlertHighAnger         AlertType = "high_anger"
	AlertDepressivePosture AlertType = "depressive_posture"
)

// Alert is a discrete threshold-triggered notification about a session's
// aggregated statistics. Immutable once created.
type Alert struct {
	Type     AlertType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// AlertThresholds holds the session-level alerting thresholds. The sad and
// fear percentages double as the whole-session overall-state cutoffs.
type AlertThresholds struct {
	SadPct        float64
	FearPct       float64
	AngryPct      float64
	HeadDownRatio float64
}

// DefaultAlertThresholds returns the values the rules were tuned with.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		SadPct:        35,
		FearPct:       25,
		AngryPct:      30,
		HeadDownRatio: 0.3,
	}
}

// Evaluate applies the threshold rules to a session's aggregated numbers.
// The rules are independent — several may fire for the same session — and
// the emission order is fixed. Emotion percentages are against the count of
// frames with a detected emotion; head-down is a raw count compared against
// a fraction of that same total. Missing categories count as zero.
func (t AlertThresholds) Evaluate(pcts map[Category]float64, counts PostureCounts, totalFrames int) []Alert {
	alerts := []Alert{}
	if pcts[EmotionSad] > t.SadPct {
		alerts = append(alerts, Alert{
			Type:     AlertHighSadness,
			Severity: SeverityMedium,
			Message:  "Elevated sadness detected",
		})
	}
	if pcts[EmotionFear] > t.FearPct {
		alerts = append(alerts, Alert{
			Type:     AlertHighAnxiety,
			Severity: SeverityMedium,
			Message:  "Elevated anxiety detected",
		})
	}
	if pcts[EmotionAngry] > t.AngryPct {
		alerts = append(alerts, Alert{
			Type:     AlertHighAnger,
			Severity: SeverityMedium,
			Message:  "Elevated irritability detected",
		})
	}
	if float64(counts.HeadDown) > float64(totalFrames)*t.HeadDownRatio {
		alerts = append(alerts, Alert{
			Type:     AlertDepressivePosture,
			Severity: SeverityLow,
			Message:  "Frequent depressive posture",
		})
	}
	return alerts
}

// EvaluateAlerts applies the default thresholds.
func EvaluateAlerts(pcts map[Category]float64, counts PostureCounts, totalFrames int) []Alert {
	return DefaultAlertThresholds().Evaluate(pcts, counts, totalFrames)
}
