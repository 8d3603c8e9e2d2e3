package vision

import "time"

// PostureCounts are the raw per-flag totals across a session's posture
// history. They are counts, not percentages: the alert rules compare them
// against fractions of the emotion-frame total.
type PostureCounts struct {
	HeadDown    int `json:"head_down"`
	Hunched     int `json:"hunched"`
	HandsOnFace int `json:"hands_on_face"`
}

func (c PostureCounts) add(f PostureFlags) PostureCounts {
	if f.HeadDown {
		c.HeadDown++
	}
	if f.Hunched {
		c.Hunched++
	}
	if f.HandsOnFace {
		c.HandsOnFace++
	}
	return c
}

// Metrics is a non-destructive snapshot of a session's running statistics.
type Metrics struct {
	TotalFrames        int                  `json:"total_frames"`
	EmotionPercentages map[Category]float64 `json:"emotion_percentages"`
	PostureCounts      PostureCounts        `json:"posture_counts"`
	Alerts             []Alert              `json:"alerts"`
}

// Summary is the finalized whole-session snapshot.
type Summary struct {
	Metrics
	OverallState string `json:"overall_state"`
}

// SessionAggregator folds a stream of per-frame results into running
// emotion and posture statistics.
//
// It is NOT safe for concurrent use: within a session, frames are folded
// strictly one at a time in arrival order. Distinct sessions own distinct
// aggregators and may run concurrently.
//
// The statistics are kept as running counts rather than an append-only
// result history, so memory stays bounded for long sessions and Metrics is
// cheap to call on every frame.
type SessionAggregator struct {
	startedAt     time.Time
	thresholds    AlertThresholds
	emotionCounts map[Category]int
	totalEmotion  int
	postureCounts PostureCounts
	finalized     bool
}

// NewSessionAggregator creates an aggregator for a session starting now.
func NewSessionAggregator(startedAt time.Time) *SessionAggregator {
	return &SessionAggregator{
		startedAt:     startedAt,
		thresholds:    DefaultAlertThresholds(),
		emotionCounts: make(map[Category]int),
	}
}

// SetThresholds overrides the default alert thresholds. Call before folding.
func (s *SessionAggregator) SetThresholds(t AlertThresholds) {
	s.thresholds = t
}

// StartedAt returns the session start time.
func (s *SessionAggregator) StartedAt() time.Time { return s.startedAt }

// EmotionFrames returns the count of folded frames that carried an emotion.
// This is the denominator for every percentage the aggregator reports.
func (s *SessionAggregator) EmotionFrames() int { return s.totalEmotion }

// Fold accumulates one frame result. Frames without a detected emotion do
// not advance the emotion totals, and frames with no posture signal are not
// recorded in the posture counts — so posture counts end up compared against
// a denominator of emotion frames, not posture-flagged frames. That
// asymmetry is inherited behaviour and deliberate.
//
// Folding into a finalized session is ignored.
func (s *SessionAggregator) Fold(r FrameResult) {
	if s.finalized {
		diagf("fold after finalize ignored")
		return
	}
	if r.Emotion != "" {
		s.emotionCounts[r.Emotion]++
		s.totalEmotion++
	}
	if r.PostureFlags.Any() {
		s.postureCounts = s.postureCounts.add(r.PostureFlags)
	}
}

// Metrics computes the current running statistics. It is non-destructive
// and may be called at any point, including before any frame was folded —
// an empty session yields an all-zero snapshot with no alerts.
func (s *SessionAggregator) Metrics() Metrics {
	if s.totalEmotion == 0 {
		return Metrics{
			EmotionPercentages: map[Category]float64{},
			Alerts:             []Alert{},
		}
	}

	pcts := make(map[Category]float64, len(s.emotionCounts))
	for cat, n := range s.emotionCounts {
		pcts[cat] = float64(n) / float64(s.totalEmotion) * 100
	}

	return Metrics{
		TotalFrames:        s.totalEmotion,
		EmotionPercentages: pcts,
		PostureCounts:      s.postureCounts,
		Alerts:             s.thresholds.Evaluate(pcts, s.postureCounts, s.totalEmotion),
	}
}

// Finalized reports whether Finalize already ran.
func (s *SessionAggregator) Finalized() bool { return s.finalized }

// Finalize computes the closing summary and retires the aggregator. The
// whole-session overall state comes from percentage thresholds — a coarser
// classification than the per-frame one, on purpose. Partial data is valid
// input: a session stopped after zero frames finalizes to a stable, empty
// summary.
func (s *SessionAggregator) Finalize() Summary {
	m := s.Metrics()

	state := SessionStable
	if m.EmotionPercentages[EmotionSad] > s.thresholds.SadPct {
		state = SessionSad
	} else if m.EmotionPercentages[EmotionFear] > s.thresholds.FearPct {
		state = SessionAnxious
	}

	s.finalized = true
	s.emotionCounts = make(map[Category]int)
	s.totalEmotion = 0
	s.postureCounts = PostureCounts{}

	return Summary{Metrics: m, OverallState: state}
}
