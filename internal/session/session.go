package session

import (
	"context"
	"sync"
	"time"

	"github.com/mirador-data/behavior.report/internal/db"
	"github.com/mirador-data/behavior.report/internal/monitoring"
	"github.com/mirador-data/behavior.report/internal/vision"
)

// Session is one live analysis stream. All frame and lifecycle work runs
// under the session lock, so frames within a session are processed strictly
// one at a time in arrival order while other sessions proceed in parallel.
type Session struct {
	id        string
	personID  string
	startedAt time.Time
	manager   *Manager
	analyzer  *vision.Analyzer

	mu        sync.Mutex
	agg       *vision.SessionAggregator
	processed int
	done      bool
	summary   vision.Summary
}

func (s *Session) ID() string           { return s.id }
func (s *Session) PersonID() string     { return s.personID }
func (s *Session) StartedAt() time.Time { return s.startedAt }

// ProcessFrame decodes and analyzes one frame payload and folds the result
// into the session. A payload that fails to decode is reported to the
// caller and leaves the session untouched; the next frame proceeds
// normally. Frames arriving after finalize are dropped.
func (s *Session) ProcessFrame(ctx context.Context, payload string) (vision.FrameResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return vision.FrameResult{}, ErrSessionNotFound
	}

	img, err := vision.DecodeFrame(payload)
	if err != nil {
		if mm := s.manager.cfg.Metrics; mm != nil {
			mm.DecodeFailures.Add(1)
		}
		return vision.FrameResult{}, err
	}

	result := s.analyzer.Analyze(ctx, img)
	s.agg.Fold(result)
	s.processed++
	if mm := s.manager.cfg.Metrics; mm != nil {
		mm.FramesAnalyzed.Add(1)
	}

	s.persistFrame(result)
	return result, nil
}

// persistFrame flushes every FlushEvery frames: the latest frame's records
// plus the running frame count. Intermediate frames stay in-memory only, so
// record rows sample the stream rather than mirror it. Store failures are
// logged and swallowed: losing a row must not stall the stream.
func (s *Session) persistFrame(r vision.FrameResult) {
	if s.processed%s.manager.cfg.FlushEvery != 0 {
		return
	}
	store := s.manager.cfg.Store

	if r.Emotion != "" {
		scores := make(map[string]float64, len(r.EmotionScores))
		for cat, v := range r.EmotionScores {
			scores[string(cat)] = v
		}
		if err := store.InsertEmotionRecord(s.id, string(r.Emotion), scores, r.Timestamp); err != nil {
			monitoring.Logf("[session] %s: emotion record: %v", s.id, err)
		}
	}
	if r.PostureFlags.Any() {
		if err := store.InsertPostureRecord(s.id, r.HeadDown, r.Hunched, r.HandsOnFace, r.Timestamp); err != nil {
			monitoring.Logf("[session] %s: posture record: %v", s.id, err)
		}
	}
	if err := store.UpdateSessionProgress(s.id, s.processed); err != nil {
		monitoring.Logf("[session] %s: progress flush: %v", s.id, err)
	}
}

// Metrics returns the session's current running statistics. Safe to call
// at any point in the lifecycle.
func (s *Session) Metrics() vision.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return s.summary.Metrics
	}
	return s.agg.Metrics()
}

// Finalize closes the session: it computes the summary, persists the
// completed row and the raised alerts, publishes alerts to the sink, and
// removes the session from the registry. Finalize is idempotent; concurrent
// or repeated calls observe the same summary.
func (s *Session) Finalize() (vision.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return s.summary, nil
	}
	s.done = true
	s.summary = s.agg.Finalize()

	cfg := s.manager.cfg
	endedAt := cfg.Now()
	if err := cfg.Store.CompleteSession(s.id, endedAt, s.summary.OverallState, s.processed); err != nil {
		monitoring.Logf("[session] %s: complete: %v", s.id, err)
	}

	for _, a := range s.summary.Alerts {
		if err := cfg.Store.InsertAlert(&db.BehaviorAlert{
			SessionID: s.id,
			PersonID:  s.personID,
			AlertType: string(a.Type),
			Severity:  string(a.Severity),
			Message:   a.Message,
			CreatedAt: endedAt,
		}); err != nil {
			monitoring.Logf("[session] %s: insert alert %s: %v", s.id, a.Type, err)
		}
		if cfg.Metrics != nil {
			cfg.Metrics.AlertsRaised.Add(1)
		}
		if cfg.Sink != nil {
			if err := cfg.Sink.PublishAlert(s.personID, s.id, a); err != nil {
				monitoring.Logf("[session] %s: publish alert %s: %v", s.id, a.Type, err)
			}
		}
	}

	s.manager.remove(s.id)
	monitoring.Logf("[session] finalized %s: state=%s frames=%d alerts=%d",
		s.id, s.summary.OverallState, s.processed, len(s.summary.Alerts))
	return s.summary, nil
}
