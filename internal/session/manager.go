// Package session coordinates live analysis sessions: one aggregator and
// analyzer per person stream, a registry for lookup by id, and persistence
// of records, summaries and alerts.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mirador-data/behavior.report/internal/db"
	"github.com/mirador-data/behavior.report/internal/inference"
	"github.com/mirador-data/behavior.report/internal/monitoring"
	"github.com/mirador-data/behavior.report/internal/vision"
)

// ErrSessionNotFound is returned when a session id is not in the registry.
// Finalized sessions leave the registry, so a recently ended id reports
// this too.
var ErrSessionNotFound = errors.New("session not found")

// Store is the persistence surface the manager needs. *db.DB satisfies it.
type Store interface {
	InsertSession(s *db.Session) error
	UpdateSessionProgress(id string, totalFrames int) error
	CompleteSession(id string, endedAt time.Time, overallState string, totalFrames int) error
	InsertEmotionRecord(sessionID, emotion string, scores map[string]float64, recordedAt time.Time) error
	InsertPostureRecord(sessionID string, headDown, hunched, handsOnFace bool, recordedAt time.Time) error
	InsertAlert(a *db.BehaviorAlert) error
}

// AlertSink receives alerts as sessions finalize. Publishing is best-effort;
// a sink failure never blocks or fails the finalize.
type AlertSink interface {
	PublishAlert(personID, sessionID string, a vision.Alert) error
}

// Config wires a Manager. Store and Models are required; everything else
// has working defaults.
type Config struct {
	Store  Store
	Models *inference.Loader

	Heuristics vision.HeuristicParams
	Thresholds vision.AlertThresholds

	// Working raster size handed to the emotion classifier. Zero means the
	// analyzer defaults.
	WorkingWidth  int
	WorkingHeight int

	// Sink, when non-nil, is notified of every alert raised at finalize.
	Sink AlertSink

	// Metrics, when non-nil, receives the per-frame and lifecycle counters.
	Metrics *monitoring.Metrics

	// FlushEvery controls how often (in processed frames) a live session's
	// running frame count is flushed to the store. Default 10.
	FlushEvery int

	Now func() time.Time
}

// Manager owns the registry of live sessions. Lookup and registration are
// guarded by an RWMutex; per-frame work happens inside each Session under
// its own lock, so distinct sessions analyze in parallel.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
}

// NewManager creates a session manager.
func NewManager(cfg Config) *Manager {
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 10
	}
	if cfg.Thresholds == (vision.AlertThresholds{}) {
		cfg.Thresholds = vision.DefaultAlertThresholds()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

// Start opens a new session for a person and registers it. The model handle
// is resolved here, so the first session of the process pays the one-time
// model construction cost.
func (m *Manager) Start(personID string) (*Session, error) {
	models, err := m.cfg.Models.Get()
	if err != nil {
		return nil, err
	}

	now := m.cfg.Now()
	s := &Session{
		id:        uuid.New().String(),
		personID:  personID,
		startedAt: now,
		manager:   m,
		agg:       vision.NewSessionAggregator(now),
	}
	s.agg.SetThresholds(m.cfg.Thresholds)
	s.analyzer = vision.NewAnalyzer(vision.AnalyzerConfig{
		Emotion:       models.Emotion,
		Pose:          models.Pose,
		Heuristics:    m.cfg.Heuristics,
		WorkingWidth:  m.cfg.WorkingWidth,
		WorkingHeight: m.cfg.WorkingHeight,
		OnModelFault:  m.countModelFault,
		Now:           m.cfg.Now,
	})

	if err := m.cfg.Store.InsertSession(&db.Session{
		ID:        s.id,
		PersonID:  s.personID,
		StartedAt: now,
	}); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	if mm := m.cfg.Metrics; mm != nil {
		mm.SessionsStarted.Add(1)
		mm.ActiveSessions.Add(1)
	}
	monitoring.Logf("[session] started %s for person %s", s.id, personID)
	return s, nil
}

// Get returns the live session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Finalize ends the live session with the given id.
func (m *Manager) Finalize(id string) (vision.Summary, error) {
	s, err := m.Get(id)
	if err != nil {
		return vision.Summary{}, err
	}
	return s.Finalize()
}

// Shutdown finalizes every live session. Used on process exit so partial
// sessions still land in the store.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.RUnlock()

	for _, s := range live {
		if _, err := s.Finalize(); err != nil {
			monitoring.Logf("[session] shutdown finalize %s: %v", s.ID(), err)
		}
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	_, present := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if present && m.cfg.Metrics != nil {
		m.cfg.Metrics.ActiveSessions.Add(-1)
		m.cfg.Metrics.SessionsFinalized.Add(1)
	}
}

func (m *Manager) countModelFault(stage string, err error) {
	mm := m.cfg.Metrics
	if mm == nil {
		return
	}
	switch stage {
	case "emotion":
		mm.EmotionFaults.Add(1)
	case "pose":
		mm.PoseFaults.Add(1)
	}
}
