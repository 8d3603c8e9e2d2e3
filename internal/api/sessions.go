package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mirador-data/behavior.report/internal/db"
	"github.com/mirador-data/behavior.report/internal/httputil"
)

// listPersonSessions returns a person's sessions, newest first. The
// optional limit query parameter caps the list.
func (s *Server) listPersonSessions(w http.ResponseWriter, r *http.Request) {
	personID := r.PathValue("person_id")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	sessions, err := s.db.ListSessions(personID, limit)
	if err != nil {
		httputil.InternalServerError(w, "could not list sessions")
		return
	}
	if sessions == nil {
		sessions = []db.Session{}
	}
	httputil.WriteJSONOK(w, map[string]any{
		"person_id": personID,
		"sessions":  sessions,
	})
}

type sessionDetailResponse struct {
	Session         *db.Session        `json:"session"`
	DurationSeconds *float64           `json:"duration_seconds"`
	EmotionCounts   map[string]int     `json:"emotion_counts"`
	PostureCounts   map[string]int     `json:"posture_counts"`
	Alerts          []db.BehaviorAlert `json:"alerts"`
	Live            bool               `json:"live"`
}

// sessionDetail returns one session row plus its recorded counts and
// alerts. A session still in the live registry is marked as such.
func (s *Server) sessionDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session_id")

	sess, err := s.db.GetSession(id)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "session not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, "could not load session")
		return
	}

	emotionCounts, err := s.db.SessionEmotionCounts(id)
	if err != nil {
		httputil.InternalServerError(w, "could not load emotion counts")
		return
	}
	headDown, hunched, handsOnFace, err := s.db.SessionPostureCounts(id)
	if err != nil {
		httputil.InternalServerError(w, "could not load posture counts")
		return
	}
	alerts, err := s.db.SessionAlerts(id)
	if err != nil {
		httputil.InternalServerError(w, "could not load alerts")
		return
	}
	if alerts == nil {
		alerts = []db.BehaviorAlert{}
	}

	live := false
	if s.sessions != nil {
		_, err := s.sessions.Get(id)
		live = err == nil
	}

	httputil.WriteJSONOK(w, sessionDetailResponse{
		Session:         sess,
		DurationSeconds: sess.Duration(),
		EmotionCounts:   emotionCounts,
		PostureCounts: map[string]int{
			"head_down":     headDown,
			"hunched":       hunched,
			"hands_on_face": handsOnFace,
		},
		Alerts: alerts,
		Live:   live,
	})
}

// personReport builds the cross-session behavior report.
func (s *Server) personReport(w http.ResponseWriter, r *http.Request) {
	personID := r.PathValue("person_id")

	report, err := s.db.BuildBehaviorReport(personID)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "no sessions recorded for this person")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, "could not build report")
		return
	}
	httputil.WriteJSONOK(w, report)
}

// listPersonAlerts returns a person's alerts, optionally narrowed to the
// unreviewed ones with ?unreviewed=1.
func (s *Server) listPersonAlerts(w http.ResponseWriter, r *http.Request) {
	personID := r.PathValue("person_id")
	unreviewedOnly := r.URL.Query().Get("unreviewed") == "1"

	alerts, err := s.db.ListAlerts(personID, unreviewedOnly)
	if err != nil {
		httputil.InternalServerError(w, "could not list alerts")
		return
	}
	if alerts == nil {
		alerts = []db.BehaviorAlert{}
	}
	httputil.WriteJSONOK(w, map[string]any{
		"person_id": personID,
		"alerts":    alerts,
	})
}

// reviewAlert marks one alert as reviewed.
func (s *Server) reviewAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("alert_id"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "invalid alert id")
		return
	}

	switch err := s.db.ReviewAlert(id); {
	case errors.Is(err, db.ErrNotFound):
		httputil.NotFound(w, "alert not found")
	case err != nil:
		httputil.InternalServerError(w, "could not update alert")
	default:
		httputil.WriteJSONOK(w, map[string]string{"message": "alert marked as reviewed"})
	}
}

// dashboardStats returns the system-wide counters.
func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.BuildDashboardStats()
	if err != nil {
		httputil.InternalServerError(w, "could not build stats")
		return
	}
	httputil.WriteJSONOK(w, map[string]any{
		"stats":         stats,
		"live_sessions": s.sessions.Active(),
	})
}
