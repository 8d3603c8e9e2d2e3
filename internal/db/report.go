package db

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Tendency levels assigned by the behavior report.
const (
	TendencyUrgent    = "urgent_attention"
	TendencyAttention = "needs_attention"
	TendencyStable    = "stable"
)

// Recommendation is the guidance block attached to a behavior report.
type Recommendation struct {
	Level       string   `json:"level"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// BehaviorReport summarises a person's emotional trend across all of their
// completed sessions.
type BehaviorReport struct {
	PersonID          string             `json:"person_id"`
	TotalSessions     int                `json:"total_sessions"`
	AverageEmotions   map[string]float64 `json:"average_emotions"`
	StateDistribution map[string]int     `json:"state_distribution"`
	AlertSummary      map[string]int     `json:"alert_summary"`
	OverallTendency   string             `json:"overall_tendency"`
	Recommendation    Recommendation     `json:"recommendation"`
}

// BuildBehaviorReport assembles the cross-session report for one person.
// Returns ErrNotFound when the person has no sessions at all.
func (db *DB) BuildBehaviorReport(personID string) (*BehaviorReport, error) {
	sessions, err := db.ListSessions(personID, 0)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNotFound
	}

	// Per-session emotion percentages, then mean across sessions. A session
	// where no face was ever classified contributes zeros, mirroring how the
	// trend would read to a reviewer scanning session summaries.
	perEmotion := make(map[string][]float64)
	stateDist := make(map[string]int)
	for _, s := range sessions {
		counts, err := db.SessionEmotionCounts(s.ID)
		if err != nil {
			return nil, err
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		for _, emotion := range reportEmotions {
			pct := 0.0
			if total > 0 {
				pct = float64(counts[emotion]) / float64(total) * 100
			}
			perEmotion[emotion] = append(perEmotion[emotion], pct)
		}
		if s.OverallState != nil {
			stateDist[*s.OverallState]++
		}
	}

	avg := make(map[string]float64, len(reportEmotions))
	for _, emotion := range reportEmotions {
		avg[emotion] = stat.Mean(perEmotion[emotion], nil)
	}

	alerts, err := db.ListAlerts(personID, false)
	if err != nil {
		return nil, err
	}
	alertSummary := make(map[string]int)
	for _, a := range alerts {
		alertSummary[a.AlertType]++
	}

	tendency := classifyTendency(avg["sad"], avg["fear"])

	return &BehaviorReport{
		PersonID:          personID,
		TotalSessions:     len(sessions),
		AverageEmotions:   avg,
		StateDistribution: stateDist,
		AlertSummary:      alertSummary,
		OverallTendency:   tendency,
		Recommendation:    recommendationFor(tendency),
	}, nil
}

var reportEmotions = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

func classifyTendency(avgSad, avgFear float64) string {
	switch {
	case avgSad > 50 || avgFear > 40:
		return TendencyUrgent
	case avgSad > 35 || avgFear > 25:
		return TendencyAttention
	default:
		return TendencyStable
	}
}

func recommendationFor(tendency string) Recommendation {
	switch tendency {
	case TendencyUrgent:
		return Recommendation{
			Level:   "urgent",
			Message: "Consultation with a mental health specialist is recommended.",
			Suggestions: []string{
				"Seek professional support promptly",
				"Guided relaxation activities",
				"Frequent monitoring and follow-up",
				"Keep family or guardians informed",
			},
		}
	case TendencyAttention:
		return Recommendation{
			Level:   "moderate",
			Message: "Patterns detected that warrant follow-up.",
			Suggestions: []string{
				"Regular recreational activities",
				"Daily physical exercise",
				"Breathing and mindfulness techniques",
				"Weekly check-ins",
			},
		}
	default:
		return Recommendation{
			Level:   "normal",
			Message: "Emotional state within normal parameters.",
			Suggestions: []string{
				"Maintain healthy routines",
				"Continue regular monitoring",
				"Encourage positive activities",
			},
		}
	}
}

// DashboardStats is the system-wide counters block for the overview page.
type DashboardStats struct {
	TotalPersons     int `json:"total_persons"`
	TotalSessions    int `json:"total_sessions"`
	TotalAlerts      int `json:"total_alerts"`
	UnreviewedAlerts int `json:"unreviewed_alerts"`
}

// BuildDashboardStats counts persons, sessions and alerts across the system.
func (db *DB) BuildDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	row := db.QueryRow(`
		SELECT
			(SELECT COUNT(DISTINCT person_id) FROM analysis_sessions),
			(SELECT COUNT(*) FROM analysis_sessions),
			(SELECT COUNT(*) FROM behavior_alerts),
			(SELECT COUNT(*) FROM behavior_alerts WHERE reviewed = 0)`)
	if err := row.Scan(&s.TotalPersons, &s.TotalSessions, &s.TotalAlerts, &s.UnreviewedAlerts); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &s, nil
}
