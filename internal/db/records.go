package db

import (
	"encoding/json"
	"fmt"
	"time"
)

// InsertEmotionRecord stores one frame's classified emotion. Scores may be
// nil; when present they are kept as JSON for later inspection.
func (db *DB) InsertEmotionRecord(sessionID, emotion string, scores map[string]float64, recordedAt time.Time) error {
	var scoresJSON any
	if scores != nil {
		b, err := json.Marshal(scores)
		if err != nil {
			return fmt.Errorf("marshal emotion scores: %w", err)
		}
		scoresJSON = string(b)
	}
	_, err := db.Exec(
		`INSERT INTO emotion_records (session_id, emotion, scores, recorded_at)
		 VALUES (?, ?, ?, ?)`,
		sessionID, emotion, scoresJSON, recordedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert emotion record: %w", err)
	}
	return nil
}

// InsertPostureRecord stores one frame's posture flags. Only frames with at
// least one flag raised are worth a row; the caller enforces that.
func (db *DB) InsertPostureRecord(sessionID string, headDown, hunched, handsOnFace bool, recordedAt time.Time) error {
	_, err := db.Exec(
		`INSERT INTO posture_records (session_id, head_down, hunched, hands_on_face, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, headDown, hunched, handsOnFace, recordedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert posture record: %w", err)
	}
	return nil
}

// SessionEmotionCounts returns how many frames of each emotion a session
// recorded.
func (db *DB) SessionEmotionCounts(sessionID string) (map[string]int, error) {
	rows, err := db.Query(
		`SELECT emotion, COUNT(*) FROM emotion_records
		 WHERE session_id = ? GROUP BY emotion`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("emotion counts for %s: %w", sessionID, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var emotion string
		var n int
		if err := rows.Scan(&emotion, &n); err != nil {
			return nil, err
		}
		counts[emotion] = n
	}
	return counts, rows.Err()
}

// SessionPostureCounts returns how many recorded frames raised each posture
// flag in a session.
func (db *DB) SessionPostureCounts(sessionID string) (headDown, hunched, handsOnFace int, err error) {
	row := db.QueryRow(
		`SELECT COALESCE(SUM(head_down), 0), COALESCE(SUM(hunched), 0), COALESCE(SUM(hands_on_face), 0)
		 FROM posture_records WHERE session_id = ?`, sessionID)
	if err := row.Scan(&headDown, &hunched, &handsOnFace); err != nil {
		return 0, 0, 0, fmt.Errorf("posture counts for %s: %w", sessionID, err)
	}
	return headDown, hunched, handsOnFace, nil
}
