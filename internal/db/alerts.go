package db

import (
	"fmt"
	"time"
)

// BehaviorAlert is one threshold alert raised when a session finalized.
type BehaviorAlert struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	PersonID  string    `json:"person_id"`
	AlertType string    `json:"alert_type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Reviewed  bool      `json:"reviewed"`
}

// InsertAlert stores one alert and fills in its assigned id.
func (db *DB) InsertAlert(a *BehaviorAlert) error {
	res, err := db.Exec(
		`INSERT INTO behavior_alerts (session_id, person_id, alert_type, severity, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.PersonID, a.AlertType, a.Severity, a.Message, a.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert alert %s: %w", a.AlertType, err)
	}
	a.ID, err = res.LastInsertId()
	return err
}

// ListAlerts returns a person's alerts, newest first. unreviewedOnly narrows
// the list to alerts nobody has looked at yet.
func (db *DB) ListAlerts(personID string, unreviewedOnly bool) ([]BehaviorAlert, error) {
	q := `SELECT id, session_id, person_id, alert_type, severity, message, created_at, reviewed
	      FROM behavior_alerts WHERE person_id = ?`
	if unreviewedOnly {
		q += ` AND reviewed = 0`
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.Query(q, personID)
	if err != nil {
		return nil, fmt.Errorf("list alerts for %s: %w", personID, err)
	}
	defer rows.Close()

	var out []BehaviorAlert
	for rows.Next() {
		var a BehaviorAlert
		if err := rows.Scan(&a.ID, &a.SessionID, &a.PersonID, &a.AlertType, &a.Severity, &a.Message, &a.CreatedAt, &a.Reviewed); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SessionAlerts returns the alerts raised by one session, in insertion order.
func (db *DB) SessionAlerts(sessionID string) ([]BehaviorAlert, error) {
	rows, err := db.Query(
		`SELECT id, session_id, person_id, alert_type, severity, message, created_at, reviewed
		 FROM behavior_alerts WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("alerts for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []BehaviorAlert
	for rows.Next() {
		var a BehaviorAlert
		if err := rows.Scan(&a.ID, &a.SessionID, &a.PersonID, &a.AlertType, &a.Severity, &a.Message, &a.CreatedAt, &a.Reviewed); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ReviewAlert marks one alert as reviewed. Returns ErrNotFound for an
// unknown id.
func (db *DB) ReviewAlert(id int64) error {
	res, err := db.Exec(`UPDATE behavior_alerts SET reviewed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("review alert %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
