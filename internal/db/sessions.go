package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Session is one analysis session row. EndedAt and OverallState stay nil
// until the session is finalized.
type Session struct {
	ID           string     `json:"id"`
	PersonID     string     `json:"person_id"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	OverallState *string    `json:"overall_state"`
	TotalFrames  int        `json:"total_frames"`
}

// Duration returns the session length in seconds, or nil while the session
// is still running.
func (s *Session) Duration() *float64 {
	if s.EndedAt == nil {
		return nil
	}
	d := s.EndedAt.Sub(s.StartedAt).Seconds()
	return &d
}

// InsertSession records a newly started session.
func (db *DB) InsertSession(s *Session) error {
	_, err := db.Exec(
		`INSERT INTO analysis_sessions (id, person_id, started_at, total_frames)
		 VALUES (?, ?, ?, ?)`,
		s.ID, s.PersonID, s.StartedAt.UTC(), s.TotalFrames,
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", s.ID, err)
	}
	return nil
}

// UpdateSessionProgress refreshes the running frame count of a live session.
func (db *DB) UpdateSessionProgress(id string, totalFrames int) error {
	_, err := db.Exec(
		`UPDATE analysis_sessions SET total_frames = ? WHERE id = ?`,
		totalFrames, id,
	)
	if err != nil {
		return fmt.Errorf("update session %s progress: %w", id, err)
	}
	return nil
}

// CompleteSession closes out a session with its final classification.
func (db *DB) CompleteSession(id string, endedAt time.Time, overallState string, totalFrames int) error {
	res, err := db.Exec(
		`UPDATE analysis_sessions SET ended_at = ?, overall_state = ?, total_frames = ?
		 WHERE id = ?`,
		endedAt.UTC(), overallState, totalFrames, id,
	)
	if err != nil {
		return fmt.Errorf("complete session %s: %w", id, err)
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

// GetSession returns one session by id, or ErrNotFound.
func (db *DB) GetSession(id string) (*Session, error) {
	row := db.QueryRow(
		`SELECT id, person_id, started_at, ended_at, overall_state, total_frames
		 FROM analysis_sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// ListSessions returns a person's sessions, newest first. A limit of 0
// means no limit.
func (db *DB) ListSessions(personID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(
		`SELECT id, person_id, started_at, ended_at, overall_state, total_frames
		 FROM analysis_sessions WHERE person_id = ?
		 ORDER BY started_at DESC LIMIT ?`, personID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions for %s: %w", personID, err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*Session, error) {
	var s Session
	var endedAt sql.NullTime
	var state sql.NullString
	if err := r.Scan(&s.ID, &s.PersonID, &s.StartedAt, &endedAt, &state, &s.TotalFrames); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	if state.Valid {
		v := state.String
		s.OverallState = &v
	}
	return &s, nil
}
