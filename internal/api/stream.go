package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mirador-data/behavior.report/internal/monitoring"
	"github.com/mirador-data/behavior.report/internal/vision"
)

// Streaming wire messages. Incoming frames and control messages share one
// envelope; outgoing messages flatten their payload next to the type tag,
// matching what the mobile client already parses.
type wsInbound struct {
	Type  string `json:"type"`
	Image string `json:"image,omitempty"`
}

type wsSessionStarted struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type wsAnalysisResult struct {
	Type string `json:"type"`
	vision.FrameResult
}

type wsMetrics struct {
	Type string `json:"type"`
	vision.Metrics
}

type wsSessionEnded struct {
	Type    string         `json:"type"`
	Metrics vision.Metrics `json:"metrics"`
	State   string         `json:"overall_state"`
}

type wsError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// handleStream runs one analysis session over a WebSocket. The client sends
// frame/get_metrics/stop messages; the session finalizes on stop or on
// disconnect, whichever comes first. A frame that fails to process is
// answered with an error message and the stream continues.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	personID := r.PathValue("person_id")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		monitoring.Logf("[ws] accept for person %s: %v", personID, err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	sess, err := s.sessions.Start(personID)
	if err != nil {
		monitoring.Logf("[ws] start session for person %s: %v", personID, err)
		wsjson.Write(ctx, conn, wsError{Type: "error", Message: "could not start analysis session"})
		conn.Close(websocket.StatusInternalError, "session start failed")
		return
	}
	// Disconnects at any point still land the session in the store.
	defer sess.Finalize()

	if err := wsjson.Write(ctx, conn, wsSessionStarted{
		Type:      "session_started",
		SessionID: sess.ID(),
		Message:   "Connection established. Ready for analysis.",
	}); err != nil {
		return
	}

	for {
		var msg wsInbound
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return
			}
			if errors.Is(err, context.Canceled) {
				return
			}
			monitoring.Logf("[ws] read on session %s: %v", sess.ID(), err)
			return
		}

		switch msg.Type {
		case "frame":
			result, err := sess.ProcessFrame(ctx, msg.Image)
			if err != nil {
				// Non-fatal: report and keep the stream open.
				if werr := wsjson.Write(ctx, conn, wsError{Type: "error", Message: err.Error()}); werr != nil {
					return
				}
				continue
			}
			if err := wsjson.Write(ctx, conn, wsAnalysisResult{Type: "analysis_result", FrameResult: result}); err != nil {
				return
			}

		case "get_metrics":
			if err := wsjson.Write(ctx, conn, wsMetrics{Type: "metrics", Metrics: sess.Metrics()}); err != nil {
				return
			}

		case "stop":
			summary, err := sess.Finalize()
			if err != nil {
				monitoring.Logf("[ws] finalize session %s: %v", sess.ID(), err)
			}
			wsjson.Write(ctx, conn, wsSessionEnded{
				Type:    "session_ended",
				Metrics: summary.Metrics,
				State:   summary.OverallState,
			})
			conn.Close(websocket.StatusNormalClosure, "session ended")
			return

		default:
			// Unknown message types are ignored so client protocol
			// additions don't break older servers.
		}
	}
}
