package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mirador-data/behavior.report/internal/db"
	"github.com/mirador-data/behavior.report/internal/httputil"
)

// chartEmotions fixes the bar order so two sessions render comparably.
var chartEmotions = []string{"angry", "disgust", "fear", "happy", "sad", "surprise", "neutral"}

// sessionChart renders a session's emotion distribution as an HTML bar
// chart. Debugging and review aid, not part of the client API.
func (s *Server) sessionChart(w http.ResponseWriter, r *http.Request) {
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

	counts, err := s.db.SessionEmotionCounts(id)
	if err != nil {
		httputil.InternalServerError(w, "could not load emotion counts")
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	data := make([]opts.BarData, 0, len(chartEmotions))
	for _, emotion := range chartEmotions {
		pct := 0.0
		if total > 0 {
			pct = float64(counts[emotion]) / float64(total) * 100
		}
		data = append(data, opts.BarData{Value: pct})
	}

	state := "(live)"
	if sess.OverallState != nil {
		state = *sess.OverallState
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Session Emotions", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Emotion distribution",
			Subtitle: fmt.Sprintf("session=%s person=%s state=%s frames=%d", sess.ID, sess.PersonID, state, total),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "% of classified frames", Max: 100}),
	)
	bar.SetXAxis(chartEmotions)
	bar.AddSeries("emotions", data)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
