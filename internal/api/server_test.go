package api

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/mirador-data/behavior.report/internal/db"
	"github.com/mirador-data/behavior.report/internal/inference"
	"github.com/mirador-data/behavior.report/internal/monitoring"
	"github.com/mirador-data/behavior.report/internal/session"
	"github.com/mirador-data/behavior.report/internal/vision"
)

// newTestServer builds a server over a throwaway database and canned
// models.
func newTestServer(t *testing.T, loader *inference.Loader) (*Server, *db.DB) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if loader == nil {
		loader = inference.NewStaticLoader()
	}
	metrics := monitoring.NewMetrics()
	sessions := session.NewManager(session.Config{
		Store:   database,
		Models:  loader,
		Metrics: metrics,
	})
	return NewServer(Config{
		DB:       database,
		Sessions: sessions,
		Models:   loader,
		Metrics:  metrics,
	}), database
}

// sadLoader answers every frame as sad with the head down.
func sadLoader() *inference.Loader {
	return inference.NewLoader(func() (*inference.Models, error) {
		kp := make(vision.Keypoints, vision.NumKeypoints)
		kp[vision.KeypointNose] = vision.Point{X: 8, Y: 12}
		kp[vision.KeypointLeftShoulder] = vision.Point{X: 5, Y: 8}
		kp[vision.KeypointRightShoulder] = vision.Point{X: 11, Y: 8}
		return &inference.Models{
			Emotion: &inference.StaticEmotion{Result: vision.EmotionResult{
				Dominant: vision.EmotionSad,
				Scores:   map[vision.Category]float64{vision.EmotionSad: 90},
			}},
			Pose: &inference.StaticPose{Persons: []vision.Keypoints{kp}},
		}, nil
	})
}

// framePayload returns one small frame as a base64 PNG.
func framePayload(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 120, B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
