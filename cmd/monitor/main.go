// Command monitor runs the frame analysis pipeline over a directory of
// still images and prints a per-frame readout followed by the session
// summary. Useful for tuning heuristics against recorded footage without
// standing up the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mirador-data/behavior.report/internal/config"
	"github.com/mirador-data/behavior.report/internal/inference"
	"github.com/mirador-data/behavior.report/internal/vision"
)

var (
	framesDir  = flag.String("frames", "", "Directory of frame images (jpg/png), analyzed in name order")
	devMode    = flag.Bool("dev", false, "Use canned models instead of inference sidecars")
	tuningPath = flag.String("tuning", config.DefaultConfigPath, "Path to the tuning JSON file")
	services   = flag.String("services", config.DefaultServicesPath, "Path to the sidecar services YAML file")
	verbose    = flag.Bool("verbose", false, "Enable per-frame trace logging")
)

func main() {
	flag.Parse()

	if *framesDir == "" {
		log.Fatal("-frames directory is required")
	}

	if *verbose {
		vision.SetLogWriters(vision.LogWriters{Ops: os.Stderr, Diag: os.Stderr, Trace: os.Stderr})
	} else {
		vision.SetLogWriters(vision.LogWriters{Ops: os.Stderr})
	}

	tuning, err := config.LoadTuningConfig(*tuningPath)
	if err != nil {
		log.Printf("tuning config unavailable (%v), using defaults", err)
		tuning = config.EmptyTuningConfig()
	}

	var loader *inference.Loader
	if *devMode {
		loader = inference.NewStaticLoader()
	} else {
		svc, err := config.LoadServices(*services)
		if err != nil {
			log.Fatalf("failed to load services config: %v", err)
		}
		loader = inference.NewSidecarLoader(svc.Emotion.URL, svc.Pose.URL, svc.Timeout())
	}
	models, err := loader.Get()
	if err != nil {
		log.Fatalf("failed to load models: %v", err)
	}

	analyzer := vision.NewAnalyzer(vision.AnalyzerConfig{
		Emotion:       models.Emotion,
		Pose:          models.Pose,
		Heuristics:    tuning.Heuristics(),
		WorkingWidth:  tuning.GetWorkingWidth(),
		WorkingHeight: tuning.GetWorkingHeight(),
	})

	frames, err := listFrames(*framesDir)
	if err != nil {
		log.Fatalf("failed to list frames: %v", err)
	}
	if len(frames) == 0 {
		log.Fatalf("no frame images found in %s", *framesDir)
	}

	agg := vision.NewSessionAggregator(time.Now())
	agg.SetThresholds(tuning.Thresholds())

	ctx := context.Background()
	for _, path := range frames {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		img, err := vision.DecodeImageBytes(raw)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}

		result := analyzer.Analyze(ctx, img)
		agg.Fold(result)

		emotion := string(result.Emotion)
		if emotion == "" {
			emotion = "-"
		}
		fmt.Printf("%-30s emotion=%-9s state=%-9s flags=%s\n",
			filepath.Base(path), emotion, result.OverallState, flagString(result.PostureFlags))
	}

	printSummary(agg.Finalize())
}

// listFrames returns the directory's image files sorted by name, which is
// the capture order for numbered frame dumps.
func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var frames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png", ".gif":
			frames = append(frames, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(frames)
	return frames, nil
}

func flagString(f vision.PostureFlags) string {
	var parts []string
	if f.HeadDown {
		parts = append(parts, "head_down")
	}
	if f.Hunched {
		parts = append(parts, "hunched")
	}
	if f.HandsOnFace {
		parts = append(parts, "hands_on_face")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

func printSummary(summary vision.Summary) {
	fmt.Println()
	fmt.Printf("session state: %s (%d classified frames)\n", summary.OverallState, summary.TotalFrames)

	cats := make([]string, 0, len(summary.EmotionPercentages))
	for cat := range summary.EmotionPercentages {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)
	for _, cat := range cats {
		fmt.Printf("  %-10s %5.1f%%\n", cat, summary.EmotionPercentages[vision.Category(cat)])
	}

	pc := summary.PostureCounts
	fmt.Printf("  posture: head_down=%d hunched=%d hands_on_face=%d\n", pc.HeadDown, pc.Hunched, pc.HandsOnFace)

	if len(summary.Alerts) == 0 {
		fmt.Println("no alerts")
		return
	}
	for _, a := range summary.Alerts {
		fmt.Printf("ALERT [%s] %s: %s\n", a.Severity, a.Type, a.Message)
	}
}
