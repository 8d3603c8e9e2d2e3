package inference

import (
	"log"
	"sync"
	"time"

	"github.com/mirador-data/behavior.report/internal/httputil"
	"github.com/mirador-data/behavior.report/internal/vision"
)

// Models bundles the two shared model handles. The handles are read-only
// after construction; concurrent inference calls are issued without further
// locking (both sidecars serve concurrent requests).
type Models struct {
	Emotion vision.EmotionClassifier
	Pose    vision.PoseEstimator
}

// Loader builds the process-wide model handle lazily, at most once. Clients
// may race on Get; only the first caller pays the construction cost, and a
// construction error is sticky (the process keeps reporting it rather than
// retrying a half-built handle).
type Loader struct {
	once   sync.Once
	build  func() (*Models, error)
	models *Models
	err    error
}

// NewLoader wraps a build function in a once-only loader.
func NewLoader(build func() (*Models, error)) *Loader {
	return &Loader{build: build}
}

// Get returns the shared model handle, constructing it on first use.
func (l *Loader) Get() (*Models, error) {
	l.once.Do(func() {
		start := time.Now()
		l.models, l.err = l.build()
		if l.err != nil {
			log.Printf("[inference] model construction failed: %v", l.err)
			return
		}
		log.Printf("[inference] models ready in %v", time.Since(start))
	})
	return l.models, l.err
}

// NewSidecarLoader builds a loader over the HTTP sidecar clients at the
// given base URLs, sharing one tuned HTTP client between them.
func NewSidecarLoader(emotionURL, poseURL string, timeout time.Duration) *Loader {
	return NewLoader(func() (*Models, error) {
		c := httputil.NewSidecarClient(timeout)
		return &Models{
			Emotion: NewEmotionClient(emotionURL, c),
			Pose:    NewPoseClient(poseURL, c),
		}, nil
	})
}
