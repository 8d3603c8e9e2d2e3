package vision

import "testing"

// person builds a keypoint set with only the heuristic-relevant landmarks
// populated. Unset landmarks stay at the undetected sentinel.
func person(nose, leftShoulder, rightShoulder, leftWrist, rightWrist Point) Keypoints {
	kp := make(Keypoints, NumKeypoints)
	kp[KeypointNose] = nose
	kp[KeypointLeftShoulder] = leftShoulder
	kp[KeypointRightShoulder] = rightShoulder
	kp[KeypointLeftWrist] = leftWrist
	kp[KeypointRightWrist] = rightWrist
	return kp
}

func TestEvaluatePostureHeadDown(t *testing.T) {
	params := DefaultHeuristicParams()

	tests := []struct {
		name string
		kp   Keypoints
		want bool
	}{
		{
			name: "nose below shoulder midline",
			kp:   person(Point{300, 250}, Point{200, 200}, Point{400, 200}, Point{}, Point{}),
			want: true,
		},
		{
			name: "nose above shoulder midline",
			kp:   person(Point{300, 150}, Point{200, 200}, Point{400, 200}, Point{}, Point{}),
			want: false,
		},
		{
			name: "nose exactly at shoulder midline",
			kp:   person(Point{300, 200}, Point{200, 200}, Point{400, 200}, Point{}, Point{}),
			want: false,
		},
		{
			name: "nose undetected",
			kp:   person(Point{}, Point{200, 200}, Point{400, 200}, Point{}, Point{}),
			want: false,
		},
		{
			name: "left shoulder undetected",
			kp:   person(Point{300, 250}, Point{}, Point{400, 200}, Point{}, Point{}),
			want: false,
		},
		{
			name: "right shoulder undetected",
			kp:   person(Point{300, 250}, Point{200, 200}, Point{}, Point{}, Point{}),
			want: false,
		},
		{
			name: "empty keypoint set",
			kp:   Keypoints{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluatePosture(tt.kp, 640, params)
			if got.HeadDown != tt.want {
				t.Errorf("HeadDown = %v, want %v", got.HeadDown, tt.want)
			}
		})
	}
}

func TestEvaluatePostureHunched(t *testing.T) {
	params := DefaultHeuristicParams()
	const frameWidth = 640 // threshold = 0.15*640 = 96 px

	tests := []struct {
		name           string
		leftX, rightX  float64
		want           bool
	}{
		{name: "shoulders well apart", leftX: 200, rightX: 400, want: false},
		{name: "shoulders collapsed", leftX: 300, rightX: 350, want: true},
		{name: "distance exactly at threshold", leftX: 200, rightX: 296, want: false},
		{name: "distance just under threshold", leftX: 200, rightX: 295.9, want: true},
		{name: "right shoulder left of left shoulder", leftX: 350, rightX: 300, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kp := person(Point{300, 100}, Point{tt.leftX, 200}, Point{tt.rightX, 200}, Point{}, Point{})
			got := EvaluatePosture(kp, frameWidth, params)
			if got.Hunched != tt.want {
				t.Errorf("Hunched = %v, want %v", got.Hunched, tt.want)
			}
		})
	}
}

func TestEvaluatePostureHunchedGatedOnShoulders(t *testing.T) {
	params := DefaultHeuristicParams()

	// Shoulders nearly overlapping but no nose: the guarded block never
	// runs, so hunched stays false.
	kp := person(Point{}, Point{300, 200}, Point{310, 200}, Point{}, Point{})
	if got := EvaluatePosture(kp, 640, params); got.Hunched {
		t.Errorf("Hunched = true for keypoints outside the guarded block")
	}
}

func TestEvaluatePostureHandsOnFace(t *testing.T) {
	params := DefaultHeuristicParams()
	nose := Point{300, 100}

	tests := []struct {
		name       string
		leftWrist  Point
		rightWrist Point
		want       bool
	}{
		{
			name:      "left wrist touching face",
			leftWrist: Point{310, 120},
			want:      true,
		},
		{
			name:       "right wrist touching face",
			rightWrist: Point{290, 130},
			want:       true,
		},
		{
			name:       "both wrists far away",
			leftWrist:  Point{300, 400},
			rightWrist: Point{100, 400},
			want:       false,
		},
		{
			name:      "distance exactly 100",
			leftWrist: Point{400, 100},
			want:      false,
		},
		{
			name:      "distance just under 100",
			leftWrist: Point{399.999, 100},
			want:      true,
		},
		{
			name: "wrists undetected",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kp := person(nose, Point{}, Point{}, tt.leftWrist, tt.rightWrist)
			got := EvaluatePosture(kp, 640, params)
			if got.HandsOnFace != tt.want {
				t.Errorf("HandsOnFace = %v, want %v", got.HandsOnFace, tt.want)
			}
		})
	}
}

func TestEvaluatePostureHandsOnFaceNeedsNose(t *testing.T) {
	params := DefaultHeuristicParams()

	kp := person(Point{}, Point{}, Point{}, Point{10, 10}, Point{10, 10})
	if got := EvaluatePosture(kp, 640, params); got.HandsOnFace {
		t.Errorf("HandsOnFace = true with undetected nose")
	}
}

func TestEvaluatePostureConfigurableThreshold(t *testing.T) {
	params := HeuristicParams{HunchRatio: 0.15, HandsOnFaceDistancePx: 50}

	kp := person(Point{300, 100}, Point{}, Point{}, Point{360, 100}, Point{})
	if got := EvaluatePosture(kp, 640, params); got.HandsOnFace {
		t.Errorf("HandsOnFace = true at 60 px with a 50 px threshold")
	}
	params.HandsOnFaceDistancePx = 70
	if got := EvaluatePosture(kp, 640, params); !got.HandsOnFace {
		t.Errorf("HandsOnFace = false at 60 px with a 70 px threshold")
	}
}

func TestPostureFlagsOr(t *testing.T) {
	a := PostureFlags{HeadDown: true}
	b := PostureFlags{HandsOnFace: true}
	got := a.Or(b)
	want := PostureFlags{HeadDown: true, HandsOnFace: true}
	if got != want {
		t.Errorf("Or = %+v, want %+v", got, want)
	}
	if !got.Any() {
		t.Error("Any = false for set flags")
	}
	if (PostureFlags{}).Any() {
		t.Error("Any = true for zero flags")
	}
}
