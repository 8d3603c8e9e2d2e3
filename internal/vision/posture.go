package vision

// PostureFlags are the boolean behavioural signals derived from one frame's
// pose keypoints. When several persons are detected in a frame, the flags
// are OR-combined: any one person triggering a flag sets it for the frame.
type PostureFlags struct {
	HeadDown    bool `json:"head_down"`
	Hunched     bool `json:"hunched"`
	HandsOnFace bool `json:"hands_on_face"`
}

// Any reports whether at least one flag is set.
func (f PostureFlags) Any() bool {
	return f.HeadDown || f.Hunched || f.HandsOnFace
}

// Or returns the per-flag logical OR of two flag sets.
func (f PostureFlags) Or(g PostureFlags) PostureFlags {
	return PostureFlags{
		HeadDown:    f.HeadDown || g.HeadDown,
		Hunched:     f.Hunched || g.Hunched,
		HandsOnFace: f.HandsOnFace || g.HandsOnFace,
	}
}

// HeuristicParams holds the tunable posture thresholds. Values are loaded
// from config/tuning.defaults.json at startup; the defaults reproduce
// the thresholds the heuristics were originally tuned with.
type HeuristicParams struct {
	// HunchRatio is the shoulder x-distance threshold as a fraction of the
	// frame width. Shoulders closer together than HunchRatio×width read as a
	// collapsed, hunched posture.
	HunchRatio float64

	// HandsOnFaceDistancePx is the wrist-to-nose Euclidean threshold in raw
	// pixels. Known limitation: it is not normalised by resolution, so it
	// only behaves as tuned near ~640 px wide frames. Kept configurable
	// rather than hardcoded, but the default is preserved as-is for
	// behavioural compatibility.
	HandsOnFaceDistancePx float64
}

// DefaultHeuristicParams returns the original field-tuned thresholds.
func DefaultHeuristicParams() HeuristicParams {
	return HeuristicParams{
		HunchRatio:            0.15,
		HandsOnFaceDistancePx: 100,
	}
}

// EvaluatePosture derives the posture flags for one person.
//
// Each flag is gated on its required keypoints being detected:
//   - head_down and hunched need the nose and both shoulders; head_down is
//     true when the nose sits strictly below the shoulder midline (larger y
//     is visually lower), hunched when the shoulders' horizontal distance is
//     strictly under HunchRatio×frameWidth.
//   - hands_on_face is evaluated per wrist against the nose; either wrist
//     strictly inside HandsOnFaceDistancePx sets the flag.
func EvaluatePosture(kp Keypoints, frameWidth int, params HeuristicParams) PostureFlags {
	var flags PostureFlags

	nose := kp.At(KeypointNose)
	leftShoulder := kp.At(KeypointLeftShoulder)
	rightShoulder := kp.At(KeypointRightShoulder)

	if nose.Valid() && leftShoulder.Valid() && rightShoulder.Valid() {
		shoulderMidY := (leftShoulder.Y + rightShoulder.Y) / 2
		if nose.Y > shoulderMidY {
			flags.HeadDown = true
		}

		shoulderDistance := leftShoulder.X - rightShoulder.X
		if shoulderDistance < 0 {
			shoulderDistance = -shoulderDistance
		}
		if shoulderDistance < params.HunchRatio*float64(frameWidth) {
			flags.Hunched = true
		}
	}

	for _, wristIdx := range [2]int{KeypointLeftWrist, KeypointRightWrist} {
		wrist := kp.At(wristIdx)
		if wrist.Valid() && nose.Valid() && wrist.DistanceTo(nose) < params.HandsOnFaceDistancePx {
			flags.HandsOnFace = true
		}
	}

	return flags
}
