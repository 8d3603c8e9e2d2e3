// Package vision contains the per-frame behavioural analysis core: frame
// decoding, posture heuristics over pose keypoints, the frame analyzer that
// combines the emotion and pose models into one result, the per-session
// aggregator, and the threshold alert rules.
//
// The package is deliberately free of transport and storage concerns. The
// two ML models are consumed through the EmotionClassifier and PoseEstimator
// interfaces so tests (and dev mode) can substitute fakes; the HTTP sidecar
// implementations live in internal/inference.
package vision
