package vision

import "math"

// COCO-17 keypoint indices as emitted by the pose model. The indices are
// model-defined and fixed; the posture heuristics only consume the nose,
// shoulders and wrists, but the full set is carried so callers can forward
// everything the model produced.
const (
	KeypointNose          = 0
	KeypointLeftEye       = 1
	KeypointRightEye      = 2
	KeypointLeftEar       = 3
	KeypointRightEar      = 4
	KeypointLeftShoulder  = 5
	KeypointRightShoulder = 6
	KeypointLeftElbow     = 7
	KeypointRightElbow    = 8
	KeypointLeftWrist     = 9
	KeypointRightWrist    = 10
	KeypointLeftHip       = 11
	KeypointRightHip      = 12
	KeypointLeftKnee      = 13
	KeypointRightKnee     = 14
	KeypointLeftAnkle     = 15
	KeypointRightAnkle    = 16

	NumKeypoints = 17
)

// Point is a 2D keypoint in image pixel coordinates. Y grows downward.
// The pose model reports undetected landmarks at the non-positive sentinel
// (0,0), so a point is only usable when both coordinates are positive.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Valid reports whether the point was actually detected.
func (p Point) Valid() bool {
	return p.X > 0 && p.Y > 0
}

// DistanceTo returns the Euclidean pixel distance between two points.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Keypoints is one detected person's ordered landmark set. It is usually
// NumKeypoints long, but the accessor tolerates short sets from partial
// detections by treating missing indices as undetected.
type Keypoints []Point

// At returns the keypoint at the model-defined index, or the undetected
// sentinel when the index is out of range.
func (k Keypoints) At(i int) Point {
	if i < 0 || i >= len(k) {
		return Point{}
	}
	return k[i]
}
