// Package inference implements the vision model interfaces against HTTP
// inference sidecars: a DeepFace-style facial-emotion service and a
// YOLO-pose-style keypoint detector. The emotion service takes POST
// {url}/analyze with {"image": <b64 jpeg>, "actions": [...]} and answers
// dominant emotion, per-category scores, and optional demographics; the
// pose service takes POST {url}/pose with the same image field and answers
// per-person COCO-17 keypoint lists, with undetected points at or below
// zero. A response reporting no face or no persons is a normal outcome,
// not a fault.
//
// The sidecars are expected to bound their own inference latency; this
// package only applies an overall per-request HTTP timeout.
package inference
