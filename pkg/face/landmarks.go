// Package face turns facial landmark geometry into mood scores.
//
// Each anatomical region (mouth, eyes, eyebrows) is scored by counting how
// many of a small set of threshold tests hold. Enough passing tests yields
// a high score driven by the measured value; otherwise the region reports a
// fixed low score. No single noisy landmark can veto a mood.
package face

import "github.com/teslashibe/go-vibewave/pkg/geometry"

// Region is an ordered set of normalized points outlining one facial feature.
type Region []geometry.Point

// Available reports whether the detector produced this region at all.
func (r Region) Available() bool {
	return len(r) > 0
}

// Landmarks holds the named regions of one detected face. A nil region means
// the detector did not produce it for this frame.
//
// Point order follows the usual face-landmark convention: lips start at the
// left corner and walk the upper lip first, eyes walk the upper lid first,
// eyebrows run from the outer end to the inner end, and the nose region ends
// at the tip.
type Landmarks struct {
	OuterLips    Region `json:"outer_lips,omitempty"`
	InnerLips    Region `json:"inner_lips,omitempty"`
	LeftEye      Region `json:"left_eye,omitempty"`
	RightEye     Region `json:"right_eye,omitempty"`
	LeftPupil    Region `json:"left_pupil,omitempty"`
	RightPupil   Region `json:"right_pupil,omitempty"`
	LeftEyebrow  Region `json:"left_eyebrow,omitempty"`
	RightEyebrow Region `json:"right_eyebrow,omitempty"`
	Nose         Region `json:"nose,omitempty"`
}

// Empty reports whether no region is available.
func (l *Landmarks) Empty() bool {
	if l == nil {
		return true
	}
	for _, r := range []Region{
		l.OuterLips, l.InnerLips, l.LeftEye, l.RightEye, l.LeftPupil,
		l.RightPupil, l.LeftEyebrow, l.RightEyebrow, l.Nose,
	} {
		if r.Available() {
			return false
		}
	}
	return true
}
