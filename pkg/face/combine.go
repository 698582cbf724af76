package face

import "github.com/teslashibe/go-vibewave/pkg/mood"

// Combiner acceptance rules.
const (
	// AcceptThreshold is the weighted score a winner must exceed.
	AcceptThreshold = 0.35

	// FallbackConfidence is reported with Neutral when no mood is accepted.
	FallbackConfidence = 0.3
)

// reliability scales each mood by how dependable its geometric signal is.
var reliability = map[mood.Mood]float64{
	mood.Happy:   1.2,
	mood.Calm:    1.1,
	mood.Angry:   1.0,
	mood.Sad:     0.9,
	mood.Neutral: 0.8,
}

// Reliability returns the weight applied to a mood's score.
func Reliability(m mood.Mood) float64 {
	if w, ok := reliability[m]; ok {
		return w
	}
	return 1
}

// RegionScores merges the sub-scores of every available region into one raw
// score per mood. Regions the detector did not produce contribute nothing.
func RegionScores(l *Landmarks) mood.Scores {
	scores := mood.Scores{}
	if l == nil {
		return scores
	}

	raise := func(m mood.Mood, v float64) {
		if cur, ok := scores[m]; !ok || v > cur {
			scores[m] = v
		}
	}

	if l.OuterLips.Available() && l.InnerLips.Available() {
		ms := AnalyzeMouth(l.OuterLips, l.InnerLips)
		scores[mood.Happy] = ms.Smile
		scores[mood.Sad] = ms.Frown
		scores[mood.Neutral] = ms.Neutral
	}

	if l.LeftEye.Available() && l.RightEye.Available() {
		es := AnalyzeEyes(l.LeftEye, l.RightEye, l.LeftPupil, l.RightPupil)
		raise(mood.Calm, es.Calm)
		raise(mood.Angry, es.Angry)
		raise(mood.Happy, es.Bright)
	}

	if l.LeftEyebrow.Available() && l.RightEyebrow.Available() {
		bs := AnalyzeEyebrows(l.LeftEyebrow, l.RightEyebrow)
		raise(mood.Angry, bs.Angry)
		raise(mood.Sad, bs.Sad)
		raise(mood.Happy, bs.Surprised)
	}

	return scores
}

// Combine applies the symmetry multiplier and the per-mood reliability
// weights, then picks the winner. A winner at or below AcceptThreshold is
// replaced by Neutral at FallbackConfidence. symmetry < 0 means no nose was
// available and no boost is applied.
func Combine(raw mood.Scores, symmetry float64) mood.Estimate {
	multiplier := 1.0
	if symmetry >= 0 {
		multiplier = SymmetryMultiplier(symmetry)
	}

	weighted := make(mood.Scores, len(raw))
	for m, s := range raw {
		weighted[m] = s * multiplier * Reliability(m)
	}

	best, score, ok := weighted.Best()
	if !ok || !(score > AcceptThreshold) {
		return mood.Estimate{Mood: mood.Neutral, Confidence: FallbackConfidence}
	}
	return mood.Estimate{Mood: best, Confidence: mood.Clamp(score)}
}

// Analyze runs every region analyzer and the combiner over one face.
func Analyze(l *Landmarks) mood.Estimate {
	symmetry := -1.0
	if l != nil && l.Nose.Available() {
		symmetry = Symmetry(l.Nose)
	}
	return Combine(RegionScores(l), symmetry)
}
