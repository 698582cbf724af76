package face

import (
	"math"
	"math/rand"
	"testing"

	"github.com/teslashibe/go-vibewave/pkg/geometry"
	"github.com/teslashibe/go-vibewave/pkg/mood"
)

func pts(xy ...float64) Region {
	r := make(Region, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		r = append(r, geometry.Pt(xy[i], xy[i+1]))
	}
	return r
}

// smilingLips returns an outer lip contour with wide corners, a raised top
// center and an open mouth.
func smilingLips() (outer, inner Region) {
	outer = pts(
		0.40, 0.30, // 0 left corner
		0.43, 0.32,
		0.46, 0.33, // 2 upper lip
		0.50, 0.34, // 3 top center
		0.54, 0.33, // 4 upper lip
		0.57, 0.32,
		0.60, 0.30, // 6 right corner
		0.57, 0.31,
		0.54, 0.31,
		0.50, 0.31, // 9 bottom center
		0.46, 0.31,
		0.43, 0.31,
	)
	inner = pts(0.44, 0.31, 0.50, 0.33, 0.56, 0.31, 0.56, 0.31, 0.50, 0.315, 0.44, 0.31)
	return outer, inner
}

func loweredBrows() (left, right Region) {
	left = pts(0.30, 0.35, 0.33, 0.345, 0.36, 0.34, 0.40, 0.33)
	right = pts(0.60, 0.35, 0.63, 0.345, 0.66, 0.34, 0.70, 0.33)
	return left, right
}

func TestAnalyzeMouth_Smile(t *testing.T) {
	outer, inner := smilingLips()

	f, ok := MeasureMouth(outer, inner)
	if !ok {
		t.Fatal("MeasureMouth rejected a full lip contour")
	}
	if f.Width <= smileWidth || f.Curve <= smileCurve || f.Height <= smileHeight {
		t.Fatalf("fixture does not meet smile thresholds: %+v", f)
	}

	s := AnalyzeMouth(outer, inner)
	if s.Smile < 0.6 {
		t.Errorf("Smile = %.3f, want >= 0.6", s.Smile)
	}
	if s.Smile > 0.95 {
		t.Errorf("Smile = %.3f exceeds cap 0.95", s.Smile)
	}
	if s.Frown != 0.1 {
		t.Errorf("Frown = %.3f, want low default 0.1", s.Frown)
	}
}

func TestAnalyzeMouth_Frown(t *testing.T) {
	// Corners above the center, narrow and closed.
	outer := pts(
		0.45, 0.32, 0.46, 0.31, 0.47, 0.30, 0.50, 0.29, 0.53, 0.30, 0.54, 0.31,
		0.55, 0.32, 0.54, 0.30, 0.53, 0.29, 0.50, 0.285, 0.47, 0.29, 0.46, 0.30,
	)
	inner := pts(0.46, 0.30, 0.50, 0.29, 0.54, 0.30, 0.54, 0.30, 0.50, 0.29, 0.46, 0.30)

	s := AnalyzeMouth(outer, inner)
	if s.Frown < 0.5 {
		t.Errorf("Frown = %.3f, want >= 0.5", s.Frown)
	}
	if s.Smile != 0.1 {
		t.Errorf("Smile = %.3f, want 0.1", s.Smile)
	}
}

func TestAnalyzeMouth_TooFewPoints(t *testing.T) {
	s := AnalyzeMouth(pts(0.4, 0.3, 0.6, 0.3), pts(0.5, 0.3))
	want := MouthScores{Smile: 0.1, Frown: 0.1, Neutral: 0.5}
	if s != want {
		t.Errorf("AnalyzeMouth = %+v, want %+v", s, want)
	}
}

func TestAnalyzeEyebrows_Angry(t *testing.T) {
	left, right := loweredBrows()

	f, _ := MeasureEyebrows(left, right)
	if f.Y() >= loweredY || f.Angle() >= loweredAngle {
		t.Fatalf("fixture does not meet lowered thresholds: y=%.3f angle=%.3f", f.Y(), f.Angle())
	}

	s := AnalyzeEyebrows(left, right)
	if s.Angry < 0.6 {
		t.Errorf("Angry = %.3f, want >= 0.6", s.Angry)
	}
	if s.Angry > 0.9 {
		t.Errorf("Angry = %.3f exceeds cap 0.9", s.Angry)
	}
}

func TestAnalyzeEyebrows_Defaults(t *testing.T) {
	s := AnalyzeEyebrows(pts(0.3, 0.4), nil)
	if s != (EyebrowScores{0.1, 0.1, 0.1}) {
		t.Errorf("AnalyzeEyebrows = %+v, want all 0.1", s)
	}
}

func TestAnalyzeEyes(t *testing.T) {
	wide := func(cx float64) Region {
		return pts(
			cx-0.045, 0.55, cx, 0.57, cx+0.045, 0.55,
			cx+0.045, 0.50, cx, 0.50, cx-0.045, 0.50,
		)
	}
	narrow := func(cx float64) Region {
		return pts(
			cx-0.025, 0.51, cx, 0.515, cx+0.025, 0.51,
			cx+0.025, 0.50, cx, 0.50, cx-0.025, 0.50,
		)
	}

	tests := []struct {
		name  string
		left  Region
		right Region
		check func(EyeScores) bool
	}{
		{
			name:  "wide open eyes read calm",
			left:  wide(0.35),
			right: wide(0.65),
			check: func(s EyeScores) bool { return s.Calm >= 0.65 && s.Angry == 0.1 },
		},
		{
			name:  "squinting eyes read angry",
			left:  narrow(0.35),
			right: narrow(0.65),
			check: func(s EyeScores) bool { return s.Angry >= 0.55 && s.Calm == 0.15 },
		},
		{
			name:  "too few points",
			left:  pts(0.3, 0.5),
			right: pts(0.6, 0.5),
			check: func(s EyeScores) bool { return s == EyeScores{Calm: 0.2, Angry: 0.1, Bright: 0.1} },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := AnalyzeEyes(tc.left, tc.right, nil, nil)
			if !tc.check(s) {
				t.Errorf("unexpected scores %+v", s)
			}
		})
	}
}

func TestMeasureEyes_Pupils(t *testing.T) {
	eye := pts(0.30, 0.55, 0.35, 0.57, 0.40, 0.55, 0.40, 0.50, 0.35, 0.50, 0.30, 0.50)
	right := pts(0.60, 0.55, 0.65, 0.57, 0.70, 0.55, 0.70, 0.50, 0.65, 0.50, 0.60, 0.50)

	without, _ := MeasureEyes(eye, right, nil, nil)
	if without.Dilation != 0.5 || without.Centering != 0.5 {
		t.Errorf("missing pupils should default to 0.5, got %+v", without)
	}

	centered, _ := MeasureEyes(eye, right,
		Region{geometry.Centroid(eye)}, Region{geometry.Centroid(right)})
	if math.Abs(centered.Centering-1) > 1e-9 {
		t.Errorf("pupils at eye centroids should center at 1, got %.4f", centered.Centering)
	}
	if centered.Dilation <= 0 || centered.Dilation > 1 {
		t.Errorf("dilation out of range: %.4f", centered.Dilation)
	}
}

func TestSymmetry(t *testing.T) {
	tests := []struct {
		name string
		nose Region
		want float64
	}{
		{"centered tip", pts(0.5, 0.6, 0.5, 0.5), 1},
		{"slightly off", pts(0.5, 0.6, 0.6, 0.5), 0.8},
		{"far off floors at 0.3", pts(0.5, 0.6, 0.95, 0.5), 0.3},
		{"too few points", pts(0.5, 0.5), 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Symmetry(tc.nose); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Symmetry = %.3f, want %.3f", got, tc.want)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name     string
		raw      mood.Scores
		symmetry float64
		want     mood.Estimate
	}{
		{
			name: "no signal falls back to neutral",
			raw:  mood.Scores{},
			want: mood.Estimate{Mood: mood.Neutral, Confidence: FallbackConfidence},
		},
		{
			name:     "weak winner falls back to neutral",
			raw:      mood.Scores{mood.Sad: 0.3},
			symmetry: -1,
			want:     mood.Estimate{Mood: mood.Neutral, Confidence: FallbackConfidence},
		},
		{
			name:     "reliability weights decide",
			raw:      mood.Scores{mood.Happy: 0.5, mood.Neutral: 0.7},
			symmetry: -1,
			want:     mood.Estimate{Mood: mood.Happy, Confidence: 0.6},
		},
		{
			name:     "symmetry boosts confidence and clamps",
			raw:      mood.Scores{mood.Happy: 0.95},
			symmetry: 1,
			want:     mood.Estimate{Mood: mood.Happy, Confidence: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Combine(tc.raw, tc.symmetry)
			if got.Mood != tc.want.Mood || math.Abs(got.Confidence-tc.want.Confidence) > 1e-9 {
				t.Errorf("Combine = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestCombine_SymmetryDoesNotChangeWinner(t *testing.T) {
	raw := mood.Scores{mood.Calm: 0.6, mood.Angry: 0.55, mood.Sad: 0.4}
	plain := Combine(raw, -1)
	boosted := Combine(raw, 0.9)

	if plain.Mood != boosted.Mood {
		t.Errorf("symmetry changed winner: %v -> %v", plain.Mood, boosted.Mood)
	}
	if boosted.Confidence <= plain.Confidence {
		t.Errorf("symmetry should raise confidence: %.3f -> %.3f", plain.Confidence, boosted.Confidence)
	}
}

func TestAnalyze_FullFace(t *testing.T) {
	outer, inner := smilingLips()
	l := &Landmarks{
		OuterLips: outer,
		InnerLips: inner,
		Nose:      pts(0.5, 0.5, 0.5, 0.45),
	}

	got := Analyze(l)
	if got.Mood != mood.Happy {
		t.Errorf("smiling face analyzed as %v", got.Mood)
	}
	if got.Confidence <= AcceptThreshold || got.Confidence > 1 {
		t.Errorf("confidence %.3f out of range", got.Confidence)
	}
}

func TestAnalyze_NoLandmarks(t *testing.T) {
	for _, l := range []*Landmarks{nil, {}} {
		got := Analyze(l)
		if got.Mood != mood.Neutral || got.Confidence != FallbackConfidence {
			t.Errorf("Analyze(%v) = %+v", l, got)
		}
	}
	if !(&Landmarks{}).Empty() {
		t.Error("zero Landmarks should be empty")
	}
}

func randomRegion(r *rand.Rand) Region {
	n := r.Intn(16)
	if r.Intn(5) == 0 {
		return nil
	}
	out := make(Region, n)
	for i := range out {
		out[i] = geometry.Pt(r.Float64(), r.Float64())
	}
	return out
}

func TestConfidenceBounds_RandomLandmarks(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	inRange := func(v float64) bool { return v >= 0 && v <= 1 }

	for i := 0; i < 5000; i++ {
		l := &Landmarks{
			OuterLips:    randomRegion(r),
			InnerLips:    randomRegion(r),
			LeftEye:      randomRegion(r),
			RightEye:     randomRegion(r),
			LeftPupil:    randomRegion(r),
			RightPupil:   randomRegion(r),
			LeftEyebrow:  randomRegion(r),
			RightEyebrow: randomRegion(r),
			Nose:         randomRegion(r),
		}

		ms := AnalyzeMouth(l.OuterLips, l.InnerLips)
		es := AnalyzeEyes(l.LeftEye, l.RightEye, l.LeftPupil, l.RightPupil)
		bs := AnalyzeEyebrows(l.LeftEyebrow, l.RightEyebrow)
		for _, v := range []float64{
			ms.Smile, ms.Frown, ms.Neutral,
			es.Calm, es.Angry, es.Bright,
			bs.Angry, bs.Sad, bs.Surprised,
			Symmetry(l.Nose),
		} {
			if !inRange(v) {
				t.Fatalf("iteration %d: sub-score %v out of [0,1] for %+v", i, v, l)
			}
		}

		got := Analyze(l)
		if !inRange(got.Confidence) || !got.Mood.Valid() {
			t.Fatalf("iteration %d: Analyze = %+v", i, got)
		}
	}
}
