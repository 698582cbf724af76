package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   Point
	}{
		{"empty returns frame center", nil, Center},
		{"single point", []Point{Pt(0.2, 0.7)}, Pt(0.2, 0.7)},
		{"square", []Point{Pt(0, 0), Pt(1, 0), Pt(1, 1), Pt(0, 1)}, Pt(0.5, 0.5)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Centroid(tc.points)
			if !near(got.X, tc.want.X) || !near(got.Y, tc.want.Y) {
				t.Errorf("Centroid = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestBoundingExtent(t *testing.T) {
	w, h := BoundingExtent([]Point{Pt(0.1, 0.4), Pt(0.3, 0.2), Pt(0.25, 0.5)})
	if !near(w, 0.2) || !near(h, 0.3) {
		t.Errorf("BoundingExtent = (%v, %v), want (0.2, 0.3)", w, h)
	}

	w, h = BoundingExtent([]Point{Pt(0.1, 0.4)})
	if w != 0 || h != 0 {
		t.Errorf("single point should return (0,0), got (%v, %v)", w, h)
	}

	if VerticalSpan(nil) != 0 {
		t.Error("VerticalSpan(nil) should be 0")
	}
}

func TestAngle(t *testing.T) {
	tests := []struct {
		name   string
		p0, p1 Point
		want   float64
	}{
		{"flat", Pt(0, 0), Pt(1, 0), 0},
		{"up", Pt(0, 0), Pt(0, 1), math.Pi / 2},
		{"down 45", Pt(0, 0), Pt(1, -1), -math.Pi / 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Angle(tc.p0, tc.p1); !near(got, tc.want) {
				t.Errorf("Angle = %v, want %v", got, tc.want)
			}
		})
	}

	if SpanAngle([]Point{Pt(0.3, 0.3)}) != 0 {
		t.Error("SpanAngle with one point should be 0")
	}
}

func TestEyeMeasurements(t *testing.T) {
	eye := []Point{
		Pt(0.30, 0.52), Pt(0.35, 0.54), Pt(0.40, 0.52),
		Pt(0.40, 0.48), Pt(0.35, 0.46), Pt(0.30, 0.48),
	}

	top := (0.52 + 0.54 + 0.52) / 3
	bottom := (0.48 + 0.46 + 0.48) / 3
	if got := EyeHeight(eye); !near(got, top-bottom) {
		t.Errorf("EyeHeight = %v, want %v", got, top-bottom)
	}
	if got := EyeWidth(eye); !near(got, 0.10) {
		t.Errorf("EyeWidth = %v, want 0.10", got)
	}

	// Extremes in the middle of the sequence still count.
	unordered := []Point{
		Pt(0.35, 0.50), Pt(0.22, 0.51), Pt(0.36, 0.49),
		Pt(0.41, 0.50), Pt(0.30, 0.52), Pt(0.33, 0.48),
	}
	if got := EyeWidth(unordered); !near(got, 0.19) {
		t.Errorf("EyeWidth(unordered) = %v, want 0.19", got)
	}

	short := eye[:4]
	if EyeHeight(short) != 0.03 || EyeWidth(short) != 0.06 {
		t.Error("short eye region should return defaults")
	}
}

func TestBoxArea(t *testing.T) {
	if got := BoxArea([]Point{Pt(0, 0), Pt(0.2, 0.1), Pt(0.1, 0.05)}); !near(got, 0.02) {
		t.Errorf("BoxArea = %v, want 0.02", got)
	}
	if BoxArea([]Point{Pt(0, 0)}) != 0.01 {
		t.Error("BoxArea with < 3 points should be 0.01")
	}
}
