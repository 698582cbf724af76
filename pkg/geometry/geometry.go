// Package geometry provides pure helpers over ordered sequences of normalized
// 2D points. Coordinates are in [0,1] relative to the detection frame.
//
// None of the functions fail: inputs that are too short to measure return a
// documented neutral default so callers stay total.
package geometry

import "math"

// Point is a normalized 2D point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Center is the middle of the normalized frame.
var Center = Point{X: 0.5, Y: 0.5}

// Centroid returns the mean point. An empty sequence returns Center.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Center
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Point{X: sx / n, Y: sy / n}
}

// BoundingExtent returns the width and height of the axis-aligned bounding box.
// Fewer than 2 points return (0, 0).
func BoundingExtent(points []Point) (width, height float64) {
	if len(points) < 2 {
		return 0, 0
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return maxX - minX, maxY - minY
}

// VerticalSpan returns max(y) - min(y). Fewer than 2 points return 0.
func VerticalSpan(points []Point) float64 {
	_, h := BoundingExtent(points)
	return h
}

// Angle returns the signed angle in radians of the vector p0 -> p1.
func Angle(p0, p1 Point) float64 {
	return math.Atan2(p1.Y-p0.Y, p1.X-p0.X)
}

// SpanAngle returns the angle from the first to the last point.
// Fewer than 2 points return 0.
func SpanAngle(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	return Angle(points[0], points[len(points)-1])
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// MeanY returns the average y coordinate. An empty sequence returns 0.5.
func MeanY(points []Point) float64 {
	return Centroid(points).Y
}

// BoxArea returns the area of the bounding box. Fewer than 3 points return 0.01.
func BoxArea(points []Point) float64 {
	if len(points) < 3 {
		return 0.01
	}
	w, h := BoundingExtent(points)
	return w * h
}

// EyeHeight returns the vertical distance between the mean of the first three
// points (upper lid) and the mean of the last three (lower lid).
// Fewer than 6 points return 0.03.
func EyeHeight(points []Point) float64 {
	if len(points) < 6 {
		return 0.03
	}
	top := MeanY(points[:3])
	bottom := MeanY(points[len(points)-3:])
	return math.Abs(bottom - top)
}

// EyeWidth returns the horizontal distance between the leftmost and rightmost
// points. Fewer than 6 points return 0.06.
func EyeWidth(points []Point) float64 {
	if len(points) < 6 {
		return 0.06
	}
	w, _ := BoundingExtent(points)
	return w
}
