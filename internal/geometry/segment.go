// Package geometry implements the planar segment math used by the graph
// repair: everything operates on the XY projection, elevations are handled
// by the caller.
package geometry

import "math"

// Point is a 2D coordinate in plan.
type Point struct {
	X float64
	Y float64
}

// CrossXY returns the 2D cross product of u and v.
func CrossXY(u, v Point) float64 {
	return u.X*v.Y - u.Y*v.X
}

// DotXY returns the 2D dot product of u and v.
func DotXY(u, v Point) float64 {
	return u.X*v.X + u.Y*v.Y
}

// Sub returns b - a as a vector.
func Sub(a, b Point) Point {
	return Point{X: b.X - a.X, Y: b.Y - a.Y}
}

// Intersection is the result of a segment-segment intersection in plan.
// T is the parameter along p1->p2, U the parameter along q1->q2, both
// clamped to [0,1].
type Intersection struct {
	X float64
	Y float64
	T float64
	U float64
}

// SegmentIntersectionXY intersects segments p1-p2 and q1-q2 in plan.
// It solves the 2x2 linear system for the parameters of both segments and
// reports no hit when the determinant is within tol of zero (parallel or
// degenerate) or when either parameter falls outside [-tol, 1+tol].
// Touching endpoints therefore count as intersections. Non-finite results
// from extreme tolerances are rejected.
func SegmentIntersectionXY(p1, p2, q1, q2 Point, tol float64) (Intersection, bool) {
	dp := Sub(p1, p2)
	dq := Sub(q1, q2)
	den := CrossXY(dp, dq)
	if math.Abs(den) <= tol {
		return Intersection{}, false
	}
	r := Sub(p1, q1)
	t := CrossXY(r, dq) / den
	u := CrossXY(r, dp) / den
	if t < -tol || t > 1+tol || u < -tol || u > 1+tol {
		return Intersection{}, false
	}
	t = clamp01(t)
	u = clamp01(u)
	x := p1.X + t*dp.X
	y := p1.Y + t*dp.Y
	if !isFinite(x) || !isFinite(y) {
		return Intersection{}, false
	}
	return Intersection{X: x, Y: y, T: t, U: u}, true
}

// CollinearXY reports whether c lies on the infinite line through a and b,
// i.e. the signed area of triangle abc is within tol of zero.
func CollinearXY(a, b, c Point, tol float64) bool {
	return math.Abs(CrossXY(Sub(a, b), Sub(a, c))) <= tol
}

// ParamOnSegmentXY returns the scalar projection parameter of p onto the
// segment a-b (0 at a, 1 at b). A degenerate segment yields 0 rather than a
// division by zero.
func ParamOnSegmentXY(a, b, p Point) float64 {
	ab := Sub(a, b)
	ap := Sub(a, p)
	den := DotXY(ab, ab)
	if den == 0 {
		return 0
	}
	return DotXY(ap, ab) / den
}

// PointOnSegmentXY reports whether p lies on the segment a-b within tol:
// collinear and with projection parameter inside [-tol, 1+tol].
func PointOnSegmentXY(a, b, p Point, tol float64) bool {
	if !CollinearXY(a, b, p, tol) {
		return false
	}
	t := ParamOnSegmentXY(a, b, p)
	return t >= -tol && t <= 1+tol
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
