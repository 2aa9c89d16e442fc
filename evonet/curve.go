package evonet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Keyframe is one control point of a Curve.
type Keyframe struct {
	X, Y float64
}

// Curve is a piecewise-linear function through sorted keyframes. Outside the
// keyframe range it is clamped to the first or last value. An empty curve
// evaluates to 1 everywhere.
type Curve []Keyframe

// ParseCurve reads keyframes written as space-separated "x:y" pairs, e.g.
// "0:1 0.5:0.4 1:0.1".
func ParseCurve(s string) (Curve, error) {
	fields := strings.Fields(s)
	curve := make(Curve, 0, len(fields))
	for _, f := range fields {
		xs, ys, ok := strings.Cut(f, ":")
		if !ok {
			return nil, fmt.Errorf("keyframe %q is not of the form x:y", f)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("keyframe %q: %w", f, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("keyframe %q: %w", f, err)
		}
		curve = append(curve, Keyframe{X: x, Y: y})
	}
	sort.SliceStable(curve, func(i, j int) bool { return curve[i].X < curve[j].X })
	return curve, nil
}

// Evaluate interpolates the curve at x.
func (c Curve) Evaluate(x float64) float64 {
	switch {
	case len(c) == 0:
		return 1
	case x <= c[0].X:
		return c[0].Y
	case x >= c[len(c)-1].X:
		return c[len(c)-1].Y
	}
	i := sort.Search(len(c), func(i int) bool { return c[i].X >= x })
	a, b := c[i-1], c[i]
	if b.X == a.X {
		return b.Y
	}
	t := (x - a.X) / (b.X - a.X)
	return a.Y + t*(b.Y-a.Y)
}
