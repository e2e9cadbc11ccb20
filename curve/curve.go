// Package curve implements the liquidity curve algebra: piecewise-linear,
// non-decreasing functions from a source amount to a destination amount,
// represented as an ordered sequence of Points. Curves are immutable once
// constructed; every transformation returns a new Curve.
package curve

import (
	"fmt"
	"sort"

	"github.com/ilplabs/routingcore/decimal"
)

// Point is a single (x, y) sample of a Curve. Both coordinates are
// non-negative arbitrary-precision decimals.
type Point struct {
	X decimal.D
	Y decimal.D
}

// Curve is a finite, ordered sequence of Points. xs are strictly
// increasing; ys are non-decreasing. An empty Curve represents no
// liquidity at all: AmountAt on it is zero and AmountReverse on it is
// decimal.Infinity() ("unachievable").
//
// Below its first point a Curve is implicitly zero-valued; above its last
// point it is clamped to the last point's y.
type Curve struct {
	points []Point
}

// Empty is the zero-liquidity curve.
var Empty = Curve{}

// New validates and constructs a Curve from points already believed to be
// in x order. It is the canonical constructor; every other package in this
// module that builds a Curve from untrusted input (route.FromData) goes
// through it.
func New(points []Point) (Curve, error) {
	if len(points) == 0 {
		return Empty, nil
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X.Cmp(sorted[j].X) < 0
	})

	for i, p := range sorted {
		if p.X.Sign() < 0 || p.Y.Sign() < 0 {
			return Empty, fmt.Errorf("curve: point %d has a negative coordinate", i)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if p.X.Cmp(prev.X) <= 0 {
			return Empty, fmt.Errorf("curve: x values must be strictly increasing, got %s after %s", p.X, prev.X)
		}
		if p.Y.Cmp(prev.Y) < 0 {
			return Empty, fmt.Errorf("curve: y values must be non-decreasing, got %s after %s", p.Y, prev.Y)
		}
	}

	return Curve{points: sorted}, nil
}

// MustNew is New but panics on error, for fixtures and tests.
func MustNew(points []Point) Curve {
	c, err := New(points)
	if err != nil {
		panic(err)
	}
	return c
}

// Points returns the curve's points in x order. The returned slice must
// not be mutated by the caller; Curve is otherwise immutable.
func (c Curve) Points() []Point {
	return c.points
}

// IsEmpty reports whether the curve carries no liquidity at all.
func (c Curve) IsEmpty() bool {
	return len(c.points) == 0
}

// AmountAt evaluates the curve at source amount x, returning the
// destination amount. An empty curve, or x below the first point,
// evaluates to zero. x at or above the last point clamps to the last
// point's y.
func (c Curve) AmountAt(x decimal.D) decimal.D {
	if c.IsEmpty() {
		return decimal.Zero
	}
	first := c.points[0]
	if x.Cmp(first.X) < 0 {
		return decimal.Zero
	}
	last := c.points[len(c.points)-1]
	if x.Cmp(last.X) >= 0 {
		return last.Y
	}

	i := c.segmentFor(x)
	lo, hi := c.points[i], c.points[i+1]
	return interpolate(lo, hi, x)
}

// AmountReverse inverts the curve: given a desired destination amount y,
// returns the smallest source amount x that achieves it. If the curve is
// empty or y exceeds the curve's maximum reachable y, the result is
// decimal.Infinity(), meaning "unachievable". If y is at or below the
// first point's y, the result is the first point's x.
func (c Curve) AmountReverse(y decimal.D) decimal.D {
	if c.IsEmpty() {
		return decimal.Infinity()
	}
	last := c.points[len(c.points)-1]
	if y.Cmp(last.Y) > 0 {
		return decimal.Infinity()
	}
	first := c.points[0]
	if y.Cmp(first.Y) <= 0 {
		return first.X
	}

	for i := 0; i < len(c.points)-1; i++ {
		lo, hi := c.points[i], c.points[i+1]
		if y.Cmp(lo.Y) >= 0 && y.Cmp(hi.Y) <= 0 {
			if hi.Y.Cmp(lo.Y) == 0 {
				return lo.X
			}
			return interpolateInverse(lo, hi, y)
		}
	}

	// Unreachable given the bounds checks above, but fall back to
	// unachievable rather than panicking on an unforeseen edge case.
	return decimal.Infinity()
}

// segmentFor returns the index i such that points[i].X <= x < points[i+1].X.
// Callers must have already established that x lies within [first.X, last.X).
func (c Curve) segmentFor(x decimal.D) int {
	// Binary search would be the efficient choice for large curves; a
	// linear scan keeps this readable and curves are small in practice
	// (bounded by simplify's maxPoints).
	for i := 0; i < len(c.points)-1; i++ {
		if x.Cmp(c.points[i+1].X) < 0 {
			return i
		}
	}
	return len(c.points) - 2
}

func interpolate(lo, hi Point, x decimal.D) decimal.D {
	dx := hi.X.Sub(lo.X)
	dy := hi.Y.Sub(lo.Y)
	if dx.IsZero() {
		return lo.Y
	}
	frac := x.Sub(lo.X).Div(dx)
	return lo.Y.Add(dy.Mul(frac))
}

func interpolateInverse(lo, hi Point, y decimal.D) decimal.D {
	dx := hi.X.Sub(lo.X)
	dy := hi.Y.Sub(lo.Y)
	if dy.IsZero() {
		return lo.X
	}
	frac := y.Sub(lo.Y).Div(dy)
	return lo.X.Add(dx.Mul(frac))
}

// Combine performs the parallel composition of c and other: at every x
// where either curve is defined, the result is the max of the two. The
// result's breakpoints are the union of both curves' breakpoints plus any
// point where the two curves' segments cross, so the result is exactly
// max(c.AmountAt(x), other.AmountAt(x)) everywhere, not just at the
// original breakpoints.
func (c Curve) Combine(other Curve) Curve {
	if c.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return c
	}

	xs := unionXs(c, other)
	xs = withCrossings(c, other, xs)

	points := make([]Point, 0, len(xs))
	for _, x := range xs {
		y := decimal.Max(c.AmountAt(x), other.AmountAt(x))
		points = append(points, Point{X: x, Y: y})
	}

	merged := collapseDuplicateXs(points)
	result, err := New(merged)
	if err != nil {
		// Combine of two valid monotone curves cannot produce an
		// invalid one; if it ever does, that is a bug in this
		// algebra, not a condition callers should need to handle.
		panic(fmt.Sprintf("curve: combine produced an invalid curve: %v", err))
	}
	return result
}

// Join performs the serial composition of c and other: the resulting
// curve represents other.AmountAt(c.AmountAt(x)). Breakpoints are emitted
// wherever either input breaks, by walking c's breakpoints and also
// mapping other's breakpoints back through c's inverse.
func (c Curve) Join(other Curve) Curve {
	if c.IsEmpty() || other.IsEmpty() {
		return Empty
	}
	// c never reaches other's first point: the defined ranges are disjoint.
	if c.points[len(c.points)-1].Y.Cmp(other.points[0].X) < 0 {
		return Empty
	}

	xs := map[string]decimal.D{}
	for _, p := range c.points {
		xs[p.X.String()] = p.X
	}
	for _, p := range other.points {
		x := c.AmountReverse(p.X)
		if x.IsInfinite() {
			continue
		}
		xs[x.String()] = x
	}

	sortedXs := make([]decimal.D, 0, len(xs))
	for _, x := range xs {
		sortedXs = append(sortedXs, x)
	}
	sort.Slice(sortedXs, func(i, j int) bool {
		return sortedXs[i].Cmp(sortedXs[j]) < 0
	})

	points := make([]Point, 0, len(sortedXs))
	for _, x := range sortedXs {
		y := other.AmountAt(c.AmountAt(x))
		points = append(points, Point{X: x, Y: y})
	}

	merged := collapseDuplicateXs(points)
	result, err := New(merged)
	if err != nil {
		// A non-monotone join means the two curves' defined ranges
		// don't compose cleanly; callers (route.Join) treat this as
		// "no route", not a panic-worthy bug, so report it via an
		// empty curve instead of erroring.
		log.Debugf("curve: join produced a non-monotone curve, returning empty: %v", err)
		return Empty
	}
	return result
}

// ShiftX returns a new curve with dx added to every x coordinate. A
// negative dx that would push a point's x below zero clamps that
// coordinate to zero; points that would fall below the axis entirely
// (i.e. whose shifted x would be negative even after clamping attempts,
// meaning they are dominated by the clamped point) are dropped.
func (c Curve) ShiftX(dx decimal.D) Curve {
	return c.shift(dx, true)
}

// ShiftY returns a new curve with dy added to every y coordinate, with the
// same negative-shift clamping behavior as ShiftX but applied to y.
func (c Curve) ShiftY(dy decimal.D) Curve {
	return c.shift(dy, false)
}

func (c Curve) shift(delta decimal.D, onX bool) Curve {
	if c.IsEmpty() {
		return Empty
	}

	points := make([]Point, 0, len(c.points))
	for _, p := range c.points {
		np := p
		if onX {
			np.X = clampShift(p.X, delta)
		} else {
			np.Y = clampShift(p.Y, delta)
		}
		points = append(points, np)
	}

	// Drop any point that clamped to the same coordinate as a previous
	// point, keeping the one with the more extreme (dominant) other
	// coordinate, since a negative shift can collapse distinct input
	// points onto the axis.
	deduped := collapseDuplicateXs(points)
	result, err := New(deduped)
	if err != nil {
		// Clamping preserves order and collapsing removes x ties, so
		// New is not expected to fail here; if it does, rebuild from
		// the deduplicated points defensively rather than propagating
		// a construction error for what is fundamentally a clamping
		// operation.
		result = rebuildMonotone(deduped)
	}
	return result
}

func clampShift(coord decimal.D, delta decimal.D) decimal.D {
	shifted := coord.Add(delta)
	if shifted.Sign() < 0 {
		return decimal.Zero
	}
	return shifted
}

// Simplify reduces the curve to at most maxPoints points by repeatedly
// removing the interior point whose removal introduces the smallest
// maximum vertical error, preserving both endpoints; with a maxPoints of 1
// the two endpoints are still both kept. maxPoints must be positive.
func (c Curve) Simplify(maxPoints int) (Curve, error) {
	if maxPoints <= 0 {
		return Empty, fmt.Errorf("curve: maxPoints must be positive, got %d", maxPoints)
	}
	if len(c.points) <= maxPoints {
		return c, nil
	}

	points := make([]Point, len(c.points))
	copy(points, c.points)

	for len(points) > maxPoints {
		removeAt := -1
		var smallestError decimal.D
		for i := 1; i < len(points)-1; i++ {
			err := verticalError(points, i)
			if removeAt == -1 || err.Cmp(smallestError) < 0 {
				removeAt = i
				smallestError = err
			}
		}
		if removeAt == -1 {
			// Only the two endpoints remain; nothing more can be
			// removed even though len(points) might still exceed
			// maxPoints for a maxPoints of 1.
			break
		}
		points = append(points[:removeAt], points[removeAt+1:]...)
	}

	return Curve{points: points}, nil
}

// verticalError estimates the error introduced by removing points[i]: the
// vertical distance between the removed point's y and the y the
// straight line from its neighbors would predict at the same x.
func verticalError(points []Point, i int) decimal.D {
	lo, hi := points[i-1], points[i+1]
	predicted := interpolate(lo, hi, points[i].X)
	diff := points[i].Y.Sub(predicted)
	if diff.Sign() < 0 {
		diff = diff.Mul(decimal.NewFromInt(-1))
	}
	return diff
}

// Equal reports whether two curves have identical point sequences.
func (c Curve) Equal(other Curve) bool {
	if len(c.points) != len(other.points) {
		return false
	}
	for i := range c.points {
		if c.points[i].X.Cmp(other.points[i].X) != 0 {
			return false
		}
		if c.points[i].Y.Cmp(other.points[i].Y) != 0 {
			return false
		}
	}
	return true
}

func unionXs(a, b Curve) []decimal.D {
	seen := map[string]decimal.D{}
	for _, p := range a.points {
		seen[p.X.String()] = p.X
	}
	for _, p := range b.points {
		seen[p.X.String()] = p.X
	}
	xs := make([]decimal.D, 0, len(seen))
	for _, x := range seen {
		xs = append(xs, x)
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i].Cmp(xs[j]) < 0 })
	return xs
}

// withCrossings inserts, between each consecutive pair of breakpoints, the
// x coordinate where a and b's linear segments cross, if they cross
// strictly inside that interval. Both curves are linear between any two
// consecutive entries of xs by construction, since xs already contains
// every breakpoint of both curves.
func withCrossings(a, b Curve, xs []decimal.D) []decimal.D {
	out := make([]decimal.D, 0, len(xs)*2)
	for i := 0; i < len(xs); i++ {
		out = append(out, xs[i])
		if i == len(xs)-1 {
			continue
		}
		lo, hi := xs[i], xs[i+1]
		aLo, aHi := a.AmountAt(lo), a.AmountAt(hi)
		bLo, bHi := b.AmountAt(lo), b.AmountAt(hi)

		diffLo := aLo.Sub(bLo)
		diffHi := aHi.Sub(bHi)
		if diffLo.Sign() == 0 || diffHi.Sign() == 0 {
			continue
		}
		if diffLo.Sign() == diffHi.Sign() {
			continue
		}

		// Both segments are linear on [lo, hi]; solve for the x where
		// aLo + (aHi-aLo)*t == bLo + (bHi-bLo)*t, t in (0, 1).
		num := bLo.Sub(aLo)
		den := aHi.Sub(aLo).Sub(bHi.Sub(bLo))
		if den.IsZero() {
			continue
		}
		t := num.Div(den)
		if t.Sign() <= 0 || t.Cmp(decimal.NewFromInt(1)) >= 0 {
			continue
		}
		x := lo.Add(hi.Sub(lo).Mul(t))
		out = append(out, x)
	}
	return out
}

// collapseDuplicateXs merges points that share an x (keeping the larger y,
// since combine/join/shift must stay non-decreasing) and returns them in x
// order, ready for New.
func collapseDuplicateXs(points []Point) []Point {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].X.Cmp(points[j].X) < 0
	})

	out := make([]Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].X.Cmp(p.X) == 0 {
			if p.Y.Cmp(out[len(out)-1].Y) > 0 {
				out[len(out)-1].Y = p.Y
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

// rebuildMonotone drops any point that would otherwise violate the
// non-decreasing-y invariant after a lossy shift, keeping the earlier
// (lower-x) point whenever two points tie. It is the last-resort repair
// path for a shift whose clamped points New rejects.
func rebuildMonotone(points []Point) Curve {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		for len(out) > 0 && out[len(out)-1].Y.Cmp(p.Y) > 0 {
			out = out[:len(out)-1]
		}
		if len(out) > 0 && out[len(out)-1].X.Cmp(p.X) == 0 {
			continue
		}
		out = append(out, p)
	}
	c, err := New(out)
	if err != nil {
		return Empty
	}
	return c
}
