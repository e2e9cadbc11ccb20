// Package route implements Route: a liquidity curve plus the hop metadata
// describing how to traverse one or more ledgers to realize it.
package route

import (
	"time"

	"github.com/ilplabs/routingcore/curve"
	"github.com/ilplabs/routingcore/decimal"
)

// Route pairs a liquidity Curve with the metadata describing the hop (or
// composed hops) it represents.
type Route struct {
	Curve curve.Curve

	// Hops is the ordered sequence of ledger identifiers traversed. When
	// known, len(Hops) >= 1 and PathLength is derived from it; a route
	// built without hop detail carries pathLength directly instead.
	Hops       []string
	pathLength int

	SourceLedger      string
	NextLedger        string
	DestinationLedger string

	SourceAccount      string
	DestinationAccount string

	// MinMessageWindow is the sum of per-hop message windows, in
	// milliseconds.
	MinMessageWindow int64

	// ExpiresAt is nil for a static route, which never expires.
	ExpiresAt *time.Time

	AddedDuringEpoch int
	IsLocal          bool

	// TargetPrefix is the destination-matching prefix; it equals
	// DestinationLedger unless explicitly overridden.
	TargetPrefix string
}

// PathLength returns len(Hops)-1 when hops are known, else the stored
// integer path length.
func (r *Route) PathLength() int {
	if len(r.Hops) > 0 {
		return len(r.Hops) - 1
	}
	return r.pathLength
}

// SetPathLength stores an explicit path length for a route constructed
// without hop detail (a Route value built with no Hops); it has no effect
// on PathLength while Hops is non-empty.
func (r *Route) SetPathLength(n int) {
	r.pathLength = n
}

// AmountAt delegates to the underlying curve.
func (r *Route) AmountAt(x decimal.D) decimal.D {
	return r.Curve.AmountAt(x)
}

// AmountReverse delegates to the underlying curve.
func (r *Route) AmountReverse(y decimal.D) decimal.D {
	return r.Curve.AmountReverse(y)
}

// Combine returns a new Route whose curve is the parallel composition of r
// and alt. Metadata is retained from r; consumers must not rely
// on the hop identity of a combined route for anything but serialization.
func (r *Route) Combine(alt *Route) *Route {
	combined := *r
	combined.Curve = r.Curve.Combine(alt.Curve)
	return &combined
}

// Join performs serial composition: r is the head (source to some
// intermediate ledger), tail continues from there. Join requires
// r.DestinationLedger == tail.SourceLedger. now is the clock used to
// compute the derived route's expiry; expiryDuration of nil produces a
// static (never-expiring) derived route. Returns (nil, false) if the
// endpoints don't match (a missing precondition, not an error) or if the
// composed curve has no defined overlap.
func (r *Route) Join(tail *Route, expiryDuration *time.Duration, epoch int, now time.Time) (*Route, bool) {
	if r.DestinationLedger != tail.SourceLedger {
		return nil, false
	}

	joinedCurve := r.Curve.Join(tail.Curve)
	if joinedCurve.IsEmpty() {
		return nil, false
	}

	var expiresAt *time.Time
	if expiryDuration != nil {
		t := now.Add(*expiryDuration)
		expiresAt = &t
	}

	joined := &Route{
		Curve:              joinedCurve,
		SourceLedger:       r.SourceLedger,
		NextLedger:         r.NextLedger,
		DestinationLedger:  tail.DestinationLedger,
		SourceAccount:      tail.SourceAccount,
		DestinationAccount: tail.DestinationAccount,
		MinMessageWindow:   r.MinMessageWindow + tail.MinMessageWindow,
		ExpiresAt:          expiresAt,
		AddedDuringEpoch:   epoch,
		IsLocal:            false,
		TargetPrefix:       tail.TargetPrefix,
	}
	joined.pathLength = r.PathLength() + tail.PathLength()
	joined.Hops = joinHops(r.Hops, tail.Hops)

	return joined, true
}

// joinHops concatenates two hop lists, deduplicating the shared midpoint
// ledger (the tail of head and the head of tail should be the same ledger).
func joinHops(head, tail []string) []string {
	if len(head) == 0 || len(tail) == 0 {
		return nil
	}
	combined := make([]string, 0, len(head)+len(tail)-1)
	combined = append(combined, head...)
	if head[len(head)-1] == tail[0] {
		combined = append(combined, tail[1:]...)
	} else {
		combined = append(combined, tail...)
	}
	return combined
}

// IsExpired reports whether the route has passed its expiry. Static
// routes (ExpiresAt == nil) are never expired.
func (r *Route) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// BumpExpiration refreshes a route's expiry to now+holdDown. It is a no-op
// for static routes.
func (r *Route) BumpExpiration(holdDown time.Duration, now time.Time) {
	if r.ExpiresAt == nil {
		return
	}
	t := now.Add(holdDown)
	r.ExpiresAt = &t
}

// Clone returns a shallow copy of r suitable for returning from accessors
// that must not let callers mutate stored state through the pointer they
// receive; Hops is copied since it is a slice.
func (r *Route) Clone() *Route {
	c := *r
	if r.Hops != nil {
		c.Hops = append([]string(nil), r.Hops...)
	}
	if r.ExpiresAt != nil {
		t := *r.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}
