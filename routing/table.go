package routing

import (
	"github.com/ilplabs/routingcore/decimal"
	"github.com/ilplabs/routingcore/prefixmap"
	"github.com/ilplabs/routingcore/route"
)

// PairHop is the sentinel next-hop identifier used for locally configured
// pairs, distinguishing them from derived routes that happen to share the
// same destination.
const PairHop = "PAIR"

// HopResult is the answer to a best-hop query: which next hop to use, the
// route through it, and the value (for a source-amount query) or cost
// (for a destination-amount query) of using it, rendered as a decimal
// string.
type HopResult struct {
	BestHop   string
	BestRoute *route.Route
	// BestValue is set for source-amount queries.
	BestValue string
	// BestCost is set for destination-amount queries.
	BestCost string
}

// Table is the per-source routing table: destinationPrefix maps to an
// inner map of nextHop to Route, with at most one Route per
// (destinationPrefix, nextHop) pair.
type Table struct {
	destinations *prefixmap.Map
}

// NewTable returns an empty per-source routing table.
func NewTable() *Table {
	return &Table{destinations: prefixmap.New()}
}

// innerMap returns the nextHop->Route map for destinationPrefix, creating
// it if create is true and it doesn't exist yet.
func (t *Table) innerMap(destinationPrefix string, create bool) (map[string]*route.Route, bool) {
	v, ok := t.destinations.Get(destinationPrefix)
	if ok {
		return v.(map[string]*route.Route), true
	}
	if !create {
		return nil, false
	}
	m := make(map[string]*route.Route)
	t.destinations.Insert(destinationPrefix, m)
	return m, true
}

// AddRoute inserts r under (destinationPrefix, nextHop), creating the
// inner map if absent. An existing route at the same slot is replaced.
func (t *Table) AddRoute(destinationPrefix, nextHop string, r *route.Route) {
	inner, _ := t.innerMap(destinationPrefix, true)
	inner[nextHop] = r
}

// RemoveRoute removes the route at (destinationPrefix, nextHop), deleting
// the inner map if it becomes empty. It returns true iff a route was
// actually removed.
func (t *Table) RemoveRoute(destinationPrefix, nextHop string) bool {
	inner, ok := t.innerMap(destinationPrefix, false)
	if !ok {
		return false
	}
	if _, ok := inner[nextHop]; !ok {
		return false
	}
	delete(inner, nextHop)
	if len(inner) == 0 {
		t.destinations.Delete(destinationPrefix)
	}
	return true
}

// GetRoute returns the route stored at the exact (destinationPrefix,
// nextHop) slot, if any.
func (t *Table) GetRoute(destinationPrefix, nextHop string) (*route.Route, bool) {
	inner, ok := t.innerMap(destinationPrefix, false)
	if !ok {
		return nil, false
	}
	r, ok := inner[nextHop]
	return r, ok
}

// FindBestHopForSourceAmount resolves finalAddress by longest-prefix match
// against the stored destinations, then picks the candidate next hop that
// maximizes the destination amount reached for sourceAmount.
func (t *Table) FindBestHopForSourceAmount(finalAddress string, sourceAmount decimal.D) (HopResult, bool) {
	inner, ok := t.resolveDestination(finalAddress)
	if !ok {
		return HopResult{}, false
	}

	var best *candidate
	for nextHop, r := range inner {
		value := r.AmountAt(sourceAmount)
		c := &candidate{
			nextHop:    nextHop,
			route:      r,
			pathLength: r.PathLength(),
			value:      &value,
		}
		best = getBetterPath(best, c)
	}
	if best == nil {
		return HopResult{}, false
	}
	return HopResult{
		BestHop:   best.nextHop,
		BestRoute: best.route,
		BestValue: best.value.String(),
	}, true
}

// FindBestHopForDestinationAmount resolves finalAddress the same way, then
// picks the candidate next hop with the lowest source amount required to
// reach destAmount. Candidates for which destAmount is unachievable
// (AmountReverse returns the infinity sentinel) are discarded entirely.
func (t *Table) FindBestHopForDestinationAmount(finalAddress string, destAmount decimal.D) (HopResult, bool) {
	inner, ok := t.resolveDestination(finalAddress)
	if !ok {
		return HopResult{}, false
	}

	var best *candidate
	for nextHop, r := range inner {
		cost := r.AmountReverse(destAmount)
		if cost.IsInfinite() {
			continue
		}
		c := &candidate{
			nextHop:    nextHop,
			route:      r,
			pathLength: r.PathLength(),
			cost:       &cost,
		}
		best = getBetterPath(best, c)
	}
	if best == nil {
		return HopResult{}, false
	}
	return HopResult{
		BestHop:   best.nextHop,
		BestRoute: best.route,
		BestCost:  best.cost.String(),
	}, true
}

func (t *Table) resolveDestination(finalAddress string) (map[string]*route.Route, bool) {
	v, _, ok := t.destinations.Resolve(finalAddress)
	if !ok {
		return nil, false
	}
	return v.(map[string]*route.Route), true
}

// eachRoute iterates every (destinationPrefix, nextHop, route) triple
// stored in the table. It is used internally by Tables for ledger
// teardown, expiration sweeps and connector invalidation; it is not part
// of the public per-source query surface.
func (t *Table) eachRoute(fn func(destinationPrefix, nextHop string, r *route.Route)) {
	t.destinations.Each(func(value interface{}, prefix string) bool {
		inner := value.(map[string]*route.Route)
		for nextHop, r := range inner {
			fn(prefix, nextHop, r)
		}
		return true
	})
}

// destinationPrefixes returns every destination prefix with at least one
// route, in sorted order.
func (t *Table) destinationPrefixes() []string {
	return t.destinations.Keys()
}

// count returns the total number of stored routes across all destination
// prefixes and next hops, used for the live-route-count gauge.
func (t *Table) count() int {
	n := 0
	t.eachRoute(func(string, string, *route.Route) {
		n++
	})
	return n
}
