package routing

import (
	"sort"
	"time"

	"github.com/ilplabs/routingcore/decimal"
	"github.com/ilplabs/routingcore/prefixmap"
	"github.com/ilplabs/routingcore/route"
	"github.com/ilplabs/routingcore/routing/metrics"
)

// Tables is the routing-tables composer: a PrefixMap of source-ledger
// prefix to per-source Table, plus the epoch bookkeeping, local-account
// registry and expiry defaults needed to derive transitive routes and
// answer best-hop queries across the whole network view.
type Tables struct {
	sources       *prefixmap.Map
	localAccounts map[string]string

	currentEpoch   int
	expiryDuration *time.Duration

	// clock is the embedder-supplied now() used for expiry computation
	// and comparison; it defaults to time.Now so tests can inject a
	// fixed or advancing clock instead.
	clock func() time.Time

	recorder *metrics.Recorder
	instance string
}

// NewTables returns an empty composer. expiryDuration is the default
// hold-down applied to derived routes; nil produces static (never
// expiring) derivations. A nil clock defaults to time.Now.
func NewTables(expiryDuration *time.Duration, clock func() time.Time) *Tables {
	if clock == nil {
		clock = time.Now
	}
	return &Tables{
		sources:        prefixmap.New(),
		localAccounts:  make(map[string]string),
		expiryDuration: expiryDuration,
		clock:          clock,
	}
}

// UseRecorder attaches a Prometheus recorder to this instance, labeled by
// instance. A nil recorder (the default) disables metrics entirely.
func (t *Tables) UseRecorder(recorder *metrics.Recorder, instance string) {
	t.recorder = recorder
	t.instance = instance
}

// CurrentEpoch returns the monotonic version counter, incremented once
// per successful top-level or recursively-propagated addRoute call.
func (t *Tables) CurrentEpoch() int {
	return t.currentEpoch
}

func (t *Tables) sourceTable(ledger string, create bool) (*Table, bool) {
	v, ok := t.sources.Get(ledger)
	if ok {
		return v.(*Table), true
	}
	if !create {
		return nil, false
	}
	tbl := NewTable()
	t.sources.Insert(ledger, tbl)
	return tbl, true
}

// AddLocalRoutes registers routes as locally configured pairs: each is
// inserted into its source ledger's table under (targetPrefix, PairHop),
// localAccounts is populated from both endpoints, and every route is then
// fed through AddRoute to seed transitive derivation from the newly
// widened set of sources.
func (t *Tables) AddLocalRoutes(routes []*route.Route) {
	for _, l := range routes {
		l.IsLocal = true

		tbl, _ := t.sourceTable(l.SourceLedger, true)
		tbl.AddRoute(l.TargetPrefix, PairHop, l)

		t.localAccounts[l.SourceLedger] = l.SourceAccount
		if l.DestinationAccount != "" {
			t.localAccounts[l.TargetPrefix] = l.DestinationAccount
		}
	}

	for _, l := range routes {
		t.AddRoute(l)
	}
}

// AddRoute attempts to derive a transitive route from routeBtoC through
// every known source ledger, inserting any successful derivation and
// recursively propagating it one hop further. It returns true iff at
// least one derivation was inserted into a previously empty (destination,
// connector) slot, in which case this call advances currentEpoch by one;
// recursive propagation triggered by the call advances it further.
func (t *Tables) AddRoute(routeBtoC *route.Route) bool {
	added := false
	for _, src := range t.sources.Keys() {
		v, ok := t.sources.Get(src)
		if !ok {
			continue
		}
		tbl := v.(*Table)
		if t.addRouteFromSource(tbl, src, routeBtoC) {
			added = true
		}
	}

	if added {
		t.currentEpoch++
		if t.recorder != nil {
			t.recorder.ObserveEpoch(t.instance, t.currentEpoch)
		}
	}
	return added
}

// addRouteFromSource joins the local pair A->B against routeBtoC to derive
// A->C, inserts it under (C, connector) in tableFromA, and recurses one
// hop further when the slot was previously empty. Re-insertion at an
// already-occupied slot does not propagate further, which together with
// the "A->B must be a local pair" requirement bounds recursion depth.
func (t *Tables) addRouteFromSource(tableFromA *Table, sourceLedger string, routeBtoC *route.Route) bool {
	b := routeBtoC.SourceLedger
	c := routeBtoC.TargetPrefix
	connector := routeBtoC.SourceAccount

	if routeBtoC.IsLocal {
		if _, ok := tableFromA.GetRoute(c, PairHop); ok {
			return false
		}
	}

	routeAtoB, ok := tableFromA.GetRoute(b, PairHop)
	if !ok {
		return false
	}

	routeAtoC, ok := routeAtoB.Join(routeBtoC, t.expiryDuration, t.currentEpoch, t.clock())
	if !ok {
		return false
	}

	_, existed := tableFromA.GetRoute(c, connector)
	novel := !existed
	if novel {
		// The derived route's addedDuringEpoch is bumped a second time
		// here, on top of the value Join already stamped it with.
		routeAtoC.AddedDuringEpoch++
	}

	tableFromA.AddRoute(c, connector, routeAtoC)

	if t.recorder != nil {
		t.recorder.IncRoutesAdded(t.instance)
		t.recorder.SetLiveRouteCount(t.instance, sourceLedger, tableFromA.count())
	}

	if novel {
		t.AddRoute(routeAtoC)
	}
	return novel
}

// GetLocalPairRoute returns the locally configured route from source to
// destination, if one was registered via AddLocalRoutes.
func (t *Tables) GetLocalPairRoute(source, destination string) (*route.Route, bool) {
	tbl, ok := t.sourceTable(source, false)
	if !ok {
		return nil, false
	}
	return tbl.GetRoute(destination, PairHop)
}

type routeSlot struct {
	destPrefix string
	nextHop    string
}

// RemoveLedger removes every route that touches ledger as either its
// source ledger's table or as a stored route's destination ledger,
// including the local-account entry recorded for it.
func (t *Tables) RemoveLedger(ledger string) {
	t.sources.Delete(ledger)
	delete(t.localAccounts, ledger)

	for _, src := range t.sources.Keys() {
		v, ok := t.sources.Get(src)
		if !ok {
			continue
		}
		tbl := v.(*Table)

		var toRemove []routeSlot
		tbl.eachRoute(func(destPrefix, nextHop string, r *route.Route) {
			if r.SourceLedger == ledger || r.DestinationLedger == ledger {
				toRemove = append(toRemove, routeSlot{destPrefix, nextHop})
			}
		})
		for _, slot := range toRemove {
			tbl.RemoveRoute(slot.destPrefix, slot.nextHop)
		}
	}
}

// RemoveExpiredRoutes removes every route whose IsExpired is true as of
// the composer's clock, returning the sorted, deduplicated list of
// destination prefixes that lost at least one route.
func (t *Tables) RemoveExpiredRoutes() []string {
	now := t.clock()
	lost := make(map[string]bool)

	for _, src := range t.sources.Keys() {
		v, ok := t.sources.Get(src)
		if !ok {
			continue
		}
		tbl := v.(*Table)

		var toRemove []routeSlot
		tbl.eachRoute(func(destPrefix, nextHop string, r *route.Route) {
			if r.IsExpired(now) {
				toRemove = append(toRemove, routeSlot{destPrefix, nextHop})
			}
		})
		for _, slot := range toRemove {
			tbl.RemoveRoute(slot.destPrefix, slot.nextHop)
			lost[slot.destPrefix] = true
		}
		if len(toRemove) > 0 && t.recorder != nil {
			t.recorder.IncRoutesExpired(t.instance, "expired", len(toRemove))
		}
	}

	return sortedKeys(lost)
}

// BumpConnector refreshes the expiry of every non-static route whose next
// hop is connector to now+holdDown.
func (t *Tables) BumpConnector(connector string, holdDown time.Duration) {
	now := t.clock()
	for _, src := range t.sources.Keys() {
		v, ok := t.sources.Get(src)
		if !ok {
			continue
		}
		tbl := v.(*Table)
		tbl.eachRoute(func(destPrefix, nextHop string, r *route.Route) {
			if nextHop == connector {
				r.BumpExpiration(holdDown, now)
			}
		})
	}
}

// InvalidateConnector removes every non-static route whose next hop is
// connector, returning the sorted, deduplicated list of lost destination
// prefixes. Static routes (local pairs) are never touched, since they
// carry no expiry.
func (t *Tables) InvalidateConnector(connector string) []string {
	return t.invalidateConnector(connector, "")
}

// InvalidateConnectorsRoutesTo removes every non-static route whose next
// hop is connector and whose destination ledger is ledger.
func (t *Tables) InvalidateConnectorsRoutesTo(connector, ledger string) []string {
	return t.invalidateConnector(connector, ledger)
}

func (t *Tables) invalidateConnector(connector, ledger string) []string {
	lost := make(map[string]bool)

	for _, src := range t.sources.Keys() {
		v, ok := t.sources.Get(src)
		if !ok {
			continue
		}
		tbl := v.(*Table)

		var toRemove []routeSlot
		tbl.eachRoute(func(destPrefix, nextHop string, r *route.Route) {
			if nextHop != connector || r.ExpiresAt == nil {
				return
			}
			if ledger != "" && r.DestinationLedger != ledger {
				return
			}
			toRemove = append(toRemove, routeSlot{destPrefix, nextHop})
		})
		for _, slot := range toRemove {
			tbl.RemoveRoute(slot.destPrefix, slot.nextHop)
			lost[slot.destPrefix] = true
		}
		if len(toRemove) > 0 && t.recorder != nil {
			t.recorder.IncRoutesExpired(t.instance, "invalidated", len(toRemove))
		}
	}

	return sortedKeys(lost)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FindBestHopForSourceAmount resolves sourceAddr to a source table by
// longest-prefix match, then delegates to Table.FindBestHopForSourceAmount.
// A winning PairHop result is rewritten to the next hop's registered
// local account.
func (t *Tables) FindBestHopForSourceAmount(sourceAddr, finalAddr string, amount decimal.D) (HopResult, bool) {
	v, _, ok := t.sources.Resolve(sourceAddr)
	if !ok {
		return HopResult{}, false
	}
	tbl := v.(*Table)

	res, ok := tbl.FindBestHopForSourceAmount(finalAddr, amount)
	if !ok {
		return HopResult{}, false
	}
	t.rewritePairHop(&res)
	return res, true
}

// FindBestHopForDestinationAmount is the destination-amount counterpart
// of FindBestHopForSourceAmount.
func (t *Tables) FindBestHopForDestinationAmount(sourceAddr, finalAddr string, amount decimal.D) (HopResult, bool) {
	v, _, ok := t.sources.Resolve(sourceAddr)
	if !ok {
		return HopResult{}, false
	}
	tbl := v.(*Table)

	res, ok := tbl.FindBestHopForDestinationAmount(finalAddr, amount)
	if !ok {
		return HopResult{}, false
	}
	t.rewritePairHop(&res)
	return res, true
}

func (t *Tables) rewritePairHop(res *HopResult) {
	if res.BestHop != PairHop {
		return
	}
	res.BestHop = t.localAccounts[res.BestRoute.DestinationLedger]
}

// ToJSON renders every stored route in its canonical external form, one
// record per (source, destination) pair: routes reaching the same
// destination through different connectors are collapsed by parallel
// combine into a single curve, then simplified to at most maxPoints
// points before serialization.
func (t *Tables) ToJSON(maxPoints int) []route.RouteData {
	var out []route.RouteData

	for _, src := range t.sources.Keys() {
		v, ok := t.sources.Get(src)
		if !ok {
			continue
		}
		tbl := v.(*Table)

		for _, destPrefix := range tbl.destinationPrefixes() {
			inner, ok := tbl.innerMap(destPrefix, false)
			if !ok {
				continue
			}

			nextHops := make([]string, 0, len(inner))
			for nh := range inner {
				nextHops = append(nextHops, nh)
			}
			sort.Strings(nextHops)

			var combined *route.Route
			for _, nh := range nextHops {
				r := inner[nh]
				if combined == nil {
					combined = r.Clone()
					continue
				}
				combined = combined.Combine(r)
			}
			if combined == nil {
				continue
			}

			simplified, err := combined.Curve.Simplify(maxPoints)
			if err != nil {
				log.Debugf("toJSON: keeping unsimplified curve for %s->%s: %v", src, destPrefix, err)
			} else {
				combined.Curve = simplified
			}
			combined.SourceAccount = t.localAccounts[src]

			out = append(out, combined.ToJSON())
		}
	}

	return out
}
