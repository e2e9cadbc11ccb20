package routing

import (
	"testing"
	"time"

	"github.com/ilplabs/routingcore/curve"
	"github.com/ilplabs/routingcore/route"
)

func identityRoute(source, dest, sourceAccount, destAccount string) *route.Route {
	return &route.Route{
		Curve:              curve.MustNew([]curve.Point{pt("0", "0"), pt("1000", "1000")}),
		Hops:               []string{source, dest},
		SourceLedger:       source,
		DestinationLedger:  dest,
		TargetPrefix:       dest,
		SourceAccount:      sourceAccount,
		DestinationAccount: destAccount,
	}
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

// mutableClock lets a test advance the composer's notion of now() between
// operations.
type mutableClock struct {
	now time.Time
}

func (c *mutableClock) Now() time.Time { return c.now }

func TestTablesTransitiveDerivation(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tables := NewTables(nil, fixedClock(now))

	routeAB := identityRoute("A.", "B.", "A.alice", "B.bob")
	routeBC := identityRoute("B.", "C.", "B.bob", "C.carl")
	tables.AddLocalRoutes([]*route.Route{routeAB, routeBC})

	epochAfterLocal := tables.CurrentEpoch()

	routeCD := identityRoute("C.", "D.", "C.dave", "D.doris")
	routeCD.IsLocal = false

	if !tables.AddRoute(routeCD) {
		t.Fatal("expected the announced route to trigger at least one derivation")
	}

	if got := tables.CurrentEpoch() - epochAfterLocal; got != 2 {
		t.Fatalf("expected currentEpoch to advance by 2, advanced by %d", got)
	}

	derived, ok := tables.GetLocalPairRoute("A.", "D.")
	if ok {
		t.Fatalf("A->D is a derived route, not a local pair, got %+v", derived)
	}

	// The derivation is stored in A's table under (D., connector), where
	// connector is routeCD's own source account.
	aTable, _ := tables.sourceTable("A.", false)
	got, ok := aTable.GetRoute("D.", "C.dave")
	if !ok {
		t.Fatal("expected derived A->D route under C->D's connector")
	}
	if got.SourceLedger != "A." || got.DestinationLedger != "D." {
		t.Fatalf("unexpected derived route endpoints: %+v", got)
	}

	if _, stillAbsent := tables.GetLocalPairRoute("A.", "C."); stillAbsent {
		t.Fatal("getLocalPairRoute(A, C) must remain absent: no direct local pair exists")
	}
}

func TestTablesAddLocalRoutesPopulatesAccounts(t *testing.T) {
	tables := NewTables(nil, fixedClock(time.Now()))
	routeAB := identityRoute("A.", "B.", "A.alice", "B.bob")
	tables.AddLocalRoutes([]*route.Route{routeAB})

	if tables.localAccounts["A."] != "A.alice" {
		t.Fatalf("expected localAccounts[A.] = A.alice, got %q", tables.localAccounts["A."])
	}
	if tables.localAccounts["B."] != "B.bob" {
		t.Fatalf("expected localAccounts[B.] = B.bob, got %q", tables.localAccounts["B."])
	}
}

func TestTablesFindBestHopRewritesPairHop(t *testing.T) {
	tables := NewTables(nil, fixedClock(time.Now()))
	routeAB := identityRoute("A.", "B.", "A.alice", "B.bob")
	tables.AddLocalRoutes([]*route.Route{routeAB})

	res, ok := tables.FindBestHopForSourceAmount("A.", "B.", amt("100"))
	if !ok {
		t.Fatal("expected a result")
	}
	if res.BestHop != "B.bob" {
		t.Fatalf("expected PAIR to be rewritten to the registered local account, got %q", res.BestHop)
	}
}

func TestTablesRemoveExpiredRoutes(t *testing.T) {
	clock := &mutableClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	holdDown := time.Minute
	tables := NewTables(&holdDown, clock.Now)

	routeAB := identityRoute("A.", "B.", "A.alice", "B.bob")
	routeBC := identityRoute("B.", "C.", "B.bob", "C.carl")
	tables.AddLocalRoutes([]*route.Route{routeAB, routeBC})

	routeCD := identityRoute("C.", "D.", "C.dave", "D.doris")
	tables.AddRoute(routeCD)

	// Advance past the derived routes' hold-down expiry; the static
	// local pairs (ExpiresAt == nil) must still survive the sweep.
	clock.now = clock.now.Add(2 * time.Minute)

	lost := tables.RemoveExpiredRoutes()
	if len(lost) == 0 {
		t.Fatal("expected at least one destination to lose a route")
	}

	if _, ok := tables.GetLocalPairRoute("A.", "B."); !ok {
		t.Fatal("local pair must survive expiry sweep")
	}
}

func TestTablesInvalidateConnector(t *testing.T) {
	holdDown := time.Minute
	now := time.Now()
	tables := NewTables(&holdDown, fixedClock(now))

	routeAB := identityRoute("A.", "B.", "A.alice", "B.bob")
	routeBC := identityRoute("B.", "C.", "B.bob", "C.carl")
	tables.AddLocalRoutes([]*route.Route{routeAB, routeBC})

	lost := tables.InvalidateConnector("B.bob")
	if len(lost) != 1 || lost[0] != "C." {
		t.Fatalf("expected invalidation of the derived A->C route (connector B.bob), got %v", lost)
	}

	if _, ok := tables.GetLocalPairRoute("A.", "B."); !ok {
		t.Fatal("local pair A->B uses PAIR as nextHop, not the connector account, and must survive")
	}
}

func TestTablesRemoveLedger(t *testing.T) {
	tables := NewTables(nil, fixedClock(time.Now()))
	routeAB := identityRoute("A.", "B.", "A.alice", "B.bob")
	routeBC := identityRoute("B.", "C.", "B.bob", "C.carl")
	tables.AddLocalRoutes([]*route.Route{routeAB, routeBC})

	tables.RemoveLedger("B.")

	if _, ok := tables.sourceTable("B.", false); ok {
		t.Fatal("expected B's own table to be removed")
	}
	if _, ok := tables.GetLocalPairRoute("A.", "B."); ok {
		t.Fatal("expected A's route touching B to be removed")
	}
}
