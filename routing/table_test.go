package routing

import (
	"testing"

	"github.com/ilplabs/routingcore/curve"
	"github.com/ilplabs/routingcore/decimal"
	"github.com/ilplabs/routingcore/route"
)

func pt(x, y string) curve.Point {
	return curve.Point{X: decimal.MustFromString(x), Y: decimal.MustFromString(y)}
}

func amt(s string) decimal.D {
	return decimal.MustFromString(s)
}

func newRoute(sourceLedger, destLedger string, points []curve.Point) *route.Route {
	return &route.Route{
		Curve:             curve.MustNew(points),
		Hops:              []string{sourceLedger, destLedger},
		SourceLedger:      sourceLedger,
		DestinationLedger: destLedger,
		TargetPrefix:      destLedger,
	}
}

func TestTableStoreAndRetrieve(t *testing.T) {
	tbl := NewTable()
	r := newRoute("A.", "B.", []curve.Point{pt("0", "0"), pt("100", "100")})

	tbl.AddRoute("B.", "B.mark", r)

	got, ok := tbl.GetRoute("B.", "B.mark")
	if !ok {
		t.Fatal("expected route to be stored")
	}
	if got != r {
		t.Fatalf("got different route back: %+v", got)
	}
}

func TestTableRemoveRoute(t *testing.T) {
	tbl := NewTable()
	r := newRoute("A.", "B.", []curve.Point{pt("0", "0"), pt("100", "100")})
	tbl.AddRoute("B.", "B.mark", r)

	if !tbl.RemoveRoute("B.", "B.mark") {
		t.Fatal("expected removal to report success")
	}
	if tbl.RemoveRoute("B.", "B.mark") {
		t.Fatal("expected second removal to report no-op")
	}
	if _, ok := tbl.GetRoute("B.", "B.mark"); ok {
		t.Fatal("expected route to be gone")
	}
	if len(tbl.destinationPrefixes()) != 0 {
		t.Fatal("expected empty inner map to be pruned")
	}
}

func TestFindBestHopForSourceAmount(t *testing.T) {
	tbl := NewTable()
	mark := newRoute("A.", "B.", []curve.Point{pt("0", "0"), pt("100", "100")})
	mary := newRoute("A.", "B.", []curve.Point{pt("0", "0"), pt("50", "60")})
	tbl.AddRoute("B.", "B.mark", mark)
	tbl.AddRoute("B.", "B.mary", mary)

	cases := []struct {
		amount      string
		wantHop     string
		wantValue   string
	}{
		{"50", "B.mary", "60"},
		{"70", "B.mark", "70"},
		{"200", "B.mark", "100"},
	}
	for _, tc := range cases {
		res, ok := tbl.FindBestHopForSourceAmount("B.", amt(tc.amount))
		if !ok {
			t.Fatalf("amount %s: expected a result", tc.amount)
		}
		if res.BestHop != tc.wantHop || res.BestValue != tc.wantValue {
			t.Fatalf("amount %s: got {%s, %s}, want {%s, %s}",
				tc.amount, res.BestHop, res.BestValue, tc.wantHop, tc.wantValue)
		}
	}
}

func TestFindBestHopPrefersShortPath(t *testing.T) {
	tbl := NewTable()

	mark := newRoute("A.", "B.", []curve.Point{pt("0", "0"), pt("100", "999")})
	mark.Hops = []string{"A.", "B."}

	mary := newRoute("A.", "B.", []curve.Point{pt("0", "0"), pt("100", "100")})
	mary.Hops = []string{"A.", "C.", "B."}

	tbl.AddRoute("B.", "B.mark", mark)
	tbl.AddRoute("B.", "B.mary", mary)

	res, ok := tbl.FindBestHopForSourceAmount("B.", amt("50"))
	if !ok {
		t.Fatal("expected a result")
	}
	if res.BestHop != "B.mark" {
		t.Fatalf("expected B.mark to win, got %s", res.BestHop)
	}
}

func TestFindBestHopPrefersShortPathOnTie(t *testing.T) {
	tbl := NewTable()

	short := newRoute("A.", "B.", []curve.Point{pt("0", "0"), pt("100", "100")})
	short.Hops = []string{"A.", "B."}

	long := newRoute("A.", "B.", []curve.Point{pt("0", "0"), pt("100", "100")})
	long.Hops = []string{"A.", "C.", "B."}

	tbl.AddRoute("B.", "B.short", short)
	tbl.AddRoute("B.", "B.long", long)

	res, ok := tbl.FindBestHopForSourceAmount("B.", amt("50"))
	if !ok {
		t.Fatal("expected a result")
	}
	if res.BestHop != "B.short" {
		t.Fatalf("expected tie-break toward the shorter path, got %s", res.BestHop)
	}
}

func TestFindBestHopForDestinationAmount(t *testing.T) {
	tbl := NewTable()
	mark := newRoute("A.", "B.", []curve.Point{pt("0", "0"), pt("100", "100")})
	mary := newRoute("A.", "B.", []curve.Point{pt("0", "0"), pt("50", "60")})
	tbl.AddRoute("B.", "B.mark", mark)
	tbl.AddRoute("B.", "B.mary", mary)

	res, ok := tbl.FindBestHopForDestinationAmount("B.", amt("60"))
	if !ok || res.BestHop != "B.mary" || res.BestCost != "50" {
		t.Fatalf("amount 60: got %+v, ok=%v", res, ok)
	}

	res, ok = tbl.FindBestHopForDestinationAmount("B.", amt("70"))
	if !ok || res.BestHop != "B.mark" || res.BestCost != "70" {
		t.Fatalf("amount 70: got %+v, ok=%v", res, ok)
	}
}

func TestFindBestHopForDestinationAmountUnachievableIsAbsent(t *testing.T) {
	tbl := NewTable()
	mark := newRoute("A.", "B.", []curve.Point{pt("0", "0"), pt("100", "100")})
	tbl.AddRoute("B.", "B.mark", mark)

	_, ok := tbl.FindBestHopForDestinationAmount("B.", amt("200"))
	if ok {
		t.Fatal("expected an unachievable destination amount to be absent")
	}
}

func TestFindBestHopAbsentWithoutStoredDestination(t *testing.T) {
	tbl := NewTable()
	if _, ok := tbl.FindBestHopForSourceAmount("Z.", amt("10")); ok {
		t.Fatal("expected absent result for unknown destination")
	}
}
