package route

import (
	"time"

	"github.com/ilplabs/routingcore/curve"
	"github.com/ilplabs/routingcore/decimal"
)

// RouteData is the canonical external (wire/broadcast) form of a Route,
// Field names match the JSON the rest of the Interledger
// ecosystem expects; FromData/ToJSON are the only places that translate
// between it and the internal Route, following the MarshallRoute /
// UnmarshallRoute split routerrpc uses for its own wire structs.
type RouteData struct {
	SourceLedger       string      `json:"source_ledger"`
	DestinationLedger  string      `json:"destination_ledger"`
	SourceAccount      string      `json:"source_account,omitempty"`
	DestinationAccount string      `json:"destination_account,omitempty"`
	Points             [][2]string `json:"points"`
	MinMessageWindow   int64       `json:"min_message_window"`
	ExpiresAt          *time.Time  `json:"expires_at,omitempty"`
	AddedDuringEpoch   int         `json:"added_during_epoch,omitempty"`
	Paths              [][]string  `json:"paths,omitempty"`
	Hops               []string    `json:"hops,omitempty"`
	TargetPrefix       string      `json:"target_prefix,omitempty"`
}

// FromData builds a Route from its external form. It validates that the
// required ledger fields are present and that the encoded curve points
// satisfy the monotonicity invariant; any failure is reported as
// ErrMalformedRouteData, not a partial Route.
func FromData(data RouteData) (*Route, error) {
	if data.SourceLedger == "" || data.DestinationLedger == "" {
		return nil, ErrMalformedRouteData
	}

	points := make([]curve.Point, len(data.Points))
	for i, p := range data.Points {
		x, err := decimal.NewFromString(p[0])
		if err != nil {
			return nil, ErrMalformedRouteData
		}
		y, err := decimal.NewFromString(p[1])
		if err != nil {
			return nil, ErrMalformedRouteData
		}
		points[i] = curve.Point{X: x, Y: y}
	}
	c, err := curve.New(points)
	if err != nil {
		return nil, ErrMalformedRouteData
	}

	r := &Route{
		Curve:              c,
		SourceLedger:       data.SourceLedger,
		DestinationLedger:  data.DestinationLedger,
		SourceAccount:      data.SourceAccount,
		DestinationAccount: data.DestinationAccount,
		MinMessageWindow:   data.MinMessageWindow,
		ExpiresAt:          data.ExpiresAt,
		AddedDuringEpoch:   data.AddedDuringEpoch,
		TargetPrefix:       data.TargetPrefix,
	}
	if r.TargetPrefix == "" {
		r.TargetPrefix = r.DestinationLedger
	}

	// Dynamic field shapes: either an ordered hops list, or a single
	// "paths" entry (the ecosystem's historical plural form), or neither
	// (a direct local pair with an implicit single hop).
	switch {
	case len(data.Hops) > 0:
		r.Hops = data.Hops
		r.NextLedger = nextLedgerFrom(data.Hops, data.SourceLedger)
	case len(data.Paths) > 0:
		r.Hops = data.Paths[0]
		r.NextLedger = nextLedgerFrom(data.Paths[0], data.SourceLedger)
	default:
		r.Hops = []string{data.SourceLedger, data.DestinationLedger}
		r.NextLedger = data.DestinationLedger
	}

	return r, nil
}

// nextLedgerFrom returns the hop immediately following source in hops. If
// hops doesn't establish one (source absent or last, or a single-element
// list), it returns the first hop; for an empty list it returns source.
func nextLedgerFrom(hops []string, source string) string {
	for i, h := range hops {
		if h == source && i+1 < len(hops) {
			return hops[i+1]
		}
	}
	if len(hops) > 0 {
		return hops[0]
	}
	return source
}

// ToJSON renders r in its canonical external form.
func (r *Route) ToJSON() RouteData {
	points := make([][2]string, len(r.Curve.Points()))
	for i, p := range r.Curve.Points() {
		points[i] = [2]string{p.X.String(), p.Y.String()}
	}

	data := RouteData{
		SourceLedger:       r.SourceLedger,
		DestinationLedger:  r.DestinationLedger,
		SourceAccount:      r.SourceAccount,
		DestinationAccount: r.DestinationAccount,
		Points:             points,
		MinMessageWindow:   r.MinMessageWindow,
		ExpiresAt:          r.ExpiresAt,
		AddedDuringEpoch:   r.AddedDuringEpoch,
		TargetPrefix:       r.TargetPrefix,
	}
	if len(r.Hops) > 0 {
		data.Hops = r.Hops
	}
	return data
}
