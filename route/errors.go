package route

import goerrors "github.com/go-errors/errors"

// ErrMalformedRouteData is returned by FromData when a required field is
// missing or a curve's points violate the monotonicity invariant.
var ErrMalformedRouteData = goerrors.Errorf("route: malformed route data")
