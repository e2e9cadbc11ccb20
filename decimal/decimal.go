// Package decimal provides the arbitrary-precision decimal value used
// throughout the curve and routing algebra. D wraps shopspring/decimal
// and adds an explicit infinity sentinel for "unachievable" results; it
// is the concrete type curve, route and routing are all written against.
package decimal

import (
	"fmt"

	shopspring "github.com/shopspring/decimal"
)

// D is the arbitrary-precision decimal value the curve and routing
// algebra is written against. The zero value of D is zero; infinite
// values are produced only via Infinity() and mean "unachievable" per
// Curve.AmountReverse.
type D struct {
	val shopspring.Decimal
	inf bool
}

// Zero is the additive identity.
var Zero = D{val: shopspring.Zero}

// Infinity returns the positive-infinity sentinel used by
// Curve.AmountReverse to signal that a destination amount cannot be
// achieved by any point on the curve.
func Infinity() D {
	return D{inf: true}
}

// NewFromString parses a decimal string such as would appear in a RouteData
// point or an external amount field.
func NewFromString(s string) (D, error) {
	v, err := shopspring.NewFromString(s)
	if err != nil {
		return D{}, fmt.Errorf("decimal: invalid value %q: %w", s, err)
	}
	if v.Sign() < 0 {
		return D{}, fmt.Errorf("decimal: negative value %q not allowed", s)
	}
	return D{val: v}, nil
}

// MustFromString is NewFromString but panics on error; useful for
// constructing fixtures and tests where the value is a compile-time
// constant.
func MustFromString(s string) D {
	d, err := NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewFromInt builds a D from a non-negative integer.
func NewFromInt(i int64) D {
	if i < 0 {
		panic("decimal: negative value not allowed")
	}
	return D{val: shopspring.NewFromInt(i)}
}

// Add returns d + other. Adding to or from infinity yields infinity.
func (d D) Add(other D) D {
	if d.inf || other.inf {
		return Infinity()
	}
	return D{val: d.val.Add(other.val)}
}

// Sub returns d - other. Subtracting a finite value from infinity yields
// infinity; subtracting infinity from a finite value is not meaningful for
// this algebra and also yields infinity, since no finite value dominates
// "unachievable".
func (d D) Sub(other D) D {
	if d.inf || other.inf {
		return Infinity()
	}
	return D{val: d.val.Sub(other.val)}
}

// Mul returns d * other. Infinity propagates through multiplication by any
// non-zero factor; multiplying infinity by exactly zero is treated as
// zero, matching how a zero-width segment collapses a rate computation.
func (d D) Mul(other D) D {
	if d.inf || other.inf {
		if !d.inf && d.IsZero() {
			return Zero
		}
		if !other.inf && other.IsZero() {
			return Zero
		}
		return Infinity()
	}
	return D{val: d.val.Mul(other.val)}
}

// Div returns d / other. Division by zero returns Infinity rather than
// panicking, consistent with AmountReverse's "unachievable" sentinel.
func (d D) Div(other D) D {
	if d.inf {
		return Infinity()
	}
	if other.inf {
		return Zero
	}
	if other.val.IsZero() {
		return Infinity()
	}
	return D{val: d.val.Div(other.val)}
}

// Cmp compares d to other: -1 if d < other, 0 if equal, 1 if d > other.
// Infinity compares greater than every finite value and equal to itself.
func (d D) Cmp(other D) int {
	switch {
	case d.inf && other.inf:
		return 0
	case d.inf:
		return 1
	case other.inf:
		return -1
	default:
		return d.val.Cmp(other.val)
	}
}

// IsZero reports whether d is exactly zero. Infinity is never zero.
func (d D) IsZero() bool {
	return !d.inf && d.val.IsZero()
}

// IsInfinite reports whether d is the unachievable sentinel.
func (d D) IsInfinite() bool {
	return d.inf
}

// Sign returns -1, 0 or 1. Infinity has sign 1.
func (d D) Sign() int {
	if d.inf {
		return 1
	}
	return d.val.Sign()
}

// String renders d in canonical decimal-string form, the external form
// used by RouteData points and query results. Infinity renders as "+inf"
// and should never reach an external payload; callers are expected to
// detect IsInfinite() and surface "unachievable" instead.
func (d D) String() string {
	if d.inf {
		return "+inf"
	}
	return d.val.String()
}

// Max returns the greater of a and b.
func Max(a, b D) D {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Min returns the lesser of a and b.
func Min(a, b D) D {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
