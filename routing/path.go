package routing

import (
	"github.com/ilplabs/routingcore/decimal"
	"github.com/ilplabs/routingcore/route"
)

// candidate is one contender in a best-hop comparison: a next hop and the
// route it reaches the destination through, along with the metric
// (value or cost) computed for the query at hand. Exactly one of value or
// cost is ever set by this package's callers, but getBetterPath handles
// the general case regardless.
type candidate struct {
	nextHop    string
	route      *route.Route
	pathLength int
	value      *decimal.D
	cost       *decimal.D
}

// getBetterPath implements the path comparison order:
//
//  1. If currentPath is nil, otherPath wins.
//  2. If exactly one of the two defines value, that one wins; same for
//     cost.
//  3. If both define value: higher value wins, ties go to shorter
//     pathLength, further ties keep currentPath.
//  4. If both define cost: lower cost wins, ties go to shorter pathLength,
//     further ties keep currentPath.
//  5. If neither defines value or cost: shorter pathLength wins, ties keep
//     currentPath.
func getBetterPath(currentPath, otherPath *candidate) *candidate {
	if currentPath == nil {
		return otherPath
	}

	if (currentPath.value != nil) != (otherPath.value != nil) {
		if otherPath.value != nil {
			return otherPath
		}
		return currentPath
	}
	if (currentPath.cost != nil) != (otherPath.cost != nil) {
		if otherPath.cost != nil {
			return otherPath
		}
		return currentPath
	}

	switch {
	case currentPath.value != nil && otherPath.value != nil:
		cmp := otherPath.value.Cmp(*currentPath.value)
		switch {
		case cmp > 0:
			return otherPath
		case cmp < 0:
			return currentPath
		default:
			return shorterPathWins(currentPath, otherPath)
		}

	case currentPath.cost != nil && otherPath.cost != nil:
		cmp := otherPath.cost.Cmp(*currentPath.cost)
		switch {
		case cmp < 0:
			return otherPath
		case cmp > 0:
			return currentPath
		default:
			return shorterPathWins(currentPath, otherPath)
		}

	default:
		return shorterPathWins(currentPath, otherPath)
	}
}

func shorterPathWins(currentPath, otherPath *candidate) *candidate {
	if otherPath.pathLength < currentPath.pathLength {
		return otherPath
	}
	return currentPath
}
