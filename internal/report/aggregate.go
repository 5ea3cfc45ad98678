// Package report groups already-loaded entities into chart-ready aggregates.
package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Unspecified is the group key for entities with no value for the grouping field.
const Unspecified = "Sin especificar"

// Order selects how groups are sorted.
type Order int

const (
	// ByCount sorts by count, highest first.
	ByCount Order = iota
	// ByRevenue sorts by revenue, highest first.
	ByRevenue
	// ByKey sorts by key ascending, e.g. chronologically for "2006-01" buckets.
	ByKey
)

// Group is one aggregate bucket.
type Group struct {
	Key     string          `json:"key"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Spec describes how to group items of type T.
type Spec[T any] struct {
	Key func(T) string
	// Count weighs an item; nil counts each item once.
	Count func(T) int
	// Revenue is summed per group; nil leaves revenue at zero.
	Revenue func(T) decimal.Decimal
	Order   Order
}

// Aggregate groups items in one pass. Ties are broken by the other measure and
// then by key so the output order is stable. Empty input gives an empty list.
func Aggregate[T any](items []T, spec Spec[T]) []Group {
	index := make(map[string]int)
	groups := []Group{}
	for _, item := range items {
		key := strings.TrimSpace(spec.Key(item))
		if key == "" {
			key = Unspecified
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		if spec.Count != nil {
			groups[i].Count += spec.Count(item)
		} else {
			groups[i].Count++
		}
		if spec.Revenue != nil {
			groups[i].Revenue = groups[i].Revenue.Add(spec.Revenue(item))
		}
	}

	sort.SliceStable(groups, func(a, b int) bool {
		ga, gb := groups[a], groups[b]
		switch spec.Order {
		case ByRevenue:
			if c := ga.Revenue.Cmp(gb.Revenue); c != 0 {
				return c > 0
			}
			if ga.Count != gb.Count {
				return ga.Count > gb.Count
			}
		case ByCount:
			if ga.Count != gb.Count {
				return ga.Count > gb.Count
			}
			if c := ga.Revenue.Cmp(gb.Revenue); c != 0 {
				return c > 0
			}
		}
		return ga.Key < gb.Key
	})
	return groups
}
