// Package matcher reconciles source-side product labels with canonical catalog names.
package matcher

import (
	"sort"
	"strings"
)

// Resolve finds the catalog name that label refers to.
//
// An exact (case-sensitive) match always wins. Otherwise a name matches when
// either string contains the other. Several containment matches are ranked by
// the smallest length difference to label, then the longest name, then lexical
// order, so "NVIDIA GeForce RTX 4090 Ti" resolves to "RTX 4090 Ti" rather than
// "RTX 4090" regardless of catalog order.
func Resolve(label string, names []string) (string, bool) {
	if label == "" {
		return "", false
	}

	var candidates []string
	for _, name := range names {
		d, ok := Distance(label, name)
		if !ok {
			continue
		}
		if d == 0 {
			return name, true
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		da, db := lengthDiff(a, label), lengthDiff(b, label)
		if da != db {
			return da < db
		}
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return candidates[0], true
}

// Distance reports how closely label identifies name. An exact match is 0, a
// containment match is the length difference, and anything else does not match.
// Lower is better, the same order Resolve uses.
func Distance(label, name string) (int, bool) {
	if label == "" || name == "" {
		return 0, false
	}
	if label == name {
		return 0, true
	}
	if strings.Contains(label, name) || strings.Contains(name, label) {
		return lengthDiff(label, name), true
	}
	return 0, false
}

func lengthDiff(a, b string) int {
	d := len(a) - len(b)
	if d < 0 {
		return -d
	}
	return d
}
