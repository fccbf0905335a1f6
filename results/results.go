// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package results computes live vote counts from a session's ledger.
package results

import "github.com/danielhkuo/livepoll/models"

// Aggregate counts votes per option. Every declared option is present, with
// zero when nobody chose it. The result depends only on the final ledger, so
// it is safe to recompute on every change.
func Aggregate(options []string, ledger models.Ledger) models.Results {
	counts := make(models.Results, len(options))
	for _, opt := range options {
		counts[opt] = 0
	}
	for _, choice := range ledger {
		counts[choice]++
	}
	return counts
}

// Total returns the number of votes counted in r.
func Total(r models.Results) int {
	total := 0
	for _, n := range r {
		total += n
	}
	return total
}
