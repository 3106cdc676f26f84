// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package grouping randomly splits a roster into equally sized groups.

	engine := grouping.NewEngine(gen, labels.Static{Prefix: "Group"}, nil)
	groups, err := engine.Group(ctx, names, 3, "美食与甜点")

Names are shuffled with Fisher-Yates and cut into ceil(n/size)
contiguous groups; only the last group can be short. Each group is
named by the LabelGenerator. Missing or failed labels fall back to
the static "Group N" scheme, so Group only fails on bad input
(empty roster, size below 2).
*/
package grouping
