package domain

import "sort"

// GroupBySettlement splits a combined batch into per-settlement slices, each
// ordered by sequence number.
func GroupBySettlement(records []Record) map[string][]Record {
	groups := make(map[string][]Record)
	for _, r := range records {
		groups[r.SettlementID] = append(groups[r.SettlementID], r)
	}
	for id := range groups {
		g := groups[id]
		sort.Slice(g, func(i, j int) bool { return g[i].SequenceNumber < g[j].SequenceNumber })
		groups[id] = g
	}
	return groups
}

// SettlementIDs returns the settlement identifiers of a grouped batch in
// deterministic (lexical) order.
func SettlementIDs(groups map[string][]Record) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
