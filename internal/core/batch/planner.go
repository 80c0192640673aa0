// Package batch contains the pure planning logic for batch replays: id
// normalization, grouping by (route join, shipment number), and collapsing
// each group into an ordered sequence of stage steps.
package batch

import (
	"fmt"
	"sort"

	"github.com/example/loadmatch/internal/core/stage"
)

// DefaultCap is the maximum number of ids accepted per batch.
const DefaultCap = 500

// Member is one import record that resolved to a group.
type Member struct {
	ImportID       int64
	JoinID         int64
	ShipmentNumber string
	Rank           int
}

// Step is one stage application within a group.
type Step struct {
	Rank     int         `json:"rank"`
	Stage    stage.Stage `json:"stage"`
	ImportID int64       `json:"import_id"`
}

// Group is the replay plan for one (join, shipment number) pair.
type Group struct {
	Key            string `json:"group_key"`
	JoinID         int64  `json:"join_id"`
	ShipmentNumber string `json:"shipment_number"`
	Steps          []Step `json:"steps"`
}

// Ranks returns the distinct ranks of the plan in replay order.
func (g Group) Ranks() []int {
	ranks := make([]int, len(g.Steps))
	for i, s := range g.Steps {
		ranks[i] = s.Rank
	}
	return ranks
}

// GroupKey renders the lock and grouping key of a group.
func GroupKey(joinID int64, shipmentNumber string) string {
	return fmt.Sprintf("%d|%s", joinID, shipmentNumber)
}

// NormalizeIDs drops non-positive ids, removes duplicates keeping the first
// occurrence, and truncates to limit. A non-positive limit means DefaultCap.
func NormalizeIDs(ids []int64, limit int) []int64 {
	if limit <= 0 {
		limit = DefaultCap
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Plan groups members by key, keeps the lowest import id per rank and
// orders each group's steps by ascending rank. Groups are ordered by their
// lowest member id so plans are deterministic regardless of input order.
func Plan(members []Member) []Group {
	type acc struct {
		group    Group
		byRank   map[int]int64
		lowestID int64
	}
	groups := make(map[string]*acc)

	for _, m := range members {
		key := GroupKey(m.JoinID, m.ShipmentNumber)
		a, ok := groups[key]
		if !ok {
			a = &acc{
				group:    Group{Key: key, JoinID: m.JoinID, ShipmentNumber: m.ShipmentNumber},
				byRank:   make(map[int]int64),
				lowestID: m.ImportID,
			}
			groups[key] = a
		}
		if m.ImportID < a.lowestID {
			a.lowestID = m.ImportID
		}
		if cur, ok := a.byRank[m.Rank]; !ok || m.ImportID < cur {
			a.byRank[m.Rank] = m.ImportID
		}
	}

	accs := make([]*acc, 0, len(groups))
	for _, a := range groups {
		ranks := make([]int, 0, len(a.byRank))
		for r := range a.byRank {
			ranks = append(ranks, r)
		}
		sort.Ints(ranks)
		for _, r := range ranks {
			a.group.Steps = append(a.group.Steps, Step{Rank: r, Stage: stage.FromRank(r), ImportID: a.byRank[r]})
		}
		accs = append(accs, a)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].lowestID < accs[j].lowestID })

	plans := make([]Group, len(accs))
	for i, a := range accs {
		plans[i] = a.group
	}
	return plans
}
