package model

import "sort"

// FanSection accumulates the rows of one fan list across page loads.
type FanSection[N any] struct {
	Items      []N    `json:"items"`
	LastToken  string `json:"lastToken,omitempty"`
	HasMore    bool   `json:"hasMore"`
	TotalCount int    `json:"totalCount,omitempty"`
}

// SectionPage is one page returned by a list endpoint.
type SectionPage[N any] struct {
	HasMore   bool   `json:"hasMore"`
	LastToken string `json:"lastToken,omitempty"`
	Items     []N    `json:"items"`
}

// SectionNode is the pointer constraint shared by list nodes.
type SectionNode[N any] interface {
	*N
	MergeKey() (int64, bool)
	SortDate() string
	Merge(src *N)
}

// MergeSection merges page into sec in place. Rows matching an existing
// item id refine that row; rows without an id are appended. The paging
// cursor always advances to the page's.
func MergeSection[N any, P SectionNode[N]](sec *FanSection[N], page SectionPage[N], sortByDate bool) {
	sec.Items = MergeItems[N, P](sec.Items, page.Items, sortByDate)
	if page.LastToken != "" {
		sec.LastToken = page.LastToken
	}
	sec.HasMore = page.HasMore
	if len(sec.Items) > sec.TotalCount {
		sec.TotalCount = len(sec.Items)
	}
}

// MergeItems merges incoming rows into existing ones and optionally sorts
// the result newest first. Equal dates fall back to rows with an id
// first, ascending id, then original order.
func MergeItems[N any, P SectionNode[N]](existing, incoming []N, sortByDate bool) []N {
	out := make([]N, len(existing), len(existing)+len(incoming))
	copy(out, existing)

	index := make(map[int64]int, len(out))
	for i := range out {
		if key, ok := P(&out[i]).MergeKey(); ok {
			if _, seen := index[key]; !seen {
				index[key] = i
			}
		}
	}

	for i := range incoming {
		row := incoming[i]
		key, ok := P(&row).MergeKey()
		if ok {
			if at, found := index[key]; found {
				P(&out[at]).Merge(&row)
				continue
			}
			index[key] = len(out)
		}
		out = append(out, row)
	}

	if sortByDate {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := P(&out[i]), P(&out[j])
			da, db := a.SortDate(), b.SortDate()
			if da != db {
				return da > db
			}
			ka, oka := a.MergeKey()
			kb, okb := b.MergeKey()
			if oka != okb {
				return oka
			}
			return oka && ka < kb
		})
	}
	return out
}
