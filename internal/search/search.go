// Package search narrows the displayed records by title.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"github.com/mmcdole/roster/internal/domain"
)

// Match is a filtered record with highlight metadata
type Match struct {
	Record         domain.Record
	Index          int   // Position in the source slice
	MatchedIndexes []int // Rune positions in the title that matched
	Score          int   // Higher is better
}

// recordIndex implements sahilm/fuzzy.Source over lowercase titles
type recordIndex struct {
	records     []domain.Record
	lowerTitles []string
}

func newRecordIndex(records []domain.Record) *recordIndex {
	idx := &recordIndex{records: records, lowerTitles: make([]string, len(records))}
	for i, r := range records {
		idx.lowerTitles[i] = strings.ToLower(r.Title)
	}
	return idx
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *recordIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of records (implements fuzzy.Source)
func (idx *recordIndex) Len() int { return len(idx.records) }

// Filter returns the records whose title fuzzily matches query, best first.
// An empty query matches everything in source order.
func Filter(records []domain.Record, query string) []Match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]Match, len(records))
		for i, r := range records {
			out[i] = Match{Record: r, Index: i}
		}
		return out
	}

	idx := newRecordIndex(records)
	found := sfuzzy.FindFrom(query, idx)

	out := make([]Match, len(found))
	for i, m := range found {
		out[i] = Match{
			Record:         records[m.Index],
			Index:          m.Index,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return out
}

// Rank returns the records whose title contains the characters of query in
// order (case-insensitive), closest titles first. Ties keep source order.
func Rank(records []domain.Record, query string) []domain.Record {
	query = strings.TrimSpace(query)
	if query == "" {
		return records
	}

	titles := make([]string, len(records))
	for i, r := range records {
		titles[i] = r.Title
	}

	ranks := fuzzy.RankFindFold(query, titles)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]domain.Record, len(ranks))
	for i, r := range ranks {
		out[i] = records[r.OriginalIndex]
	}
	return out
}
