package search

import (
	"testing"

	"github.com/mmcdole/roster/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var staff = []domain.Record{
	{ID: 1, Title: "Ada Lovelace"},
	{ID: 2, Title: "Grace Hopper"},
	{ID: 3, Title: "Alan Turing"},
	{ID: 4, Title: "Unknown"},
}

func ids(records []domain.Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilter_EmptyQueryKeepsEverything(t *testing.T) {
	matches := Filter(staff, "  ")
	require.Len(t, matches, 4)
	for i, m := range matches {
		assert.Equal(t, staff[i], m.Record)
		assert.Equal(t, i, m.Index)
	}
}

func TestFilter_CaseInsensitive(t *testing.T) {
	matches := Filter(staff, "HOPPER")
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].Record.ID)
	assert.Equal(t, 1, matches[0].Index)
	assert.Equal(t, []int{6, 7, 8, 9, 10, 11}, matches[0].MatchedIndexes)
}

func TestFilter_NoMatch(t *testing.T) {
	assert.Empty(t, Filter(staff, "zzz"))
}

func TestRank(t *testing.T) {
	got := Rank(staff, "al")
	// "Ada Lovelace" and "Alan Turing" both contain a, l in order
	assert.ElementsMatch(t, []int{1, 3}, ids(got))
	// Closer title (fewer extra characters) ranks first
	assert.Equal(t, 3, got[0].ID)
}

func TestRank_EmptyQuery(t *testing.T) {
	assert.Equal(t, staff, Rank(staff, ""))
}

func TestRank_FoldsCase(t *testing.T) {
	assert.Equal(t, []int{4}, ids(Rank(staff, "UNKNOWN")))
}
