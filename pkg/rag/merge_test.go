package rag

import (
	"strings"
	"testing"

	"omni-backend/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v float64) *float64 { return &v }

func hit(id string, s *float64, text string) vectorstore.Hit {
	return vectorstore.Hit{ID: id, Score: s, Payload: vectorstore.NewPayload(text, nil)}
}

func TestMergeRanksAcrossCollections(t *testing.T) {
	res := Merge([]CollectionHits{
		{Collection: "general_docs", Hits: []vectorstore.Hit{hit("A", score(0.5), "alpha"), hit("B", score(0.9), "bravo")}},
		{Collection: "personal_knowledge", Hits: []vectorstore.Hit{hit("C", score(0.7), "charlie")}},
	})

	require.Len(t, res.Sources, 3)
	assert.Equal(t, "B", res.Sources[0].ID)
	assert.Equal(t, "C", res.Sources[1].ID)
	assert.Equal(t, "A", res.Sources[2].ID)
	assert.Equal(t, "personal_knowledge", res.Sources[1].Collection)
	assert.Equal(t, "[1] bravo\n\n[2] charlie\n\n[3] alpha", res.RawContext)
}

func TestMergeWithNoHits(t *testing.T) {
	res := Merge([]CollectionHits{{Collection: "general_docs"}, {Collection: "personal_knowledge"}})

	assert.Empty(t, res.Sources)
	assert.NotNil(t, res.Sources)
	assert.Equal(t, NoResultsSummary, res.Summary)
	assert.Equal(t, "", res.RawContext)
}

func TestMergeTiesKeepConcatenationOrder(t *testing.T) {
	res := Merge([]CollectionHits{
		{Collection: "g", Hits: []vectorstore.Hit{hit("g1", score(0.5), "x"), hit("g2", nil, "y")}},
		{Collection: "p", Hits: []vectorstore.Hit{hit("p1", score(0.5), "z"), hit("p2", score(0), "w")}},
	})

	ids := make([]string, len(res.Sources))
	for i, s := range res.Sources {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"g1", "p1", "g2", "p2"}, ids)
	assert.Equal(t, 0.0, res.Sources[2].Score)
}

func TestMergeSummaryUsesFirstThreeChunks(t *testing.T) {
	res := Merge([]CollectionHits{{Collection: "g", Hits: []vectorstore.Hit{
		hit("1", score(0.9), "one"),
		hit("2", score(0.8), "two"),
		hit("3", score(0.7), "three"),
		hit("4", score(0.6), "four"),
	}}})

	expected := "Retrieved the following context snippets from the knowledge base:\n\n[1] one\n\n[2] two\n\n[3] three"
	assert.Equal(t, expected, res.Summary)
	assert.Contains(t, res.RawContext, "[4] four")
}

func TestMergePreview(t *testing.T) {
	long := "line one\nline two " + strings.Repeat("x", 300)
	res := Merge([]CollectionHits{{Collection: "g", Hits: []vectorstore.Hit{hit("1", score(1), long)}}})

	p := res.Sources[0].TextPreview
	assert.NotContains(t, p, "\n")
	assert.True(t, strings.HasPrefix(p, "line one line two"))
	assert.Len(t, []rune(p), 200)
	assert.Contains(t, res.RawContext, "line one\nline two")
}

func TestMergeToleratesMissingPayload(t *testing.T) {
	res := Merge([]CollectionHits{{Collection: "g", Hits: []vectorstore.Hit{{ID: "bare", Score: score(0.1)}}}})

	require.Len(t, res.Sources, 1)
	assert.Equal(t, "", res.Sources[0].TextPreview)
	assert.Equal(t, map[string]any{}, res.Sources[0].Metadata)
	assert.Equal(t, "[1] ", res.RawContext)
}
