package rag

import (
	"fmt"
	"sort"
	"strings"

	"omni-backend/pkg/vectorstore"
)

const (
	previewLength     = 200
	summaryChunkCount = 3

	NoResultsSummary = "No relevant documents were retrieved from the knowledge base."
	summaryLeadIn    = "Retrieved the following context snippets from the knowledge base:"
)

// RetrievedSource is one ranked hit as exposed to stages and API callers.
type RetrievedSource struct {
	ID          string         `json:"id"`
	Collection  string         `json:"collection"`
	Score       float64        `json:"score"`
	TextPreview string         `json:"text_preview"`
	Metadata    map[string]any `json:"metadata"`
}

type RagResult struct {
	Summary    string            `json:"summary"`
	Sources    []RetrievedSource `json:"sources"`
	RawContext string            `json:"raw_context"`
}

// CollectionHits is the already capped hit list returned by one collection.
type CollectionHits struct {
	Collection string
	Hits       []vectorstore.Hit
}

type taggedHit struct {
	collection string
	hit        vectorstore.Hit
}

// Merge ranks hits from every collection together. Lists are concatenated in the given order
// and sorted by descending score with a stable sort, so ties keep collection order and then
// per-collection rank. No truncation happens here.
func Merge(results []CollectionHits) RagResult {
	var all []taggedHit
	for _, r := range results {
		for _, h := range r.Hits {
			all = append(all, taggedHit{collection: r.Collection, hit: h})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return scoreOf(all[i].hit) > scoreOf(all[j].hit)
	})

	sources := make([]RetrievedSource, 0, len(all))
	chunks := make([]string, 0, len(all))

	for i, t := range all {
		text := payloadText(t.hit.Payload)
		sources = append(sources, RetrievedSource{
			ID:          t.hit.ID,
			Collection:  t.collection,
			Score:       scoreOf(t.hit),
			TextPreview: preview(text),
			Metadata:    payloadMetadata(t.hit.Payload),
		})
		chunks = append(chunks, fmt.Sprintf("[%d] %s", i+1, text))
	}

	summary := NoResultsSummary
	if len(chunks) > 0 {
		head := chunks
		if len(head) > summaryChunkCount {
			head = head[:summaryChunkCount]
		}
		summary = summaryLeadIn + "\n\n" + strings.Join(head, "\n\n")
	}

	return RagResult{
		Summary:    summary,
		Sources:    sources,
		RawContext: strings.Join(chunks, "\n\n"),
	}
}

func scoreOf(h vectorstore.Hit) float64 {
	if h.Score == nil {
		return 0
	}
	return *h.Score
}

// preview takes the first 200 characters, then collapses newlines and trims.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return strings.TrimSpace(strings.ReplaceAll(string(runes), "\n", " "))
}

func payloadText(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	text, _ := payload["text"].(string)
	return text
}

func payloadMetadata(payload map[string]any) map[string]any {
	if payload != nil {
		if meta, ok := payload["metadata"].(map[string]any); ok && meta != nil {
			return meta
		}
	}
	return map[string]any{}
}
