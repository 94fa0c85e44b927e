package agent

import (
	"encoding/json"

	"omni-backend/pkg/llm"
)

// NormalizePlan maps a structured planner reply onto a Plan. Missing or wrongly shaped
// fields fall back to their defaults: complexity "normal", needs_research true, empty lists.
func NormalizePlan(result llm.StructuredResult) Plan {
	plan := Plan{
		Complexity:    ComplexityNormal,
		NeedsResearch: true,
		Goals:         []string{},
		Steps:         []string{},
		Constraints:   []string{},
	}

	parsed, ok := result.(llm.Parsed)
	if !ok {
		return plan
	}

	if v, ok := parsed.Fields["complexity"].(string); ok && validComplexity(v) {
		plan.Complexity = v
	}
	if v, ok := parsed.Fields["needs_research"].(bool); ok {
		plan.NeedsResearch = v
	}
	if list, ok := parsed.Fields["goals"].([]any); ok {
		plan.Goals = stringList(list)
	}
	if list, ok := parsed.Fields["steps"].([]any); ok {
		plan.Steps = stringList(list)
	}
	if list, ok := parsed.Fields["constraints"].([]any); ok {
		plan.Constraints = stringList(list)
	}
	return plan
}

// NormalizeTesterReview maps a structured tester reply onto a TesterReview. A scalar is
// wrapped as a one-element list; absent or null fields become empty lists.
func NormalizeTesterReview(result llm.StructuredResult) TesterReview {
	review := TesterReview{
		Issues:      []string{},
		Fixes:       []string{},
		SafetyFlags: []string{},
	}

	switch r := result.(type) {
	case llm.Parsed:
		review.Issues = coerceList(r.Fields["issues"])
		review.Fixes = coerceList(r.Fields["fixes"])
		review.SafetyFlags = coerceList(r.Fields["safety_flags"])
	case llm.Unparsed:
		// no keys to read
	}
	return review
}

func validComplexity(v string) bool {
	switch v {
	case ComplexitySimple, ComplexityNormal, ComplexityComplex:
		return true
	}
	return false
}

func coerceList(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []any:
		return stringList(v)
	default:
		return []string{stringify(v)}
	}
}

func stringList(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, stringify(v))
	}
	return out
}

// stringify keeps strings as they are and renders anything else as compact JSON.
func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	b, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(b)
}
