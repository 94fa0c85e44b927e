package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderHistoryEmpty(t *testing.T) {
	assert.Equal(t, "No prior messages.", RenderHistory(nil))
}

func TestRenderHistoryKeepsNonEmptyAmongLastFive(t *testing.T) {
	history := []ChatTurn{
		{Role: "user", Content: "m1"},
		{Role: "assistant", Content: "m2"},
		{Role: "user", Content: ""},
		{Role: "assistant", Content: "m4"},
		{Role: "user", Content: ""},
		{Role: "assistant", Content: "m6"},
		{Role: "user", Content: "m7"},
		{Role: "assistant", Content: "m8"},
	}

	got := RenderHistory(history)

	assert.Equal(t, "assistant: m4\nassistant: m6\nuser: m7\nassistant: m8", got)
}

func TestRenderHistoryDefaultsRole(t *testing.T) {
	assert.Equal(t, "user: hi", RenderHistory([]ChatTurn{{Content: "hi"}}))
}
