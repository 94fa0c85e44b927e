package agent

import (
	"fmt"
	"strings"

	"omni-backend/internal/constant"
)

const historyWindow = 5

// RenderHistory takes the last five turns, drops the ones without content and renders
// the rest as "role: content" lines in their original order.
func RenderHistory(history []ChatTurn) string {
	if len(history) == 0 {
		return constant.NoPriorMessages
	}

	window := history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}

	lines := make([]string, 0, len(window))
	for _, turn := range window {
		if turn.Content == "" {
			continue
		}
		role := turn.Role
		if role == "" {
			role = "user"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, turn.Content))
	}
	return strings.Join(lines, "\n")
}
