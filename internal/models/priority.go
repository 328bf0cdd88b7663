package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/starford/assistant/internal/apperr"
)

// Priority ranks a task.
type Priority string

// Task priorities.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists every valid priority, highest first. Position i+1 is the
// menu digit ParsePriority accepts.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// legacy labels written by the original Russian-language tool.
var legacyPriorities = map[string]Priority{
	"высокий": PriorityHigh,
	"средний": PriorityMedium,
	"низкий":  PriorityLow,
}

// ParsePriority accepts a menu digit (1-3), an English name in any case,
// or a legacy localized label.
func ParsePriority(s string) (Priority, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "1", "high":
		return PriorityHigh, nil
	case "2", "medium":
		return PriorityMedium, nil
	case "3", "low":
		return PriorityLow, nil
	}
	if p, ok := legacyPriorities[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", apperr.ErrMalformedInput, s)
}

// UnmarshalJSON accepts every spelling ParsePriority does, so stores written
// with localized labels still load.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
