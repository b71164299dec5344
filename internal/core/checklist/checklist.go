// Package checklist contains the pure business logic for checklist templates
// and per-permit checklist items.
// This is part of the Functional Core - no I/O, only pure functions.
package checklist

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/permitdesk/internal/domainerr"
)

// TemplateItem is one requirement line of a template.
type TemplateItem struct {
	Label    string `yaml:"label"`
	Required bool   `yaml:"required"`
	Hint     string `yaml:"hint,omitempty"`
}

// ItemSeed is the value copied onto a permit when it is created.
type ItemSeed struct {
	Position int
	Label    string
	Required bool
	Hint     string
}

// ValidateTemplate checks a template definition before a version is created.
// Rules:
// - name is required
// - at least one item
// - every label is non-empty after trimming and unique (case-insensitive)
func ValidateTemplate(name string, items []TemplateItem) error {
	verr := &domainerr.ValidationError{}
	if strings.TrimSpace(name) == "" {
		verr.Add("name", "required")
	}
	if len(items) == 0 {
		verr.Add("items", "at least one item is required")
	}

	seen := make(map[string]int, len(items))
	for i, item := range items {
		label := strings.TrimSpace(item.Label)
		field := fmt.Sprintf("items[%d].label", i)
		if label == "" {
			verr.Add(field, "required")
			continue
		}
		key := strings.ToLower(label)
		if prev, dup := seen[key]; dup {
			verr.Add(field, fmt.Sprintf("duplicates items[%d]", prev))
			continue
		}
		seen[key] = i
	}
	return verr.OrNil()
}

// Normalize trims labels and hints.
func Normalize(items []TemplateItem) []TemplateItem {
	out := make([]TemplateItem, len(items))
	for i, item := range items {
		out[i] = TemplateItem{
			Label:    strings.TrimSpace(item.Label),
			Required: item.Required,
			Hint:     strings.TrimSpace(item.Hint),
		}
	}
	return out
}

// NextVersion returns the version number following the category's current maximum.
func NextVersion(currentMax int) int {
	if currentMax < 0 {
		currentMax = 0
	}
	return currentMax + 1
}

// Snapshot deep-copies template items into seeds for a new permit.
// The result shares no memory with the input.
func Snapshot(items []TemplateItem) []ItemSeed {
	seeds := make([]ItemSeed, len(items))
	for i, item := range items {
		seeds[i] = ItemSeed{
			Position: i,
			Label:    item.Label,
			Required: item.Required,
			Hint:     item.Hint,
		}
	}
	return seeds
}

// Completion is the completion state of one checklist item.
type Completion struct {
	Completed   bool
	CompletedBy string
	CompletedAt *time.Time
}

// ApplyCompletion computes the new completion state.
// false->true stamps actor and time; true->false clears them; same-state keeps existing stamps.
func ApplyCompletion(current Completion, completed bool, actor string, now time.Time) Completion {
	if current.Completed == completed {
		return current
	}
	if !completed {
		return Completion{}
	}
	return Completion{Completed: true, CompletedBy: actor, CompletedAt: &now}
}

// MergeFileRefs appends refs not already present, preserving order.
// Applying the same refs twice yields the same result.
func MergeFileRefs(existing, refs []string) []string {
	out := make([]string, 0, len(existing)+len(refs))
	seen := make(map[string]bool, len(existing)+len(refs))
	for _, list := range [][]string{existing, refs} {
		for _, r := range list {
			r = strings.TrimSpace(r)
			if r == "" || seen[r] {
				continue
			}
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// ItemState is the subset of item data needed to compute progress.
type ItemState struct {
	Label     string
	Required  bool
	Completed bool
}

// Progress summarizes checklist completion for a permit.
type Progress struct {
	Total           int
	Completed       int
	RequiredPending int
	PendingRequired []string
}

// ComputeProgress summarizes items in their stored order.
func ComputeProgress(items []ItemState) Progress {
	var p Progress
	for _, item := range items {
		p.Total++
		if item.Completed {
			p.Completed++
			continue
		}
		if item.Required {
			p.RequiredPending++
			p.PendingRequired = append(p.PendingRequired, item.Label)
		}
	}
	return p
}
