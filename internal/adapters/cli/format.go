// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting, but delegate
// business logic to services.
package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/example/permitdesk/internal/ports/primary"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

const rule = "────────────────────────────────────────────────────────────────"

// StatusColor renders a permit status in its display colour.
func StatusColor(status string) string {
	switch status {
	case "APPROVED", "done":
		return green(status)
	case "SUBMITTED":
		return cyan(status)
	case "REJECTED", "EXPIRED":
		return red(status)
	case "PENDING", "open":
		return yellow(status)
	}
	return status
}

// CheckMark renders a checklist item state.
func CheckMark(completed bool) string {
	if completed {
		return green("[x]")
	}
	return "[ ]"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// PrintDeletionPlan lists what a delete would remove.
func PrintDeletionPlan(out io.Writer, plan *primary.DeletionPlan) {
	fmt.Fprintf(out, "Deleting %s %s would remove:\n", plan.Entity, plan.RootID)

	keys := make([]string, 0, len(plan.Counts))
	for k := range plan.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-12s %d\n", k, plan.Counts[k])
	}
	for _, group := range []struct {
		label string
		ids   []string
	}{
		{"dependents", plan.Dependents},
		{"permits", plan.Permits},
		{"tasks", plan.Tasks},
	} {
		if len(group.ids) > 0 {
			fmt.Fprintf(out, "  %s: %s\n", group.label, strings.Join(group.ids, ", "))
		}
	}
	if len(plan.UnlinkedTasks) > 0 {
		fmt.Fprintf(out, "  %s %s\n", yellow("tasks losing their permit link:"), strings.Join(plan.UnlinkedTasks, ", "))
	}
}
