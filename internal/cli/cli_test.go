package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/permitdesk/internal/core/ticket"
	"github.com/example/permitdesk/internal/ctxutil"
	"github.com/example/permitdesk/internal/ports/primary"
)

func TestParseDate(t *testing.T) {
	d, err := parseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = parseDate("2026-04-30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), *d)

	_, err = parseDate("30/04/2026")
	assert.ErrorContains(t, err, "expected YYYY-MM-DD")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" y \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := confirm(strings.NewReader(tt.input), &out, "Proceed?")
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Proceed? [y/N] ", out.String())
	}
}

func TestConfirmPlan_WritesToCommandStreams(t *testing.T) {
	plan := &primary.DeletionPlan{
		Entity:  "person",
		RootID:  "p1",
		Permits: []string{"m1"},
		Counts:  map[string]int{"permits": 1},
	}

	tests := []struct {
		name  string
		input string
		yes   bool
		want  bool
	}{
		{"declined", "n\n", false, false},
		{"accepted", "y\n", false, true},
		{"pre-approved", "", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := &cobra.Command{Use: "delete"}
			cmd.SetIn(strings.NewReader(tt.input))
			cmd.SetOut(&out)

			assert.Equal(t, tt.want, confirmPlan(cmd, plan, tt.yes))
			assert.Contains(t, out.String(), "Deleting person p1 would remove:")
			assert.Contains(t, out.String(), "permits: m1")
			assert.Equal(t, !tt.want, strings.Contains(out.String(), "Aborted."))
			assert.Equal(t, !tt.yes, strings.Contains(out.String(), "Proceed? [y/N]"))
		})
	}
}

func TestParseTemplateItem(t *testing.T) {
	tests := []struct {
		raw  string
		want primary.TemplateItem
	}{
		{"Passport copy", primary.TemplateItem{Label: "Passport copy", Required: true}},
		{"Photo?", primary.TemplateItem{Label: "Photo", Required: false}},
		{"Employer letter | signed and stamped", primary.TemplateItem{Label: "Employer letter", Required: true, Hint: "signed and stamped"}},
		{"Bank statement ?|last 3 months", primary.TemplateItem{Label: "Bank statement", Required: false, Hint: "last 3 months"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseTemplateItem(tt.raw), tt.raw)
	}
}

func TestCommandContext_ActorFlag(t *testing.T) {
	root := &cobra.Command{Use: "permitdesk"}
	AddGlobalFlags(root)
	require.NoError(t, root.ParseFlags([]string{"--actor", "officer-7"}))

	ctx := commandContext(root)
	assert.Equal(t, "officer-7", ctxutil.ActorFromContext(ctx))
}

func TestCommandContext_KeepsCommandContext(t *testing.T) {
	type key struct{}
	root := &cobra.Command{Use: "permitdesk"}
	AddGlobalFlags(root)
	root.SetContext(context.WithValue(context.Background(), key{}, "kept"))
	require.NoError(t, root.ParseFlags([]string{"--actor", "officer-7"}))

	ctx := commandContext(root)
	assert.Equal(t, "kept", ctx.Value(key{}))
}

func subcommandNames(cmd *cobra.Command) []string {
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	return names
}

func TestRegistryCmd_Tree(t *testing.T) {
	for _, cmd := range []*cobra.Command{VehicleCmd(), ImportCmd(), CompanyCmd()} {
		assert.ElementsMatch(t, []string{"create", "show", "list", "status"}, subcommandNames(cmd), cmd.Name())
	}
	assert.Equal(t, "vehicle", registryCmd(ticket.KindVehicle, "vehicle", "").Name())
}

func TestPermitCmd_Tree(t *testing.T) {
	assert.ElementsMatch(t, []string{
		"create", "show", "list", "update", "submit", "approve", "reject", "transition", "history", "progress",
	}, subcommandNames(PermitCmd()))
}

func TestCommandTrees(t *testing.T) {
	assert.ElementsMatch(t, []string{"list", "done", "undo", "note", "attach"}, subcommandNames(ChecklistCmd()))
	assert.ElementsMatch(t, []string{"create", "list", "show", "complete", "delete"}, subcommandNames(TaskCmd()))
	assert.ElementsMatch(t, []string{"create", "show", "list", "delete"}, subcommandNames(PersonCmd()))
	assert.ElementsMatch(t, []string{"create", "import", "show", "list", "versions"}, subcommandNames(TemplateCmd()))
	assert.ElementsMatch(t, []string{"resolve", "peek"}, subcommandNames(TicketCmd()))
}
