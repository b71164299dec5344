// Package cli holds the permitdesk command tree.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/permitdesk/internal/adapters/cli"
	"github.com/example/permitdesk/internal/ctxutil"
	"github.com/example/permitdesk/internal/ports/primary"
	"github.com/example/permitdesk/internal/wire"
)

const dateLayout = "2006-01-02"

// AddGlobalFlags registers flags shared by every subcommand.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().String("actor", "", "Actor ID stamped into audit fields (default: $PERMITDESK_ACTOR, config actor, then $USER)")
}

// commandContext returns the command's context carrying the resolved actor.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctxutil.WithActorID(ctx, resolveActor(cmd))
}

func resolveActor(cmd *cobra.Command) string {
	if actor, _ := cmd.Flags().GetString("actor"); actor != "" {
		return actor
	}
	if actor := wire.Config().Actor; actor != "" {
		return actor
	}
	return os.Getenv("USER")
}

// parseDate reads a YYYY-MM-DD flag value. Empty input yields nil.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return &t, nil
}

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// confirmPlan prints a deletion plan on the command's output and asks before it
// is committed. yes skips the prompt.
func confirmPlan(cmd *cobra.Command, plan *primary.DeletionPlan, yes bool) bool {
	out := cmd.OutOrStdout()
	cliadapter.PrintDeletionPlan(out, plan)
	if yes || confirm(cmd.InOrStdin(), out, "Proceed?") {
		return true
	}
	fmt.Fprintln(out, "Aborted.")
	return false
}
