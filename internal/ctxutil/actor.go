// Package ctxutil carries request-scoped values shared by the CLI and the services.
// It has no internal dependencies so anything may import it.
package ctxutil

import (
	"context"
	"strings"
)

type actorKey struct{}

// WithActorID returns a context carrying the acting officer's ID.
// A blank ID leaves ctx unchanged.
func WithActorID(ctx context.Context, actorID string) context.Context {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the actor ID from context, or "" if none was set.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// ResolveActor prefers an explicitly passed actor over the one in ctx.
func ResolveActor(ctx context.Context, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	return ActorFromContext(ctx)
}
