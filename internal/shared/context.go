package shared

import "context"

type profileContextKey struct{}

// ContextWithProfile stores the browser profile id in context.
func ContextWithProfile(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, profileContextKey{}, id)
}

// ProfileFromContext extracts the browser profile id from context.
func ProfileFromContext(ctx context.Context) string {
	id, _ := ctx.Value(profileContextKey{}).(string)
	return id
}
