package session

import "context"

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// ContextKeyVisitor is the key for the visitor token in request context
const ContextKeyVisitor ContextKey = "visitor"

func ContextWithVisitor(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ContextKeyVisitor, token)
}

func VisitorFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ContextKeyVisitor).(string)
	return token, ok && token != ""
}
