// Package context carries the request identity through a request's context.
package context

import "context"

type contextKeySubject struct{}

// GetSubject returns the user id attached to the context, or the empty
// string when no identity was resolved.
func GetSubject(ctx context.Context) string {
	userID, ok := ctx.Value(contextKeySubject{}).(string)
	if !ok {
		return ""
	}

	return userID
}

func WithSubject(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeySubject{}, userID)
}
