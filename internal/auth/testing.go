package auth

import "context"

// ContextWithPrincipal adds a principal to the context for testing purposes.
// Exported so handler tests in other packages can build authenticated requests.
func ContextWithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}
