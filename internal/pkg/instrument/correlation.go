package instrument

import "context"

type correlationIDKey struct{}

// SetCorrelationID stores the request correlation id in ctx.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cID)
}

// GetCorrelationID returns the correlation id stored in ctx, or "[invalid_chain_id]"
// when none was set.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return "[invalid_chain_id]"
	}
	if cID, ok := ctx.Value(correlationIDKey{}).(string); ok && cID != "" {
		return cID
	}
	return "[invalid_chain_id]"
}
