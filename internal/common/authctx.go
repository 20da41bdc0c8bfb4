package common

import "context"

type ctxKey string

const callerKey ctxKey = "auth/caller"

// Caller is the authenticated principal attached to a request by the auth
// middleware. A request either carries a caller or it does not; consumers
// must branch on the boolean returned by CallerFrom.
type Caller struct {
	ID    int64
	Email string
}

// WithCaller stores the authenticated caller on the provided context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom extracts the authenticated caller from the context if present.
func CallerFrom(ctx context.Context) (Caller, bool) {
	v := ctx.Value(callerKey)
	if v == nil {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok
}
