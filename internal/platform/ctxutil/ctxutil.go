package ctxutil

import "context"

type traceDataKey struct{}
type callerKey struct{}

type TraceData struct {
	TraceID   string
	RequestID string
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// WithCaller stores the authenticated caller id (JWT subject).
func WithCaller(ctx context.Context, callerID string) context.Context {
	return context.WithValue(Default(ctx), callerKey{}, callerID)
}

func GetCaller(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(callerKey{}).(string)
	return id
}
