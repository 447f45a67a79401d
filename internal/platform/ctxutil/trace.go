package ctxutil

import "context"

type traceDataKey struct{}

// TraceData carries the request correlation identifiers that middleware
// stamps on every request and the job runtime copies onto job payloads.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func TraceDataFrom(ctx context.Context) (TraceData, bool) {
	td, ok := ctx.Value(traceDataKey{}).(TraceData)
	return td, ok
}
