package ctxutil

import "context"

type traceDataKey struct{}

// TraceData correlates one HTTP request across logs, spans and the pipeline
// run it started.
type TraceData struct {
	TraceID   string
	RequestID string
	// RunID is set once a handler knows which pipeline run it drives.
	RunID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns the correlation ids carried by ctx as logger key/value
// pairs. Empty ids are omitted.
func LogFields(ctx context.Context) []interface{} {
	var kv []interface{}
	if td := GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			kv = append(kv, "trace_id", td.TraceID)
		}
		if td.RequestID != "" {
			kv = append(kv, "request_id", td.RequestID)
		}
		if td.RunID != "" {
			kv = append(kv, "run_id", td.RunID)
		}
	}
	if id := UserID(ctx); id != nil {
		kv = append(kv, "user_id", id.String())
	}
	return kv
}
