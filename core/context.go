package core

import "context"

type contextKey int

const (
	quietKey contextKey = iota
	trackingKey
)

// tracking identifies the run a step belongs to.
// analysisID is zero when the run is not stored.
type tracking struct {
	runID      string
	analysisID int64
}

// WithSuppressHeader returns a context that silences the analysis header.
// The MCP server uses it so each tool call stays quiet on stderr.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietKey, true)
}

func headerSuppressed(ctx context.Context) bool {
	quiet, _ := ctx.Value(quietKey).(bool)
	return quiet
}

func withTracking(ctx context.Context, runID string, analysisID int64) context.Context {
	return context.WithValue(ctx, trackingKey, tracking{runID: runID, analysisID: analysisID})
}

// trackedAnalysisID returns the stored analysis id, if the run is tracked.
func trackedAnalysisID(ctx context.Context) (int64, bool) {
	t, ok := ctx.Value(trackingKey).(tracking)
	if !ok || t.analysisID <= 0 {
		return 0, false
	}
	return t.analysisID, true
}

func trackedRunID(ctx context.Context) string {
	t, _ := ctx.Value(trackingKey).(tracking)
	return t.runID
}
