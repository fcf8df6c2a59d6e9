package realtime

type SSEEvent string

const (
	// SSEEventPipelineState is emitted on every lesson pipeline state change.
	SSEEventPipelineState SSEEvent = "lesson.pipeline.state"
	// SSEEventLessonReady carries the persisted lesson id once a run assembles.
	SSEEventLessonReady SSEEvent = "lesson.ready"
	// SSEEventLessonFailed carries the failure cause of a run.
	SSEEventLessonFailed SSEEvent = "lesson.failed"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// RunChannel is the channel progress for one pipeline run is published on.
func RunChannel(runID string) string { return "run:" + runID }
