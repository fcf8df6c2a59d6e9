package lessongen

import (
	"context"
	"time"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/observability"
	"github.com/yungbote/neurobots-backend/internal/realtime"
)

type State string

const (
	StatePlanning        State = "planning"
	StateReasoning       State = "reasoning"
	StateDrafting        State = "drafting"
	StateVerifying       State = "verifying"
	StateAssetGeneration State = "asset_generation"
	StateAssembled       State = "assembled"
	StateFailed          State = "failed"
)

// Terminal reports whether no further transition may leave s.
func (s State) Terminal() bool { return s == StateAssembled || s == StateFailed }

var transitions = map[State][]State{
	StatePlanning:        {StateReasoning, StateFailed},
	StateReasoning:       {StateDrafting, StateFailed},
	StateDrafting:        {StateVerifying, StateFailed},
	StateVerifying:       {StateAssetGeneration, StateFailed},
	StateAssetGeneration: {StateAssembled, StateFailed},
}

// CanTransition reports whether the pipeline may move from one state to another.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StateEvent is the payload published on every transition.
type StateEvent struct {
	RunID string    `json:"run_id"`
	From  State     `json:"from,omitempty"`
	State State     `json:"state"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

const publishTimeout = 2 * time.Second

// enter moves the run to next. The first call only records the initial state.
func (r *run) enter(ctx context.Context, next State, cause error) {
	from := r.state
	initial := len(r.visited) == 0
	if !initial {
		if from.Terminal() {
			r.log.Error("transition out of terminal state ignored", "from", from, "to", next)
			return
		}
		if !CanTransition(from, next) {
			r.log.Error("illegal pipeline transition", "from", from, "to", next)
			return
		}
		if next == StateFailed {
			r.failedIn = from
		}
	}
	r.state = next
	r.visited = append(r.visited, next)

	ev := StateEvent{RunID: r.runID, State: next, At: r.o.deps.Now().UTC()}
	if !initial {
		ev.From = from
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	r.log.Info("lesson pipeline state", "from", ev.From, "state", next)
	observability.Current().IncPipelineTransition(string(next))

	r.publish(ctx, realtime.SSEMessage{Channel: realtime.RunChannel(r.runID), Event: realtime.SSEEventPipelineState, Data: ev})
	if next == StateFailed {
		r.publish(ctx, realtime.SSEMessage{Channel: realtime.RunChannel(r.runID), Event: realtime.SSEEventLessonFailed, Data: ev})
	}
}

func (r *run) publishReady(ctx context.Context, rec *lesson.Record) {
	if rec == nil {
		return
	}
	r.publish(ctx, realtime.SSEMessage{
		Channel: realtime.RunChannel(r.runID),
		Event:   realtime.SSEEventLessonReady,
		Data:    map[string]any{"run_id": r.runID, "lesson_id": rec.ID.String()},
	})
}

// publish is best effort. It outlives a cancelled run so the failure event
// still goes out.
func (r *run) publish(ctx context.Context, msg realtime.SSEMessage) {
	if r.o.deps.Bus == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := r.o.deps.Bus.Publish(pctx, msg); err != nil {
		r.log.Warn("failed to publish pipeline event", "event", msg.Event, "error", err)
	}
}
