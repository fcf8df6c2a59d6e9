package lessongen

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/modules/lessongen/steps"
	"github.com/yungbote/neurobots-backend/internal/observability"
)

// Chat answers one tutoring turn about a lesson. It runs outside the
// generation pipeline and does not take a pipeline slot.
func (o *Orchestrator) Chat(ctx context.Context, content, message string, history []lesson.ChatMessage) (string, error) {
	ctx, span := o.tracer.Start(ctx, "lessongen."+steps.StageChat)
	defer span.End()

	start := time.Now()
	out, err := steps.ChatReply(ctx, steps.ChatReplyDeps{Log: o.log, AI: o.deps.AI}, steps.ChatReplyInput{
		LessonContent: content,
		Message:       message,
		History:       history,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.Current().ObserveStage(steps.StageChat, "error", time.Since(start))
		return "", err
	}
	observability.Current().ObserveStage(steps.StageChat, "ok", time.Since(start))
	return out.Reply, nil
}
