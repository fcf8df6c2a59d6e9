package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

type ContentDraftDeps struct {
	Log *logger.Logger
	AI  llm.Client
}

type ContentDraftInput struct {
	Reasoning lesson.ReasoningContext
}

type ContentDraftOutput struct {
	Draft lesson.Draft
}

// ContentDraft drafts the lesson text and wraps it in the markdown template.
// Backend errors propagate unchanged.
func ContentDraft(ctx context.Context, deps ContentDraftDeps, in ContentDraftInput) (ContentDraftOutput, error) {
	plan := in.Reasoning.Plan
	prompt := fmt.Sprintf("Generate a lesson for %s. Constraints: %s", plan.Topic, strings.Join(in.Reasoning.Constraints, ", "))
	if deps.Log != nil {
		deps.Log.Info("drafting lesson content", "topic", plan.Topic)
	}

	body, err := deps.AI.GenerateText(ctx, prompt, "")
	if err != nil {
		return ContentDraftOutput{}, err
	}

	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(plan.Topic)
	b.WriteString("\n\n## Objectives\n")
	b.WriteString(bulletList(plan.Objectives))
	b.WriteString("\n\n## Content\n")
	b.WriteString(body)

	return ContentDraftOutput{Draft: lesson.Draft{
		Plan:        plan,
		ContentText: b.String(),
		Sections: map[string]string{
			"intro":      "Introduction...",
			"body":       body,
			"conclusion": "Summary...",
		},
	}}, nil
}
