package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

type ChatReplyDeps struct {
	Log *logger.Logger
	AI  llm.Client
}

type ChatReplyInput struct {
	LessonContent string
	Message       string
	History       []lesson.ChatMessage
}

type ChatReplyOutput struct {
	Reply string
}

const chatPromptTemplate = `
You are a helpful and encouraging AI Tutor. Your goal is to help a student understand a specific lesson.

CONTEXT (The lesson the student is reading):
"""
%s ... (truncated if too long)
"""

CONVERSATION HISTORY:
%s

STUDENT QUESTION:
%s

INSTRUCTIONS:
- Answer the student's question directly using the provided context.
- Be encouraging and concise.
- If the answer is not in the context, use your general knowledge but mention that it's outside the current lesson scope.
- Do not make up facts.

RESPONSE:
`

// ChatReply answers one tutoring turn. It keeps no state; callers carry the
// history forward.
func ChatReply(ctx context.Context, deps ChatReplyDeps, in ChatReplyInput) (ChatReplyOutput, error) {
	prompt := fmt.Sprintf(chatPromptTemplate,
		truncateRunes(in.LessonContent, maxContextChars),
		formatHistory(in.History),
		in.Message,
	)
	reply, err := deps.AI.GenerateText(ctx, prompt, "")
	if err != nil {
		return ChatReplyOutput{}, err
	}
	if deps.Log != nil {
		deps.Log.Debug("chat reply generated", "history_turns", len(in.History))
	}
	return ChatReplyOutput{Reply: reply}, nil
}

func formatHistory(history []lesson.ChatMessage) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		label := "Tutor"
		if msg.Role == lesson.RoleUser {
			label = "Student"
		}
		lines = append(lines, label+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}
