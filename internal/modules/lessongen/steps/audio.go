package steps

import (
	"context"
	"fmt"

	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

type AudioScriptDeps struct {
	Log *logger.Logger
	AI  llm.Client
}

type AudioScriptInput struct {
	Topic       string
	ContentText string
}

type AudioScriptOutput struct {
	Script string
}

const audioPromptTemplate = `
You are an expert educational podcaster. Your goal is to convert a written lesson into an engaging, conversational audio script.

TOPIC: %s
LESSON CONTENT:
"""
%s ...
"""

INSTRUCTIONS:
- Write a monologue script for a single host named "Neuro".
- Keep it under 5 minutes speaking time (approx 500-700 words).
- Use a friendly, enthusiastic, and clear tone.
- Start with a catchy hook: "Welcome back to Neurobots! Today we're exploring..."
- Simplify complex text into spoken language.
- Use rhetorical questions to keep the listener engaged.
- End with an inspiring closing thought.
- Return ONLY the script text. Do not include "Host:" prefixes or stage directions.

SCRIPT:
`

// AudioScript converts lesson text into a narration script. Errors from the
// backend propagate; the coordinator decides whether they are fatal.
func AudioScript(ctx context.Context, deps AudioScriptDeps, in AudioScriptInput) (AudioScriptOutput, error) {
	prompt := fmt.Sprintf(audioPromptTemplate, in.Topic, truncateRunes(in.ContentText, maxContextChars))
	script, err := deps.AI.GenerateText(ctx, prompt, "")
	if err != nil {
		return AudioScriptOutput{}, err
	}
	if deps.Log != nil {
		deps.Log.Debug("audio script generated", "topic", in.Topic, "chars", len(script))
	}
	return AudioScriptOutput{Script: script}, nil
}
