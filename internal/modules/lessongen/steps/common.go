package steps

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
)

// Prefix bound applied to lesson text before it is embedded in a prompt.
const maxContextChars = 5000

// Stage names used in logs, spans and metrics.
const (
	StagePlanner      = "planner"
	StageReasoning    = "reasoning"
	StageContent      = "content"
	StageVerification = "verification"
	StageAudio        = "audio"
	StageVideo        = "video"
	StageChat         = "chat"
)

var (
	// ErrStoryboardFallback marks a storyboard reduced to intro and outro.
	ErrStoryboardFallback = errors.New("storyboard body generation failed, using intro and outro only")
	// ErrImageDegraded marks a scene left without an image.
	ErrImageDegraded = errors.New("scene image unavailable")
)

// PlanningError means no usable plan could be produced. Always fatal.
type PlanningError struct {
	Err error
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("failed to generate lesson plan: %v", e.Err)
}

func (e *PlanningError) Unwrap() error { return e.Err }

// VerificationFailure carries the rejected result. Always fatal.
type VerificationFailure struct {
	Result lesson.VerificationResult
}

func (e *VerificationFailure) Error() string {
	return "verification failed: " + strings.Join(e.Result.ChecksFailed, ", ")
}

var fenceRE = regexp.MustCompile("```[a-zA-Z]*")

// stripCodeFence removes markdown code fences a backend may wrap JSON in.
func stripCodeFence(s string) string {
	return strings.TrimSpace(fenceRE.ReplaceAllString(s, ""))
}

// truncateRunes keeps at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "- " + strings.Join(items, "\n- ")
}
