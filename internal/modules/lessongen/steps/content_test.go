package steps

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/platform/llm/llmtest"
)

func TestContentDraftTemplate(t *testing.T) {
	ai := llmtest.New("Forces change motion.")
	rc := lesson.ReasoningContext{
		Plan:        lesson.Plan{Topic: "Newton's Laws", Objectives: []string{"State the laws", "Apply F=ma"}},
		Constraints: []string{"Dimensional consistency", "SI units"},
	}
	out, err := ContentDraft(context.Background(), ContentDraftDeps{AI: ai}, ContentDraftInput{Reasoning: rc})
	if err != nil {
		t.Fatalf("ContentDraft: %v", err)
	}
	want := "# Newton's Laws\n\n## Objectives\n- State the laws\n- Apply F=ma\n\n## Content\nForces change motion."
	if out.Draft.ContentText != want {
		t.Fatalf("content=%q\nwant=%q", out.Draft.ContentText, want)
	}
	if out.Draft.Sections["body"] != "Forces change motion." || out.Draft.Sections["intro"] != "Introduction..." || out.Draft.Sections["conclusion"] != "Summary..." {
		t.Fatalf("sections=%v", out.Draft.Sections)
	}
	prompt := ai.Calls()[0].Prompt
	if prompt != "Generate a lesson for Newton's Laws. Constraints: Dimensional consistency, SI units" {
		t.Fatalf("prompt=%q", prompt)
	}
}

func TestContentDraftPropagatesBackendError(t *testing.T) {
	boom := &llm.GenerationError{Provider: llm.ProviderGemini, Kind: llm.KindUnreachable, Attempts: 1, Err: errors.New("dial")}
	_, err := ContentDraft(context.Background(), ContentDraftDeps{AI: &llmtest.Fake{DefaultErr: boom}}, ContentDraftInput{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestDraftVerify(t *testing.T) {
	ok := DraftVerify(DraftVerifyDeps{}, DraftVerifyInput{Draft: lesson.Draft{ContentText: "# Topic"}})
	if !ok.Result.Verified() || len(ok.Result.ChecksFailed) != 0 {
		t.Fatalf("non-empty draft should verify: %+v", ok.Result)
	}
	if !reflect.DeepEqual(ok.Result.ChecksPassed, []string{"Format check", "Safety check"}) {
		t.Fatalf("passed=%v", ok.Result.ChecksPassed)
	}

	bad := DraftVerify(DraftVerifyDeps{}, DraftVerifyInput{Draft: lesson.Draft{ContentText: ""}})
	if bad.Result.Status != lesson.StatusFailed {
		t.Fatalf("empty draft should fail")
	}
	if !reflect.DeepEqual(bad.Result.ChecksFailed, []string{"Empty content"}) {
		t.Fatalf("failed=%v", bad.Result.ChecksFailed)
	}
}

func TestDraftVerifyExtraChecks(t *testing.T) {
	noTitle := func(d lesson.Draft) string {
		if !strings.HasPrefix(d.ContentText, "# ") {
			return "Missing title"
		}
		return ""
	}
	out := DraftVerify(DraftVerifyDeps{Checks: []DraftCheck{NonEmptyContent, noTitle}}, DraftVerifyInput{Draft: lesson.Draft{ContentText: "body only"}})
	if out.Result.Verified() || out.Result.ChecksFailed[0] != "Missing title" {
		t.Fatalf("unexpected result: %+v", out.Result)
	}
}

func TestAudioScriptTruncatesContext(t *testing.T) {
	ai := llmtest.New("Welcome back to Neurobots!")
	content := strings.Repeat("é", 6000)
	out, err := AudioScript(context.Background(), AudioScriptDeps{AI: ai}, AudioScriptInput{Topic: "Optics", ContentText: content})
	if err != nil {
		t.Fatalf("AudioScript: %v", err)
	}
	if out.Script != "Welcome back to Neurobots!" {
		t.Fatalf("script=%q", out.Script)
	}
	prompt := ai.Calls()[0].Prompt
	if got := strings.Count(prompt, "é"); got != maxContextChars {
		t.Fatalf("embedded %d chars of content, want %d", got, maxContextChars)
	}
	if !utf8.ValidString(prompt) {
		t.Fatalf("truncation split a rune")
	}
	if !strings.Contains(prompt, `host named "Neuro"`) || !strings.Contains(prompt, "TOPIC: Optics") {
		t.Fatalf("prompt missing instructions")
	}
}

func TestAudioScriptPropagatesError(t *testing.T) {
	boom := errors.New("down")
	if _, err := AudioScript(context.Background(), AudioScriptDeps{AI: &llmtest.Fake{DefaultErr: boom}}, AudioScriptInput{}); !errors.Is(err, boom) {
		t.Fatalf("expected error, got %v", err)
	}
}

func TestChatReplyEmptyHistory(t *testing.T) {
	ai := llm.NewSimulated()
	out, err := ChatReply(context.Background(), ChatReplyDeps{AI: ai}, ChatReplyInput{LessonContent: "# Newton", Message: "What is inertia?"})
	if err != nil {
		t.Fatalf("ChatReply: %v", err)
	}
	if !strings.HasPrefix(out.Reply, "[MOCK RESPONSE] Processed: ") {
		t.Fatalf("reply=%q", out.Reply)
	}
}

func TestChatReplyLabelsHistory(t *testing.T) {
	ai := llmtest.New("Inertia is resistance to change in motion.")
	history := []lesson.ChatMessage{
		{Role: lesson.RoleUser, Content: "Hi"},
		{Role: lesson.RoleAssistant, Content: "Hello!"},
	}
	out, err := ChatReply(context.Background(), ChatReplyDeps{AI: ai}, ChatReplyInput{LessonContent: "lesson", Message: "What is inertia?", History: history})
	if err != nil {
		t.Fatalf("ChatReply: %v", err)
	}
	if out.Reply != "Inertia is resistance to change in motion." {
		t.Fatalf("reply=%q", out.Reply)
	}
	prompt := ai.Calls()[0].Prompt
	if !strings.Contains(prompt, "Student: Hi\nTutor: Hello!") {
		t.Fatalf("history not labeled: %q", prompt)
	}
	if !strings.Contains(prompt, "STUDENT QUESTION:\nWhat is inertia?") {
		t.Fatalf("question missing: %q", prompt)
	}
}

func TestChatReplyFailurePropagates(t *testing.T) {
	boom := &llm.GenerationError{Provider: llm.ProviderAnthropic, Kind: llm.KindRejected, Attempts: 1, Err: errors.New("400")}
	_, err := ChatReply(context.Background(), ChatReplyDeps{AI: &llmtest.Fake{DefaultErr: boom}}, ChatReplyInput{Message: "q"})
	var ge *llm.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	if got := stripCodeFence("```json\n[1]\n```"); got != "[1]" {
		t.Fatalf("got %q", got)
	}
	if got := stripCodeFence("  {} "); got != "{}" {
		t.Fatalf("got %q", got)
	}
}
