package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Simulated is the offline provider. Prompts that ask for a lesson plan or a
// scene list get deterministic, well-formed JSON so a full pipeline run works
// without network access; everything else is echoed back.
type Simulated struct{}

func NewSimulated() *Simulated { return &Simulated{} }

func (s *Simulated) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch {
	case strings.Contains(systemInstruction, "verification_requirements"):
		return simulatedPlan(prompt), nil
	case strings.Contains(prompt, "visual_prompt"):
		return simulatedScenes(prompt), nil
	default:
		return Echo(prompt), nil
	}
}

// Echo is the deterministic string the simulated provider derives from a prompt.
func Echo(prompt string) string {
	r := []rune(prompt)
	if len(r) > 50 {
		r = r[:50]
	}
	return "[MOCK RESPONSE] Processed: " + string(r) + "..."
}

var subjectKeywords = []struct {
	subject string
	words   []string
}{
	{"Physics", []string{"newton", "force", "motion", "gravity", "energy", "velocity", "momentum", "physics", "optics", "thermodynamics"}},
	{"Chemistry", []string{"chemistry", "chemical", "reaction", "molecule", "atom", "acid", "base", "stoichiometry", "bond", "periodic"}},
}

func simulatedSubject(topic string) string {
	lower := strings.ToLower(topic)
	for _, entry := range subjectKeywords {
		for _, w := range entry.words {
			if strings.Contains(lower, w) {
				return entry.subject
			}
		}
	}
	return "Math"
}

// quotedTopic returns the first double-quoted span of prompt, or the whole
// prompt when there is none.
func quotedTopic(prompt string) string {
	if i := strings.Index(prompt, `"`); i >= 0 {
		if j := strings.Index(prompt[i+1:], `"`); j >= 0 {
			return strings.TrimSpace(prompt[i+1 : i+1+j])
		}
	}
	return strings.TrimSpace(prompt)
}

func simulatedPlan(prompt string) string {
	topic := quotedTopic(prompt)
	if topic == "" {
		topic = "General Topic"
	}
	plan := map[string]any{
		"subject":    simulatedSubject(topic),
		"topic":      topic,
		"level":      "Beginner",
		"objectives": []string{fmt.Sprintf("Understand the core ideas of %s", topic), fmt.Sprintf("Apply %s to a worked example", topic)},
		"required_concepts": []string{
			topic,
		},
		"modalities":                []string{"text", "audio", "video"},
		"verification_requirements": []string{"Format check", "Safety check"},
	}
	raw, _ := json.Marshal(plan)
	return "```json\n" + string(raw) + "\n```"
}

func simulatedScenes(prompt string) string {
	topic := quotedTopic(prompt)
	if topic == "" {
		topic = "the topic"
	}
	scenes := make([]map[string]string, 0, 8)
	for i := 1; i <= 8; i++ {
		scenes = append(scenes, map[string]string{
			"visual_prompt": fmt.Sprintf("Clean educational illustration %d explaining %s", i, topic),
			"narration":     fmt.Sprintf("Part %d of our look at %s.", i, topic),
		})
	}
	raw, _ := json.Marshal(scenes)
	return string(raw)
}
