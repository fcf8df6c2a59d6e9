package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

type LessonPlanBuildDeps struct {
	Log *logger.Logger
	AI  llm.Client
}

type LessonPlanBuildInput struct {
	Request string
}

type LessonPlanBuildOutput struct {
	Plan lesson.Plan
}

const plannerSystemInstruction = `You are an expert curriculum planner. Create a comprehensive lesson plan based on the user's request.
Return ONLY a JSON object with the following structure:
{
  "subject": "Subject name, one of Math, Physics, Chemistry when applicable",
  "topic": "Specific topic",
  "level": "Target audience level (e.g. High School, Undergraduate)",
  "objectives": ["Learning objectives"],
  "required_concepts": ["Prerequisite concepts"],
  "modalities": ["text", "visual", "audio"],
  "verification_requirements": ["Criteria to verify the content"]
}`

// LessonPlanBuild turns a free-text request into a structured plan. Backend
// failures and unparseable responses both yield a *PlanningError.
func LessonPlanBuild(ctx context.Context, deps LessonPlanBuildDeps, in LessonPlanBuildInput) (LessonPlanBuildOutput, error) {
	out := LessonPlanBuildOutput{}
	if deps.AI == nil {
		return out, &PlanningError{Err: errors.New("missing generation backend")}
	}
	request := strings.TrimSpace(in.Request)
	if deps.Log != nil {
		deps.Log.Info("planning lesson", "request_chars", len(request))
	}

	prompt := fmt.Sprintf("Create a lesson plan for: %q", request)
	raw, err := deps.AI.GenerateText(ctx, prompt, plannerSystemInstruction)
	if err != nil {
		return out, &PlanningError{Err: err}
	}

	plan, err := parsePlan(raw)
	if err != nil {
		return out, &PlanningError{Err: err}
	}
	if plan.Topic == "" {
		plan.Topic = request
	}
	if plan.Topic == "" {
		plan.Topic = "General Topic"
	}
	out.Plan = plan
	return out, nil
}

func parsePlan(raw string) (lesson.Plan, error) {
	var plan lesson.Plan
	clean := stripCodeFence(raw)
	if clean == "" {
		return plan, errors.New("empty plan response")
	}
	// Some backends wrap the object in prose.
	if start, end := strings.Index(clean, "{"), strings.LastIndex(clean, "}"); start > 0 && end > start {
		clean = clean[start : end+1]
	}
	if err := json.Unmarshal([]byte(clean), &plan); err != nil {
		return plan, fmt.Errorf("parse plan: %w", err)
	}
	plan.Subject = strings.TrimSpace(plan.Subject)
	plan.Topic = strings.TrimSpace(plan.Topic)
	plan.Level = strings.TrimSpace(plan.Level)
	plan.Objectives = nonEmpty(plan.Objectives)
	plan.RequiredConcepts = nonEmpty(plan.RequiredConcepts)
	plan.Modalities = nonEmpty(plan.Modalities)
	plan.VerificationRequirements = nonEmpty(plan.VerificationRequirements)
	return plan, nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
