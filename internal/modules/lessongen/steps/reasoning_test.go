package steps

import (
	"reflect"
	"testing"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
)

func TestReasoningBuildDispatchesBySubject(t *testing.T) {
	cases := []struct {
		subject     string
		profile     string
		constraints []string
	}{
		{"Physics", "Physics", []string{"Dimensional consistency", "SI units"}},
		{"chemistry", "Chemistry", []string{"Charge balance", "Stoichiometry"}},
		{" MATH ", "Math", []string{"Symbolic reasoning preferred", "Step-by-step derivations"}},
		{"History", "Math", []string{"Symbolic reasoning preferred", "Step-by-step derivations"}},
		{"", "Math", []string{"Symbolic reasoning preferred", "Step-by-step derivations"}},
	}
	for _, tc := range cases {
		out := ReasoningBuild(ReasoningBuildDeps{}, ReasoningBuildInput{Plan: lesson.Plan{Subject: tc.subject}})
		if out.Profile != tc.profile {
			t.Fatalf("subject %q: profile=%q want %q", tc.subject, out.Profile, tc.profile)
		}
		if !reflect.DeepEqual(out.Context.Constraints, tc.constraints) {
			t.Fatalf("subject %q: constraints=%v", tc.subject, out.Context.Constraints)
		}
	}
}

func TestReasoningBuildPhysicsProfile(t *testing.T) {
	plan := lesson.Plan{Subject: "Physics", Topic: "Newton's Laws"}
	out := ReasoningBuild(ReasoningBuildDeps{}, ReasoningBuildInput{Plan: plan})
	if !reflect.DeepEqual(out.Context.Steps, []string{"Identify forces", "Apply Newton's Laws"}) {
		t.Fatalf("steps=%v", out.Context.Steps)
	}
	if !reflect.DeepEqual(out.Context.Assumptions, []string{"Neglect air resistance"}) {
		t.Fatalf("assumptions=%v", out.Context.Assumptions)
	}
	if out.Context.Plan.Topic != plan.Topic {
		t.Fatalf("plan should pass through")
	}
}

func TestReasoningBuildReturnsCopies(t *testing.T) {
	first := ReasoningBuild(ReasoningBuildDeps{}, ReasoningBuildInput{Plan: lesson.Plan{Subject: "Chemistry"}})
	first.Context.Constraints[0] = "mutated"
	second := ReasoningBuild(ReasoningBuildDeps{}, ReasoningBuildInput{Plan: lesson.Plan{Subject: "Chemistry"}})
	if second.Context.Constraints[0] != "Charge balance" {
		t.Fatalf("profile table was mutated through a returned slice")
	}
}

func TestReasoningBuildEmptyObjectives(t *testing.T) {
	out := ReasoningBuild(ReasoningBuildDeps{}, ReasoningBuildInput{Plan: lesson.Plan{Subject: "Math"}})
	if len(out.Context.Steps) != 3 {
		t.Fatalf("steps=%v", out.Context.Steps)
	}
}

func TestLoadReasoningTableRejectsUnknownDefault(t *testing.T) {
	_, err := LoadReasoningTable([]byte("default: Biology\nprofiles:\n  Math:\n    constraints: [a]\n"))
	if err == nil {
		t.Fatalf("expected error for undefined default profile")
	}
}

func TestLoadReasoningTableCustomProfiles(t *testing.T) {
	table, err := LoadReasoningTable([]byte("default: Biology\nprofiles:\n  Biology:\n    constraints: [Cell theory]\n    steps: [Observe]\n    assumptions: [Living systems]\n"))
	if err != nil {
		t.Fatalf("LoadReasoningTable: %v", err)
	}
	out := ReasoningBuild(ReasoningBuildDeps{Table: table}, ReasoningBuildInput{Plan: lesson.Plan{Subject: "Physics"}})
	if out.Profile != "Biology" || out.Context.Constraints[0] != "Cell theory" {
		t.Fatalf("unexpected output: %+v", out)
	}
}
