package steps

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

//go:embed reasoning_profiles.yaml
var reasoningProfilesYAML []byte

// ReasoningProfile is the canned domain guidance for one subject.
type ReasoningProfile struct {
	Constraints []string `yaml:"constraints"`
	Steps       []string `yaml:"steps"`
	Assumptions []string `yaml:"assumptions"`
}

// ReasoningTable dispatches a subject tag to its profile.
type ReasoningTable struct {
	Default  string                      `yaml:"default"`
	Profiles map[string]ReasoningProfile `yaml:"profiles"`

	byKey map[string]string
}

var defaultReasoningTable = mustLoadReasoningTable(reasoningProfilesYAML)

func DefaultReasoningTable() *ReasoningTable { return defaultReasoningTable }

func LoadReasoningTable(raw []byte) (*ReasoningTable, error) {
	var t ReasoningTable
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse reasoning profiles: %w", err)
	}
	if _, ok := t.Profiles[t.Default]; !ok {
		return nil, fmt.Errorf("default reasoning profile %q not defined", t.Default)
	}
	t.byKey = make(map[string]string, len(t.Profiles))
	for name := range t.Profiles {
		t.byKey[strings.ToLower(name)] = name
	}
	return &t, nil
}

func mustLoadReasoningTable(raw []byte) *ReasoningTable {
	t, err := LoadReasoningTable(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve returns the profile name chosen for subject, falling back to the
// default for unknown tags.
func (t *ReasoningTable) Resolve(subject string) string {
	if name, ok := t.byKey[strings.ToLower(strings.TrimSpace(subject))]; ok {
		return name
	}
	return t.Default
}

type ReasoningBuildDeps struct {
	Log   *logger.Logger
	Table *ReasoningTable
}

type ReasoningBuildInput struct {
	Plan lesson.Plan
}

type ReasoningBuildOutput struct {
	Profile string
	Context lesson.ReasoningContext
}

// ReasoningBuild enriches a plan with subject-specific guidance. It makes no
// backend call and cannot fail.
func ReasoningBuild(deps ReasoningBuildDeps, in ReasoningBuildInput) ReasoningBuildOutput {
	table := deps.Table
	if table == nil {
		table = defaultReasoningTable
	}
	name := table.Resolve(in.Plan.Subject)
	profile := table.Profiles[name]
	if deps.Log != nil {
		deps.Log.Info("reasoning profile selected", "subject", in.Plan.Subject, "profile", name)
	}
	return ReasoningBuildOutput{
		Profile: name,
		Context: lesson.ReasoningContext{
			Plan:        in.Plan,
			Constraints: cloneStrings(profile.Constraints),
			Steps:       cloneStrings(profile.Steps),
			Assumptions: cloneStrings(profile.Assumptions),
		},
	}
}
