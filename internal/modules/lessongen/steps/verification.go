package steps

import (
	"strings"

	"github.com/yungbote/neurobots-backend/internal/domain/lesson"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

// DraftCheck inspects a draft and returns the name of the failed check, or ""
// when the draft passes.
type DraftCheck func(d lesson.Draft) string

// NonEmptyContent rejects drafts whose text is empty.
func NonEmptyContent(d lesson.Draft) string {
	if strings.TrimSpace(d.ContentText) == "" {
		return "Empty content"
	}
	return ""
}

// DefaultDraftChecks is the check list used when none is configured.
var DefaultDraftChecks = []DraftCheck{NonEmptyContent}

var fixedPassedChecks = []string{"Format check", "Safety check"}

type DraftVerifyDeps struct {
	Log    *logger.Logger
	Checks []DraftCheck
}

type DraftVerifyInput struct {
	Draft lesson.Draft
}

type DraftVerifyOutput struct {
	Result lesson.VerificationResult
}

// DraftVerify is a pure gate. A failed result always lists at least one
// failed check.
func DraftVerify(deps DraftVerifyDeps, in DraftVerifyInput) DraftVerifyOutput {
	checks := deps.Checks
	if checks == nil {
		checks = DefaultDraftChecks
	}

	failed := []string{}
	for _, check := range checks {
		if check == nil {
			continue
		}
		if name := check(in.Draft); name != "" {
			failed = append(failed, name)
		}
	}

	res := lesson.VerificationResult{
		Status:       lesson.StatusVerified,
		ChecksPassed: cloneStrings(fixedPassedChecks),
		ChecksFailed: failed,
	}
	if len(failed) > 0 {
		res.Status = lesson.StatusFailed
		if deps.Log != nil {
			deps.Log.Warn("draft rejected", "topic", in.Draft.Plan.Topic, "checks_failed", failed)
		}
	}
	return DraftVerifyOutput{Result: res}
}
