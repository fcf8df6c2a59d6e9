// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"
)

type Call struct {
	Prompt string
	System string
}

type rule struct {
	match string
	text  string
	err   error
}

// Fake answers from rules matched against prompt or system instruction, in
// registration order. Unmatched calls get Default/DefaultErr.
type Fake struct {
	Default    string
	DefaultErr error

	mu    sync.Mutex
	rules []rule
	calls []Call
	// Script, when set, is consumed one entry per call before rules apply.
	script []Step
}

type Step struct {
	Text string
	Err  error
}

func New(defaultText string) *Fake {
	return &Fake{Default: defaultText}
}

// Sequence returns a fake that answers each call with the next step, then
// falls back to Default.
func Sequence(steps ...Step) *Fake {
	return &Fake{script: steps}
}

// On registers a response for calls whose prompt or system instruction
// contains match.
func (f *Fake) On(match, text string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{match: match, text: text, err: err})
	return f
}

func (f *Fake) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Prompt: prompt, System: systemInstruction})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(f.script) > 0 {
		s := f.script[0]
		f.script = f.script[1:]
		return s.Text, s.Err
	}
	for _, r := range f.rules {
		if strings.Contains(prompt, r.match) || strings.Contains(systemInstruction, r.match) {
			return r.text, r.err
		}
	}
	return f.Default, f.DefaultErr
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
