// Package imagegentest provides a scripted imagegen.Client for tests.
package imagegentest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/neurobots-backend/internal/platform/imagegen"
)

// Fake returns a small PNG for every prompt unless FailWhen matches it. Delay,
// when set, lets tests shuffle completion order.
type Fake struct {
	FailWhen func(prompt string) error
	Delay    func(prompt string) time.Duration

	mu      sync.Mutex
	prompts []string
	active  int
	peak    int
}

// FailOn fails any prompt containing one of the given fragments.
func FailOn(err error, fragments ...string) *Fake {
	return &Fake{FailWhen: func(prompt string) error {
		for _, f := range fragments {
			if strings.Contains(prompt, f) {
				return err
			}
		}
		return nil
	}}
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func (f *Fake) Generate(ctx context.Context, prompt string) (imagegen.Image, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.Delay != nil {
		select {
		case <-ctx.Done():
			return imagegen.Image{}, ctx.Err()
		case <-time.After(f.Delay(prompt)):
		}
	}
	if f.FailWhen != nil {
		if err := f.FailWhen(prompt); err != nil {
			return imagegen.Image{}, err
		}
	}
	return imagegen.Image{Bytes: append([]byte(nil), pngHeader...), MimeType: "image/png"}, nil
}

func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// PeakConcurrency is the highest number of overlapping Generate calls seen.
func (f *Fake) PeakConcurrency() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}
