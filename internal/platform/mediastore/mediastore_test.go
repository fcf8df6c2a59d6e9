package mediastore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestLocalSaveWritesFileAndReturnsPublicURL(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocal(nil, dir, "generated_images/")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	url, err := s.Save(context.Background(), []byte("img"), "image/png", ".png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "/generated_images/scene_") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected url: %q", url)
	}
	raw, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/generated_images/")))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(raw) != "img" {
		t.Fatalf("content mismatch: %q", raw)
	}
}

func TestLocalSaveNamesAreUniqueUnderConcurrency(t *testing.T) {
	s, err := NewLocal(nil, t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	const n = 64
	urls := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := s.Save(context.Background(), []byte{byte(i)}, "image/jpeg", "jpg")
			if err != nil {
				t.Errorf("Save %d: %v", i, err)
				return
			}
			urls[i] = u
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, u := range urls {
		if u == "" {
			continue
		}
		if seen[u] {
			t.Fatalf("duplicate url %q", u)
		}
		seen[u] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d files, got %d", n, len(seen))
	}
}

func TestGCSPublicURL(t *testing.T) {
	g := &GCS{cfg: GCSConfig{Bucket: "lessons", CDNDomain: "cdn.example.com"}}
	if got := g.PublicURL("/scenes/a.png"); got != "https://cdn.example.com/scenes/a.png" {
		t.Fatalf("cdn url: %q", got)
	}
	g.cfg.CDNDomain = ""
	if got := g.PublicURL("a.png"); got != "https://storage.googleapis.com/lessons/a.png" {
		t.Fatalf("default url: %q", got)
	}
	g.cfg.Prefix = "/scenes/"
	if got := g.key("a.png"); got != "scenes/a.png" {
		t.Fatalf("key: %q", got)
	}
}
