// Package mediastore persists generated images and hands back the URL a
// client can load them from.
package mediastore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	// Save writes data under a fresh collision-resistant name and returns its
	// public URL.
	Save(ctx context.Context, data []byte, mimeType, ext string) (string, error)
}

type Kind string

const (
	KindLocal Kind = "local"
	KindGCS   Kind = "gcs"
)

// ObjectName derives a scene file name from the current time plus a random
// suffix, so concurrent saves within and across requests never collide.
func ObjectName(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ext == "" {
		ext = ".jpg"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return fmt.Sprintf("scene_%d_%s%s", time.Now().UnixMilli(), suffix, ext)
}
