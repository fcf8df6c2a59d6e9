package mediastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/neurobots-backend/internal/platform/logger"
)

const DefaultPublicPrefix = "/generated_images"

// Local writes into a directory that the HTTP layer serves under PublicPrefix.
type Local struct {
	Dir          string
	PublicPrefix string
	log          *logger.Logger
}

func NewLocal(log *logger.Logger, dir, publicPrefix string) (*Local, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "generated_images"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	publicPrefix = "/" + strings.Trim(strings.TrimSpace(publicPrefix), "/")
	if publicPrefix == "/" {
		publicPrefix = DefaultPublicPrefix
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Local{Dir: dir, PublicPrefix: publicPrefix, log: log.With("service", "LocalMediaStore")}, nil
}

func (s *Local) Save(ctx context.Context, data []byte, mimeType, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := ObjectName(ext)
	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	s.log.Debug("image saved", "file", name, "bytes", len(data), "mime", mimeType)
	return s.PublicPrefix + "/" + name, nil
}
