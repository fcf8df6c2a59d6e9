package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/neurobots-backend/internal/platform/imagegen"
	"github.com/yungbote/neurobots-backend/internal/platform/llm"
	"github.com/yungbote/neurobots-backend/internal/platform/logger"
	"github.com/yungbote/neurobots-backend/internal/platform/mediastore"
	"github.com/yungbote/neurobots-backend/internal/realtime/bus"
)

type Clients struct {
	AI     llm.Client
	Images imagegen.Client
	Media  mediastore.Store
	Bus    bus.Bus

	gcs *mediastore.GCS
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Generation backend
	ai, err := llm.New(ctx, log, cfg.LLM)
	if err != nil {
		return Clients{}, fmt.Errorf("init generation backend: %w", err)
	}

	// Image backend
	images, err := imagegen.New(log, cfg.Images)
	if err != nil {
		return Clients{}, fmt.Errorf("init image backend: %w", err)
	}

	// Media store
	var (
		media mediastore.Store
		gcs   *mediastore.GCS
	)
	switch cfg.MediaStore {
	case "gcs":
		gcs, err = mediastore.NewGCS(ctx, log, cfg.GCS)
		if err != nil {
			return Clients{}, fmt.Errorf("init gcs media store: %w", err)
		}
		media = gcs
	default:
		local, err := mediastore.NewLocal(log, cfg.MediaDir, cfg.MediaPrefix)
		if err != nil {
			return Clients{}, fmt.Errorf("init local media store: %w", err)
		}
		media = local
	}

	// Progress bus
	var b bus.Bus
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		b, err = bus.NewRedisBus(log, cfg.Redis)
		if err != nil {
			if gcs != nil {
				_ = gcs.Close()
			}
			return Clients{}, fmt.Errorf("init redis lesson bus: %w", err)
		}
	} else {
		b = bus.NewLocalBus()
	}

	return Clients{AI: ai, Images: images, Media: media, Bus: b, gcs: gcs}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.gcs != nil {
		_ = c.gcs.Close()
	}
}
