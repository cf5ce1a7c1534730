package infrastructure

import (
	"context"

	"github.com/andreyxaxa/Print-Detection/internal/dto"
	"github.com/andreyxaxa/Print-Detection/internal/entity"
)

type (
	// Detector is the external model collaborator. A failed call
	// surfaces as an error, there is no retry policy here.
	Detector interface {
		Detect(ctx context.Context, image []byte, cardID string) (*dto.DetectionResult, error)
		Health(ctx context.Context) error
	}

	Thumbnailer interface {
		Thumbnail(ctx context.Context, contentType string, data []byte) ([]byte, error)
	}

	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}
)
