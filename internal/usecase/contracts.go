package usecase

import (
	"context"
	"io"
	"time"

	"github.com/andreyxaxa/Print-Detection/internal/entity"
)

type (
	CardUseCase interface {
		Create(ctx context.Context, data []byte, contentType string, size int64) (*entity.Card, error)
		Replace(ctx context.Context, cardID string, data []byte, contentType string, size int64) (*entity.Card, error)
		Get(ctx context.Context, cardID string) (*entity.Card, error)
		List(ctx context.Context, limit int, cursor string) ([]*entity.Card, string, error)
		DownloadDetectedImage(ctx context.Context, cardID string) (io.ReadCloser, string, error)

		// outbox relay surface
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		CleanupOutbox(ctx context.Context) error
	}

	AccessKeyUseCase interface {
		Issue(ctx context.Context, cardID string, ttl time.Duration) (*entity.AccessKey, error)
		Verify(ctx context.Context, apiKey, cardID string) (bool, error)
		MarkUsed(ctx context.Context, apiKey string) error
	}
)
