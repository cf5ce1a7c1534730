package repo

import (
	"context"
	"io"

	"github.com/andreyxaxa/Print-Detection/internal/entity"
	"github.com/google/uuid"
)

type (
	// CardRepo is the durable record of each card's latest detection
	// result.
	CardRepo interface {
		Upsert(ctx context.Context, card *entity.Card) error
		Get(ctx context.Context, cardID string) (*entity.Card, error)
		List(ctx context.Context, limit int, cursor string) ([]*entity.Card, string, error)
	}

	AccessKeyRepo interface {
		Create(ctx context.Context, key *entity.AccessKey) error
		Get(ctx context.Context, apiKey string) (*entity.AccessKey, error)
		MarkUsed(ctx context.Context, apiKey string) error
	}

	ImageRepo interface {
		Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error
		UploadBytes(ctx context.Context, key string, data []byte, contentType string, size int64) error
		Download(ctx context.Context, key string) (io.ReadCloser, string, error)
		Delete(ctx context.Context, key string) error
	}

	OutboxRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int, maxRetries int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		DeleteOldProcessedAndFailed(ctx context.Context) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
