package card

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/andreyxaxa/Print-Detection/internal/entity"
	"github.com/andreyxaxa/Print-Detection/internal/infrastructure"
	"github.com/andreyxaxa/Print-Detection/internal/repo"
	"github.com/andreyxaxa/Print-Detection/internal/repo/persistent"
	"github.com/andreyxaxa/Print-Detection/pkg/logger"
	"github.com/andreyxaxa/Print-Detection/pkg/token"
	"github.com/andreyxaxa/Print-Detection/pkg/types/errs"
)

type CardUseCase struct {
	cardRepo   repo.CardRepo
	imageRepo  repo.ImageRepo
	outboxRepo repo.OutboxRepo
	transactor repo.Transactor

	detector infrastructure.Detector
	thumbs   infrastructure.Thumbnailer
	ids      *token.Generator

	idAttempts int
	now        func() time.Time

	logger logger.Interface
}

func New(
	cardRepo repo.CardRepo,
	imageRepo repo.ImageRepo,
	outboxRepo repo.OutboxRepo,
	transactor repo.Transactor,
	detector infrastructure.Detector,
	thumbs infrastructure.Thumbnailer,
	ids *token.Generator,
	idAttempts int,
	l logger.Interface,
) *CardUseCase {
	return &CardUseCase{
		cardRepo:   cardRepo,
		imageRepo:  imageRepo,
		outboxRepo: outboxRepo,
		transactor: transactor,
		detector:   detector,
		thumbs:     thumbs,
		ids:        ids,
		idAttempts: idAttempts,
		now:        time.Now,
		logger:     l,
	}
}

// Create runs the full pipeline for a new card: fresh card_id, store
// the original, detect, store the annotated result, upsert the card
// together with its outbox event.
func (uc *CardUseCase) Create(ctx context.Context, data []byte, contentType string, size int64) (*entity.Card, error) {
	cardID, err := uc.newCardID(ctx)
	if err != nil {
		return nil, fmt.Errorf("CardUseCase - Create - uc.newCardID: %w", err)
	}

	card, err := uc.detectAndStore(ctx, cardID, data, contentType, size)
	if err != nil {
		return nil, fmt.Errorf("CardUseCase - Create: %w", err)
	}

	return card, nil
}

// Replace reruns detection for an existing card_id. Authorization is
// the caller's concern; which of two concurrent replaces lands last is
// not serialized (last write wins, the upsert itself is atomic).
func (uc *CardUseCase) Replace(ctx context.Context, cardID string, data []byte, contentType string, size int64) (*entity.Card, error) {
	card, err := uc.detectAndStore(ctx, cardID, data, contentType, size)
	if err != nil {
		return nil, fmt.Errorf("CardUseCase - Replace: %w", err)
	}

	return card, nil
}

func (uc *CardUseCase) detectAndStore(ctx context.Context, cardID string, data []byte, contentType string, size int64) (*entity.Card, error) {
	uploadKey := persistent.UploadKeyPrefix + cardID

	// 1. keep the original
	err := uc.imageRepo.UploadBytes(ctx, uploadKey, data, contentType, size)
	if err != nil {
		return nil, fmt.Errorf("uc.imageRepo.UploadBytes: %w", err)
	}

	// 2. run the model; failures propagate, no retry
	res, err := uc.detector.Detect(ctx, data, cardID)
	if err != nil {
		return nil, fmt.Errorf("uc.detector.Detect: %w", err)
	}

	// 3. keep the annotated result
	resultKey := persistent.ResultKeyPrefix + cardID
	err = uc.imageRepo.UploadBytes(ctx, resultKey, res.Annotated, contentType, int64(len(res.Annotated)))
	if err != nil {
		return nil, fmt.Errorf("uc.imageRepo.UploadBytes: %w", err)
	}

	// 4. thumbnail for the index page; non-fatal
	thumb, err := uc.thumbs.Thumbnail(ctx, contentType, res.Annotated)
	if err != nil {
		uc.logger.Warn("failed to build thumbnail for card_id=%s, error=%v", cardID, err)
	} else {
		err = uc.imageRepo.UploadBytes(ctx, persistent.ThumbKeyPrefix+cardID, thumb, contentType, int64(len(thumb)))
		if err != nil {
			uc.logger.Warn("failed to upload thumbnail for card_id=%s, error=%v", cardID, err)
		}
	}

	card := &entity.Card{
		CardID:           cardID,
		DetectedImageURL: detectedImageURL(cardID),
		Status:           res.Status,
		Scores:           res.Scores,
		UpdatedAt:        uc.now().UTC(),
		Model:            res.Model,
	}

	// 5. card row and outbox event land in one transaction
	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.cardRepo.Upsert(ctx, card); err != nil {
			return fmt.Errorf("uc.cardRepo.Upsert: %w", err)
		}

		event, err := uc.createOutboxEvent(card)
		if err != nil {
			return fmt.Errorf("uc.createOutboxEvent: %w", err)
		}
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("uc.outboxRepo.Create: %w", err)
		}

		return nil
	})

	// transaction failed: the stored objects have no owning row, drop them
	if err != nil {
		for _, key := range []string{uploadKey, resultKey, persistent.ThumbKeyPrefix + cardID} {
			deleteErr := uc.imageRepo.Delete(ctx, key)
			if deleteErr != nil {
				uc.logger.Error(deleteErr, "CardUseCase - detectAndStore - uc.imageRepo.Delete")
			}
		}
		return nil, fmt.Errorf("uc.transactor.WithinTransaction: %w", err)
	}

	return card, nil
}

func (uc *CardUseCase) Get(ctx context.Context, cardID string) (*entity.Card, error) {
	card, err := uc.cardRepo.Get(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("CardUseCase - Get - uc.cardRepo.Get: %w", err)
	}

	return card, nil
}

func (uc *CardUseCase) List(ctx context.Context, limit int, cursor string) ([]*entity.Card, string, error) {
	cards, nextCursor, err := uc.cardRepo.List(ctx, limit, cursor)
	if err != nil {
		return nil, "", fmt.Errorf("CardUseCase - List - uc.cardRepo.List: %w", err)
	}

	return cards, nextCursor, nil
}

func (uc *CardUseCase) DownloadDetectedImage(ctx context.Context, cardID string) (io.ReadCloser, string, error) {
	// 404 before touching storage
	_, err := uc.cardRepo.Get(ctx, cardID)
	if err != nil {
		return nil, "", fmt.Errorf("CardUseCase - DownloadDetectedImage - uc.cardRepo.Get: %w", err)
	}

	body, contentType, err := uc.imageRepo.Download(ctx, persistent.ResultKeyPrefix+cardID)
	if err != nil {
		return nil, "", fmt.Errorf("CardUseCase - DownloadDetectedImage - uc.imageRepo.Download: %w", err)
	}

	return body, contentType, nil
}

// newCardID draws short random ids and retries on the (unlikely)
// collision with an existing card.
func (uc *CardUseCase) newCardID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < uc.idAttempts; attempt++ {
		id, err := uc.ids.Generate()
		if err != nil {
			return "", fmt.Errorf("uc.ids.Generate: %w", err)
		}

		_, err = uc.cardRepo.Get(ctx, id)
		if errors.Is(err, errs.ErrRecordNotFound) {
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("uc.cardRepo.Get: %w", err)
		}
	}

	return "", errs.ErrIDCollision
}
