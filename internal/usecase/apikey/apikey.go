// Package apikey issues and verifies the short-lived, card-scoped
// credentials that gate the replace mutation.
package apikey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/Print-Detection/internal/entity"
	"github.com/andreyxaxa/Print-Detection/internal/repo"
	"github.com/andreyxaxa/Print-Detection/pkg/token"
	"github.com/andreyxaxa/Print-Detection/pkg/types/errs"
)

type AccessKeyUseCase struct {
	keyRepo  repo.AccessKeyRepo
	cardRepo repo.CardRepo
	tokens   *token.Generator

	now func() time.Time
}

func New(keyRepo repo.AccessKeyRepo, cardRepo repo.CardRepo, tokens *token.Generator) *AccessKeyUseCase {
	return &AccessKeyUseCase{
		keyRepo:  keyRepo,
		cardRepo: cardRepo,
		tokens:   tokens,
		now:      time.Now,
	}
}

// Issue mints a key scoped to an existing card. Previously issued keys
// for the same card stay live; multiple keys may coexist.
func (uc *AccessKeyUseCase) Issue(ctx context.Context, cardID string, ttl time.Duration) (*entity.AccessKey, error) {
	_, err := uc.cardRepo.Get(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("AccessKeyUseCase - Issue - uc.cardRepo.Get: %w", err)
	}

	apiKey, err := uc.tokens.Generate()
	if err != nil {
		return nil, fmt.Errorf("AccessKeyUseCase - Issue - uc.tokens.Generate: %w", err)
	}

	key := &entity.AccessKey{
		APIKey:    apiKey,
		CardID:    cardID,
		ExpiresAt: uc.now().Add(ttl),
		Used:      false,
	}

	err = uc.keyRepo.Create(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("AccessKeyUseCase - Issue - uc.keyRepo.Create: %w", err)
	}

	return key, nil
}

// Verify reports whether apiKey authorizes a mutation on cardID. An
// unknown key, a key scoped to another card and an expired key are all
// the same plain false; callers must not learn which check failed.
// A key is valid through the exact expiry instant.
func (uc *AccessKeyUseCase) Verify(ctx context.Context, apiKey, cardID string) (bool, error) {
	key, err := uc.keyRepo.Get(ctx, apiKey)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("AccessKeyUseCase - Verify - uc.keyRepo.Get: %w", err)
	}

	if key.CardID != cardID {
		return false, nil
	}

	if key.ExpiresAt.Before(uc.now()) {
		return false, nil
	}

	return true, nil
}

// MarkUsed flips the used flag. The default replace path never calls
// this; it exists for deployments that want one-time keys.
func (uc *AccessKeyUseCase) MarkUsed(ctx context.Context, apiKey string) error {
	err := uc.keyRepo.MarkUsed(ctx, apiKey)
	if err != nil {
		return fmt.Errorf("AccessKeyUseCase - MarkUsed - uc.keyRepo.MarkUsed: %w", err)
	}

	return nil
}
