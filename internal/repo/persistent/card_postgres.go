package persistent

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Print-Detection/internal/entity"
	"github.com/andreyxaxa/Print-Detection/pkg/postgres"
	"github.com/andreyxaxa/Print-Detection/pkg/types/errs"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	cardsTable = "cards"

	// Columns
	cardIDColumn           = "card_id"
	detectedImageURLColumn = "detected_image_url"
	cardStatusColumn       = "status"
	scoresColumn           = "scores"
	updatedAtColumn        = "updated_at"
	modelColumn            = "model"
)

type CardRepo struct {
	*postgres.Postgres
}

func NewCardRepo(pg *postgres.Postgres) *CardRepo {
	return &CardRepo{pg}
}

// Upsert replaces the whole row for card.CardID in a single statement,
// so concurrent readers see either the previous result or the new one.
func (r *CardRepo) Upsert(ctx context.Context, card *entity.Card) error {
	sql, args, err := r.Builder.
		Insert(cardsTable).
		Columns(
			cardIDColumn,
			detectedImageURLColumn,
			cardStatusColumn,
			scoresColumn,
			updatedAtColumn,
			modelColumn,
		).
		Values(
			card.CardID,
			card.DetectedImageURL,
			card.Status,
			card.Scores,
			card.UpdatedAt,
			card.Model,
		).
		Suffix(`ON CONFLICT (card_id) DO UPDATE SET
			detected_image_url = EXCLUDED.detected_image_url,
			status = EXCLUDED.status,
			scores = EXCLUDED.scores,
			updated_at = EXCLUDED.updated_at,
			model = EXCLUDED.model`).
		ToSql()
	if err != nil {
		return fmt.Errorf("CardRepo - Upsert - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("CardRepo - Upsert - executor.Exec: %w", err)
	}

	return nil
}

func (r *CardRepo) Get(ctx context.Context, cardID string) (*entity.Card, error) {
	sql, args, err := r.Builder.
		Select(
			cardIDColumn,
			detectedImageURLColumn,
			cardStatusColumn,
			scoresColumn,
			updatedAtColumn,
			modelColumn,
		).
		From(cardsTable).
		Where(squirrel.Eq{cardIDColumn: cardID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("CardRepo - Get - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var card entity.Card
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&card.CardID,
		&card.DetectedImageURL,
		&card.Status,
		&card.Scores,
		&card.UpdatedAt,
		&card.Model,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("CardRepo - Get: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("CardRepo - Get - executor.QueryRow: %w", err)
	}

	return &card, nil
}

// List returns the limit most recently updated cards. Keyset
// pagination: the cursor encodes the (updated_at, card_id) of the last
// returned row, an empty next cursor means the last page.
func (r *CardRepo) List(ctx context.Context, limit int, cursor string) ([]*entity.Card, string, error) {
	q := r.Builder.
		Select(
			cardIDColumn,
			detectedImageURLColumn,
			cardStatusColumn,
			scoresColumn,
			updatedAtColumn,
			modelColumn,
		).
		From(cardsTable).
		OrderBy(updatedAtColumn+" DESC", cardIDColumn+" DESC").
		Limit(uint64(limit + 1))

	if cursor != "" {
		updatedAt, cardID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("CardRepo - List: %w", err)
		}
		q = q.Where(squirrel.Expr("(updated_at, card_id) < (?, ?)", updatedAt, cardID))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, "", fmt.Errorf("CardRepo - List - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, "", fmt.Errorf("CardRepo - List - executor.Query: %w", err)
	}
	defer rows.Close()

	cards := make([]*entity.Card, 0, limit)
	for rows.Next() {
		var card entity.Card
		err = rows.Scan(
			&card.CardID,
			&card.DetectedImageURL,
			&card.Status,
			&card.Scores,
			&card.UpdatedAt,
			&card.Model,
		)
		if err != nil {
			return nil, "", fmt.Errorf("CardRepo - List - rows.Scan: %w", err)
		}
		cards = append(cards, &card)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("CardRepo - List - rows.Err: %w", err)
	}

	var nextCursor string
	if len(cards) > limit {
		cards = cards[:limit]
		last := cards[limit-1]
		nextCursor = encodeCursor(last.UpdatedAt, last.CardID)
	}

	return cards, nextCursor, nil
}

func encodeCursor(updatedAt time.Time, cardID string) string {
	raw := updatedAt.UTC().Format(time.RFC3339Nano) + "|" + cardID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", errs.ErrInvalidCursor
	}

	updatedAtStr, cardID, ok := strings.Cut(string(raw), "|")
	if !ok || cardID == "" {
		return time.Time{}, "", errs.ErrInvalidCursor
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, updatedAtStr)
	if err != nil {
		return time.Time{}, "", errs.ErrInvalidCursor
	}

	return updatedAt, cardID, nil
}
