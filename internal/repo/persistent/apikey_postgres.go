package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Print-Detection/internal/entity"
	"github.com/andreyxaxa/Print-Detection/pkg/postgres"
	"github.com/andreyxaxa/Print-Detection/pkg/types/errs"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	apikeysTable = "apikeys"

	// Columns
	apiKeyColumn       = "api_key"
	keyCardIDColumn    = "card_id"
	keyExpiresAtColumn = "expires_at"
	keyUsedColumn      = "used"
)

type AccessKeyRepo struct {
	*postgres.Postgres
}

func NewAccessKeyRepo(pg *postgres.Postgres) *AccessKeyRepo {
	return &AccessKeyRepo{pg}
}

func (r *AccessKeyRepo) Create(ctx context.Context, key *entity.AccessKey) error {
	sql, args, err := r.Builder.
		Insert(apikeysTable).
		Columns(
			apiKeyColumn,
			keyCardIDColumn,
			keyExpiresAtColumn,
			keyUsedColumn,
		).
		Values(
			key.APIKey,
			key.CardID,
			key.ExpiresAt,
			key.Used,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("AccessKeyRepo - Create - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("AccessKeyRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *AccessKeyRepo) Get(ctx context.Context, apiKey string) (*entity.AccessKey, error) {
	sql, args, err := r.Builder.
		Select(
			apiKeyColumn,
			keyCardIDColumn,
			keyExpiresAtColumn,
			keyUsedColumn,
		).
		From(apikeysTable).
		Where(squirrel.Eq{apiKeyColumn: apiKey}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("AccessKeyRepo - Get - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var key entity.AccessKey
	err = executor.QueryRow(ctx, sql, args...).Scan(
		&key.APIKey,
		&key.CardID,
		&key.ExpiresAt,
		&key.Used,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("AccessKeyRepo - Get: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("AccessKeyRepo - Get - executor.QueryRow: %w", err)
	}

	return &key, nil
}

func (r *AccessKeyRepo) MarkUsed(ctx context.Context, apiKey string) error {
	sql, args, err := r.Builder.
		Update(apikeysTable).
		Set(keyUsedColumn, true).
		Where(squirrel.Eq{apiKeyColumn: apiKey}).
		ToSql()
	if err != nil {
		return fmt.Errorf("AccessKeyRepo - MarkUsed - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("AccessKeyRepo - MarkUsed - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("AccessKeyRepo - MarkUsed: %w", errs.ErrRecordNotFound)
	}

	return nil
}
