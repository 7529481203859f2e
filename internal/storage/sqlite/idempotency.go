package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/boardwire/boardwire/internal/storage"
	"github.com/boardwire/boardwire/internal/types"
)

type idempotencyRepo struct{}

func (r *idempotencyRepo) FindByMessageID(ctx context.Context, ex storage.Executor, messageID string) (*types.IdempotencyRecord, error) {
	row := ex.QueryRowContext(ctx, "SELECT message_id, handler, response, created_at FROM idempotency_records WHERE message_id = ?", messageID)

	var rec types.IdempotencyRecord
	var createdAt string
	if err := row.Scan(&rec.MessageID, &rec.Handler, &rec.Response, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan idempotency record: %w", err)
	}
	var err error
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *idempotencyRepo) Create(ctx context.Context, ex storage.Executor, rec *types.IdempotencyRecord) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO idempotency_records (message_id, handler, response, created_at)
		VALUES (?, ?, ?, ?)`,
		rec.MessageID, rec.Handler, rec.Response, formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert idempotency record: %w", err)
	}
	return nil
}

func (r *idempotencyRepo) Prune(ctx context.Context, ex storage.Executor, olderThan int64) (int64, error) {
	res, err := ex.ExecContext(ctx, "DELETE FROM idempotency_records WHERE created_at < ?", formatTime(epochMillisToTime(olderThan)))
	if err != nil {
		return 0, fmt.Errorf("prune idempotency records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune idempotency records rows affected: %w", err)
	}
	return n, nil
}
