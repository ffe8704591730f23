package models

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utroned1234/APPDEFER/database"
)

// LastBulkRunAt возвращает время последнего массового начисления, nil если не было
func LastBulkRunAt(ctx context.Context) (*time.Time, error) {
	var t time.Time
	err := database.Pool.QueryRow(ctx, `SELECT last_run_at FROM daily_profit_run WHERE id = 1`).Scan(&t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// TryAcquireBulkRun атомарно фиксирует запуск массового начисления.
// Conditional update по singleton-строке: запись проходит, только если
// предыдущий запуск был до начала текущего окна. false = в этом окне уже запускали.
// Корректно при нескольких инстансах сервера – никакого состояния в процессе.
func TryAcquireBulkRun(ctx context.Context, windowStart, now time.Time) (bool, error) {
	tag, err := database.Pool.Exec(ctx, `
		INSERT INTO daily_profit_run (id, last_run_at) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET last_run_at = EXCLUDED.last_run_at
		WHERE daily_profit_run.last_run_at < $2
	`, now, windowStart)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
