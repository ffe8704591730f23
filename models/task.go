package models

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utroned1234/APPDEFER/database"
)

var ErrTaskNotFound = errors.New("task not found")

// DailyTask – одно из четырёх заданий дня (политика активации "tasks").
// Обновление картинки админом сдвигает updated_at и обнуляет зачёт:
// выполнение засчитывается только под текущей версией задания.
type DailyTask struct {
	Position  int       `json:"position" db:"position"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type TaskCompletion struct {
	UserID      string    `json:"user_id" db:"user_id"`
	Position    int       `json:"position" db:"position"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}

func ListTasks(ctx context.Context) ([]DailyTask, error) {
	rows, err := database.Pool.Query(ctx, `
		SELECT position, image_url, is_active, updated_at FROM daily_tasks ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// ActiveTasks возвращает активные задания. q – пул или транзакция начисления.
func ActiveTasks(ctx context.Context, q Querier) ([]DailyTask, error) {
	rows, err := q.Query(ctx, `
		SELECT position, image_url, is_active, updated_at FROM daily_tasks
		WHERE is_active = true ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanTasks(rows pgx.Rows) ([]DailyTask, error) {
	var tasks []DailyTask
	for rows.Next() {
		var t DailyTask
		if err := rows.Scan(&t.Position, &t.ImageURL, &t.IsActive, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpsertTask создаёт или обновляет задание на позиции 1..4
func UpsertTask(ctx context.Context, position int, imageURL string) (*DailyTask, error) {
	var t DailyTask
	err := database.Pool.QueryRow(ctx, `
		INSERT INTO daily_tasks (position, image_url, is_active, updated_at)
		VALUES ($1, $2, true, NOW())
		ON CONFLICT (position) DO UPDATE SET image_url = EXCLUDED.image_url, is_active = true, updated_at = NOW()
		RETURNING position, image_url, is_active, updated_at
	`, position, imageURL).Scan(&t.Position, &t.ImageURL, &t.IsActive, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func DeleteTask(ctx context.Context, position int) error {
	tag, err := database.Pool.Exec(ctx, `DELETE FROM daily_tasks WHERE position = $1`, position)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// CompleteTask отмечает выполнение задания пользователем (повтор – обновляет время)
func CompleteTask(ctx context.Context, userID string, position int) error {
	var exists bool
	err := database.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM daily_tasks WHERE position = $1 AND is_active = true)
	`, position).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTaskNotFound
	}

	_, err = database.Pool.Exec(ctx, `
		INSERT INTO task_completions (user_id, position, completed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, position) DO UPDATE SET completed_at = NOW()
	`, userID, position)
	return err
}

// CompletionTimes возвращает позиция -> время выполнения для пользователя
func CompletionTimes(ctx context.Context, q Querier, userID string) (map[int]time.Time, error) {
	rows, err := q.Query(ctx, `
		SELECT position, completed_at FROM task_completions WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[int]time.Time)
	for rows.Next() {
		var pos int
		var t time.Time
		if err := rows.Scan(&pos, &t); err != nil {
			return nil, err
		}
		m[pos] = t
	}
	return m, rows.Err()
}
