package services

import (
	"context"
	"time"

	"github.com/utroned1234/APPDEFER/config"
	"github.com/utroned1234/APPDEFER/models"
)

type GateReason string

const (
	ReasonNone             GateReason = "NONE"
	ReasonAlreadyActivated GateReason = "ALREADY_ACTIVATED"
	ReasonTasksIncomplete  GateReason = "TASKS_INCOMPLETE"
)

// GateStatus – результат проверки гейта активации
type GateStatus struct {
	CanActivate bool       `json:"can_activate"`
	Reason      GateReason `json:"reason"`
	UnlocksAt   *time.Time `json:"unlocks_at,omitempty"`
}

// GatePolicy решает, можно ли пользователю начислить прибыль в текущем цикле.
// Две взаимозаменяемые политики, выбор через GATE_POLICY (активна ровно одна).
// q передаётся явно: дистрибьютор перепроверяет гейт внутри транзакции начисления
// под advisory-блокировкой пользователя.
type GatePolicy interface {
	Name() string
	Check(ctx context.Context, q models.Querier, userID string, now time.Time) (*GateStatus, error)
}

func NewGatePolicy(cfg *config.Config) GatePolicy {
	if cfg.GatePolicy == "tasks" {
		return &TaskPolicy{}
	}
	return &WindowPolicy{UnlockHour: cfg.UnlockHour}
}

// WindowPolicy – активация раз в сутки, окно открывается в UnlockHour (01:00).
type WindowPolicy struct {
	UnlockHour int
}

func (p *WindowPolicy) Name() string { return "window" }

func (p *WindowPolicy) Check(ctx context.Context, q models.Querier, userID string, now time.Time) (*GateStatus, error) {
	last, err := models.LatestEntryTime(ctx, q, userID, models.LedgerDailyProfit)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return &GateStatus{CanActivate: true, Reason: ReasonNone}, nil
	}

	unlock := NextUnlock(*last, p.UnlockHour)
	if now.Before(unlock) {
		return &GateStatus{CanActivate: false, Reason: ReasonAlreadyActivated, UnlocksAt: &unlock}, nil
	}
	return &GateStatus{CanActivate: true, Reason: ReasonNone}, nil
}

// WindowStart – начало текущего окна: сегодняшний момент разблокировки,
// либо вчерашний, если он ещё не наступил.
func WindowStart(now time.Time, unlockHour int) time.Time {
	start := time.Date(now.Year(), now.Month(), now.Day(), unlockHour, 0, 0, 0, now.Location())
	if now.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

// NextUnlock – момент, когда откроется следующее окно после записи last:
// момент разблокировки в день last, либо на следующий день, если last был позже него.
func NextUnlock(last time.Time, unlockHour int) time.Time {
	unlock := time.Date(last.Year(), last.Month(), last.Day(), unlockHour, 0, 0, 0, last.Location())
	if !last.Before(unlock) {
		unlock = unlock.AddDate(0, 0, 1)
	}
	return unlock
}

// TaskPolicy – активация разрешена, когда все активные задания выполнены
// под их текущей версией, а последнее начисление старше последнего обновления заданий.
type TaskPolicy struct{}

func (p *TaskPolicy) Name() string { return "tasks" }

func (p *TaskPolicy) Check(ctx context.Context, q models.Querier, userID string, now time.Time) (*GateStatus, error) {
	tasks, err := models.ActiveTasks(ctx, q)
	if err != nil {
		return nil, err
	}

	last, err := models.LatestEntryTime(ctx, q, userID, models.LedgerDailyProfit)
	if err != nil {
		return nil, err
	}

	// Без активных заданий условие вырождается в "сегодня ещё не активировал"
	if len(tasks) == 0 {
		if last != nil && sameDay(*last, now) {
			unlock := midnightAfter(now)
			return &GateStatus{CanActivate: false, Reason: ReasonAlreadyActivated, UnlocksAt: &unlock}, nil
		}
		return &GateStatus{CanActivate: true, Reason: ReasonNone}, nil
	}

	completions, err := models.CompletionTimes(ctx, q, userID)
	if err != nil {
		return nil, err
	}

	decision := evaluateTasks(tasks, completions, last)
	return decision, nil
}

// evaluateTasks – чистая логика решения для политики заданий:
// (a) каждое активное задание выполнено после его updated_at,
// (b) последнее начисление старше самого свежего обновления заданий.
func evaluateTasks(tasks []models.DailyTask, completions map[int]time.Time, lastProfit *time.Time) *GateStatus {
	var newestUpdate time.Time
	for _, t := range tasks {
		done, ok := completions[t.Position]
		if !ok || !done.After(t.UpdatedAt) {
			return &GateStatus{CanActivate: false, Reason: ReasonTasksIncomplete}
		}
		if t.UpdatedAt.After(newestUpdate) {
			newestUpdate = t.UpdatedAt
		}
	}

	if lastProfit != nil && !lastProfit.Before(newestUpdate) {
		// Уже активировал под текущей версией заданий; откроется после их обновления
		return &GateStatus{CanActivate: false, Reason: ReasonAlreadyActivated}
	}
	return &GateStatus{CanActivate: true, Reason: ReasonNone}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func midnightAfter(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
