package services

import (
	"testing"
	"time"

	"github.com/utroned1234/APPDEFER/models"
)

func taskAt(position int, updated time.Time) models.DailyTask {
	return models.DailyTask{Position: position, ImageURL: "https://cdn.example/task.png", IsActive: true, UpdatedAt: updated}
}

func TestEvaluateTasks(t *testing.T) {
	base := mustTime(t, "2026-03-10 08:00")

	tests := []struct {
		name        string
		tasks       []models.DailyTask
		completions map[int]time.Time
		lastProfit  *time.Time
		can         bool
		reason      GateReason
	}{
		{
			name:        "no completions",
			tasks:       []models.DailyTask{taskAt(1, base)},
			completions: map[int]time.Time{},
			can:         false,
			reason:      ReasonTasksIncomplete,
		},
		{
			name:        "completion before task update does not count",
			tasks:       []models.DailyTask{taskAt(1, base)},
			completions: map[int]time.Time{1: base.Add(-time.Hour)},
			can:         false,
			reason:      ReasonTasksIncomplete,
		},
		{
			name:        "all tasks freshly completed, never credited",
			tasks:       []models.DailyTask{taskAt(1, base), taskAt(2, base)},
			completions: map[int]time.Time{1: base.Add(time.Hour), 2: base.Add(2 * time.Hour)},
			can:         true,
			reason:      ReasonNone,
		},
		{
			name:        "one of several tasks missing",
			tasks:       []models.DailyTask{taskAt(1, base), taskAt(2, base)},
			completions: map[int]time.Time{1: base.Add(time.Hour)},
			can:         false,
			reason:      ReasonTasksIncomplete,
		},
		{
			name:        "already credited under current task version",
			tasks:       []models.DailyTask{taskAt(1, base)},
			completions: map[int]time.Time{1: base.Add(time.Hour)},
			lastProfit:  timePtr(base.Add(3 * time.Hour)),
			can:         false,
			reason:      ReasonAlreadyActivated,
		},
		{
			name:        "task updated after last credit reopens the gate",
			tasks:       []models.DailyTask{taskAt(1, base.Add(4 * time.Hour))},
			completions: map[int]time.Time{1: base.Add(5 * time.Hour)},
			lastProfit:  timePtr(base.Add(3 * time.Hour)),
			can:         true,
			reason:      ReasonNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluateTasks(tt.tasks, tt.completions, tt.lastProfit)
			if got.CanActivate != tt.can {
				t.Errorf("CanActivate = %v, want %v", got.CanActivate, tt.can)
			}
			if got.Reason != tt.reason {
				t.Errorf("Reason = %s, want %s", got.Reason, tt.reason)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
