package services

import (
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("bad time %q: %v", value, err)
	}
	return ts
}

func TestNextUnlock(t *testing.T) {
	tests := []struct {
		name       string
		last       string
		unlockHour int
		want       string
	}{
		{
			name:       "entry before unlock hour opens same day",
			last:       "2026-03-10 00:30",
			unlockHour: 1,
			want:       "2026-03-10 01:00",
		},
		{
			name:       "entry after unlock hour opens next day",
			last:       "2026-03-10 01:30",
			unlockHour: 1,
			want:       "2026-03-11 01:00",
		},
		{
			name:       "entry exactly at unlock hour opens next day",
			last:       "2026-03-10 01:00",
			unlockHour: 1,
			want:       "2026-03-11 01:00",
		},
		{
			name:       "late evening entry opens next day",
			last:       "2026-03-10 23:59",
			unlockHour: 1,
			want:       "2026-03-11 01:00",
		},
		{
			name:       "midnight unlock hour",
			last:       "2026-03-10 12:00",
			unlockHour: 0,
			want:       "2026-03-11 00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextUnlock(mustTime(t, tt.last), tt.unlockHour)
			want := mustTime(t, tt.want)
			if !got.Equal(want) {
				t.Errorf("NextUnlock(%s, %d) = %s, want %s", tt.last, tt.unlockHour, got, want)
			}
		})
	}
}

func TestWindowStart(t *testing.T) {
	tests := []struct {
		name       string
		now        string
		unlockHour int
		want       string
	}{
		{
			name:       "before unlock hour the window started yesterday",
			now:        "2026-03-10 00:30",
			unlockHour: 1,
			want:       "2026-03-09 01:00",
		},
		{
			name:       "after unlock hour the window started today",
			now:        "2026-03-10 09:00",
			unlockHour: 1,
			want:       "2026-03-10 01:00",
		},
		{
			name:       "exactly at unlock hour the window is open",
			now:        "2026-03-10 01:00",
			unlockHour: 1,
			want:       "2026-03-10 01:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowStart(mustTime(t, tt.now), tt.unlockHour)
			want := mustTime(t, tt.want)
			if !got.Equal(want) {
				t.Errorf("WindowStart(%s, %d) = %s, want %s", tt.now, tt.unlockHour, got, want)
			}
		})
	}
}

// Окно и следующая разблокировка согласованы: запись внутри окна
// блокирует ровно до начала следующего окна
func TestWindowConsistency(t *testing.T) {
	now := mustTime(t, "2026-03-10 14:00")
	start := WindowStart(now, 1)

	entry := start.Add(5 * time.Minute)
	unlock := NextUnlock(entry, 1)

	if !unlock.After(now) {
		t.Errorf("entry at %s should block until %s, which must be after %s", entry, unlock, now)
	}
	if got, want := unlock, WindowStart(now, 1).AddDate(0, 0, 1); !got.Equal(want) {
		t.Errorf("unlock = %s, want next window start %s", got, want)
	}
}
