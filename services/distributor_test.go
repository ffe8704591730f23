package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/utroned1234/APPDEFER/models"
)

func TestResolveCreditRate(t *testing.T) {
	tests := []struct {
		name     string
		live     string
		snapshot string
		want     string
		wantErr  error
	}{
		{
			name:     "positive live rate used as is",
			live:     "55",
			snapshot: "25",
			want:     "55",
		},
		{
			name:     "zero live rate aborts even with a positive snapshot",
			live:     "0",
			snapshot: "25",
			wantErr:  ErrInvalidRate,
		},
		{
			name:     "negative live rate aborts",
			live:     "-10",
			snapshot: "25",
			wantErr:  ErrInvalidRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.Purchase{
				DailyProfitBs:        decimal.RequireFromString(tt.snapshot),
				PackageDailyProfitBs: decimal.RequireFromString(tt.live),
			}

			got, err := resolveCreditRate(p)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if want := decimal.RequireFromString(tt.want); !got.Equal(want) {
				t.Errorf("rate = %s, want %s", got, want)
			}
		})
	}
}
