package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeLevelBonus(t *testing.T) {
	tests := []struct {
		name       string
		investment string
		percentage string
		want       string
	}{
		{"level 1 default", "1000", "10", "100"},
		{"level 2 default", "1000", "5", "50"},
		{"level 3 default", "1000", "2", "20"},
		{"zero investment", "0", "10", "0"},
		{"zero percentage", "5000", "0", "0"},
		{"fractional result stays exact", "333", "10", "33.3"},
		{"cent-level precision", "0.01", "10", "0.001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := decimal.RequireFromString(tt.investment)
			pct := decimal.RequireFromString(tt.percentage)
			want := decimal.RequireFromString(tt.want)

			got := computeLevelBonus(inv, pct)
			if !got.Equal(want) {
				t.Errorf("computeLevelBonus(%s, %s) = %s, want %s", inv, pct, got, want)
			}
		})
	}
}

// Сумма бонусов по уровням равна бонусу от суммы при равном проценте –
// никакой потери точности на разбиении
func TestLevelBonusAdditive(t *testing.T) {
	pct := decimal.RequireFromString("7.5")
	a := decimal.RequireFromString("123.45")
	b := decimal.RequireFromString("678.90")

	sum := computeLevelBonus(a.Add(b), pct)
	parts := computeLevelBonus(a, pct).Add(computeLevelBonus(b, pct))
	if !sum.Equal(parts) {
		t.Errorf("bonus(%s+%s) = %s, bonus(a)+bonus(b) = %s", a, b, sum, parts)
	}
}
