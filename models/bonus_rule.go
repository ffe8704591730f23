package models

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/utroned1234/APPDEFER/database"
)

// BonusRule – процент реферального бонуса для уровня 1..3
type BonusRule struct {
	Level      int             `json:"level" db:"level"`
	Percentage decimal.Decimal `json:"percentage" db:"percentage"`
}

func GetBonusRules(ctx context.Context) ([]BonusRule, error) {
	rows, err := database.Pool.Query(ctx, `
		SELECT level, percentage FROM referral_bonus_rules
		WHERE level <= 3
		ORDER BY level
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []BonusRule
	for rows.Next() {
		var r BonusRule
		if err := rows.Scan(&r.Level, &r.Percentage); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// BonusRuleMap возвращает уровень -> процент
func BonusRuleMap(ctx context.Context) (map[int]decimal.Decimal, error) {
	rules, err := GetBonusRules(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[int]decimal.Decimal, len(rules))
	for _, r := range rules {
		m[r.Level] = r.Percentage
	}
	return m, nil
}

// UpsertBonusRule обновляет процент уровня (админ)
func UpsertBonusRule(ctx context.Context, level int, percentage decimal.Decimal) error {
	_, err := database.Pool.Exec(ctx, `
		INSERT INTO referral_bonus_rules (level, percentage) VALUES ($1, $2)
		ON CONFLICT (level) DO UPDATE SET percentage = EXCLUDED.percentage
	`, level, percentage)
	return err
}

// SumActiveInvestment – суммарная инвестиция ACTIVE покупок набора пользователей
func SumActiveInvestment(ctx context.Context, userIDs []string) (decimal.Decimal, error) {
	if len(userIDs) == 0 {
		return decimal.Zero, nil
	}
	var sum decimal.Decimal
	err := database.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(investment_bs), 0) FROM purchases
		WHERE user_id = ANY($1) AND status = 'ACTIVE'
	`, userIDs).Scan(&sum)
	return sum, err
}
