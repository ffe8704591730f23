package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/database"
	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
)

// LevelBonus – бонус одного уровня реферальной сети
type LevelBonus struct {
	Level        int             `json:"level"`
	Referrals    int             `json:"referrals"`
	Percentage   decimal.Decimal `json:"percentage"`
	InvestmentBs decimal.Decimal `json:"investment_bs"`
	BonusBs      decimal.Decimal `json:"bonus_bs"`
}

// BonusBreakdown – расчёт бонусов по трём уровням сети
type BonusBreakdown struct {
	Levels  []LevelBonus    `json:"levels"`
	TotalBs decimal.Decimal `json:"total_bs"`
}

// computeLevelBonus – бонус уровня: инвестиция * процент / 100.
// Точная десятичная арифметика, округление только на выдаче.
func computeLevelBonus(investment, percentage decimal.Decimal) decimal.Decimal {
	return investment.Mul(percentage).Div(decimal.NewFromInt(100))
}

// ComputeBonusBreakdown считает потенциальный реферальный бонус пользователя:
// по каждому уровню 1..3 суммарная инвестиция ACTIVE покупок рефералов,
// умноженная на процент уровня. Чистый расчёт, журнал не трогает.
func ComputeBonusBreakdown(ctx context.Context, userID string) (*BonusBreakdown, error) {
	levels, err := models.DownlineLevels(ctx, userID)
	if err != nil {
		return nil, err
	}
	rules, err := models.BonusRuleMap(ctx)
	if err != nil {
		return nil, err
	}

	breakdown := &BonusBreakdown{TotalBs: decimal.Zero}
	for i, userIDs := range levels {
		level := i + 1
		pct := rules[level]

		investment, err := models.SumActiveInvestment(ctx, userIDs)
		if err != nil {
			return nil, err
		}

		bonus := computeLevelBonus(investment, pct)
		breakdown.Levels = append(breakdown.Levels, LevelBonus{
			Level:        level,
			Referrals:    len(userIDs),
			Percentage:   pct,
			InvestmentBs: investment,
			BonusBs:      bonus,
		})
		breakdown.TotalBs = breakdown.TotalBs.Add(bonus)
	}
	return breakdown, nil
}

// CreditReferralBonus пишет REFERRAL_BONUS в журнал. Вызывается только
// явной админской операцией – автоматического начисления бонусов нет.
func CreditReferralBonus(ctx context.Context, userID string, amount decimal.Decimal, description string) (string, error) {
	if !amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	if description == "" {
		description = "Bono de referidos"
	}

	id, err := models.AppendEntry(ctx, database.Pool, userID, models.LedgerReferralBonus, amount, description)
	if err != nil {
		return "", err
	}

	logging.Logger.Info("✅ Начислен реферальный бонус",
		zap.String("user_id", userID),
		zap.String("amount_bs", amount.String()))
	return id, nil
}
