package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/database"
	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
	"github.com/utroned1234/APPDEFER/monitoring"
)

// Prize – сектор рулетки. Заблокированные сектора показываются,
// но выпасть не могут.
type Prize struct {
	Index    int             `json:"index"`
	AmountBs decimal.Decimal `json:"amount_bs"`
	Blocked  bool            `json:"blocked"`
}

var prizeTable = []Prize{
	{Index: 0, AmountBs: decimal.NewFromInt(5)},
	{Index: 1, AmountBs: decimal.NewFromInt(20)},
	{Index: 2, AmountBs: decimal.NewFromInt(50)},
	{Index: 3, AmountBs: decimal.NewFromInt(100)},
	{Index: 4, AmountBs: decimal.NewFromInt(80)},
	{Index: 5, AmountBs: decimal.NewFromInt(200)},
	{Index: 6, AmountBs: decimal.NewFromInt(300)},
	{Index: 7, AmountBs: decimal.NewFromInt(500), Blocked: true},
	{Index: 8, AmountBs: decimal.NewFromInt(1000), Blocked: true},
}

// Prizes возвращает таблицу призов для отрисовки колеса
func Prizes() []Prize {
	out := make([]Prize, len(prizeTable))
	copy(out, prizeTable)
	return out
}

// Roulette – один спин на каждую покупку с инвестицией не ниже порога
type Roulette struct {
	MinInvestmentBs decimal.Decimal
}

func NewRoulette(minInvestment decimal.Decimal) *Roulette {
	return &Roulette{MinInvestmentBs: minInvestment}
}

// SpinHistory – прошлый выигрыш по покупке
type SpinHistory struct {
	PurchaseID  string          `json:"purchase_id"`
	PackageName string          `json:"package_name"`
	WonBs       decimal.Decimal `json:"won_bs"`
}

// Eligibility – доступные и использованные спины пользователя
type Eligibility struct {
	Eligible      []models.Purchase `json:"eligible"`
	History       []SpinHistory     `json:"history"`
	TotalWinnings decimal.Decimal   `json:"total_winnings_bs"`
}

// CheckEligibility возвращает покупки с доступным спином и историю выигрышей.
// Спин привязан к покупке: ACTIVE, инвестиция >= порога, roulette_spun = false.
func (r *Roulette) CheckEligibility(ctx context.Context, userID string) (*Eligibility, error) {
	purchases, err := models.GetActivePurchases(ctx, database.Pool, userID)
	if err != nil {
		return nil, err
	}

	result := &Eligibility{TotalWinnings: decimal.Zero}
	for _, p := range purchases {
		if p.InvestmentBs.LessThan(r.MinInvestmentBs) {
			continue
		}
		if p.RouletteSpun {
			won := decimal.Zero
			if p.RouletteWonBs.Valid {
				won = p.RouletteWonBs.Decimal
			}
			result.History = append(result.History, SpinHistory{
				PurchaseID:  p.ID,
				PackageName: p.PackageName,
				WonBs:       won,
			})
			result.TotalWinnings = result.TotalWinnings.Add(won)
			continue
		}
		result.Eligible = append(result.Eligible, p)
	}
	return result, nil
}

// SpinResult – итог спина
type SpinResult struct {
	PurchaseID  string          `json:"purchase_id"`
	PackageName string          `json:"package_name"`
	PrizeIndex  int             `json:"prize_index"`
	WonBs       decimal.Decimal `json:"won_bs"`
}

// Spin крутит рулетку по покупке. Клиент объявляет выпавший сектор,
// сервер только проверяет его по своей таблице: индекс вне диапазона и
// заблокированный сектор отклоняются, сумма всегда берётся из таблицы.
// purchaseID пустой – берётся подходящая покупка с наибольшей инвестицией.
// Ровно один спин на покупку: отметка roulette_spun ставится условным
// UPDATE в той же транзакции, что и запись выигрыша в журнал,
// повторный спин не проходит по RowsAffected.
func (r *Roulette) Spin(ctx context.Context, userID, purchaseID string, prizeIndex int) (*SpinResult, error) {
	prize, err := prizeAt(prizeIndex)
	if err != nil {
		return nil, err
	}

	var result *SpinResult
	err = withSerializableRetry(ctx, func(tx pgx.Tx) error {
		p, err := lockEligiblePurchase(ctx, tx, userID, purchaseID, r.MinInvestmentBs)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE purchases
			SET roulette_spun = true, roulette_won_bs = $2, updated_at = NOW()
			WHERE id = $1 AND roulette_spun = false
		`, p.ID, prize.AmountBs)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotEligible
		}

		_, err = models.AppendEntry(ctx, tx, userID, models.LedgerRouletteWin, prize.AmountBs,
			"Premio de ruleta - Paquete "+p.PackageName)
		if err != nil {
			return err
		}

		result = &SpinResult{
			PurchaseID:  p.ID,
			PackageName: p.PackageName,
			PrizeIndex:  prize.Index,
			WonBs:       prize.AmountBs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.RouletteSpinsTotal.Inc()
	logging.Logger.Info("✅ Спин рулетки",
		zap.String("user_id", userID),
		zap.String("purchase_id", result.PurchaseID),
		zap.String("won_bs", result.WonBs.String()))
	return result, nil
}

// prizeAt валидирует объявленный сектор по таблице призов
func prizeAt(index int) (*Prize, error) {
	if index < 0 || index >= len(prizeTable) {
		return nil, ErrInvalidPrize
	}
	p := prizeTable[index]
	if p.Blocked {
		return nil, ErrBlockedPrize
	}
	return &p, nil
}

// lockEligiblePurchase находит и блокирует покупку для спина
func lockEligiblePurchase(ctx context.Context, tx pgx.Tx, userID, purchaseID string, minInvestment decimal.Decimal) (*models.Purchase, error) {
	query := `
		SELECT p.id, p.investment_bs, p.roulette_spun, v.name
		FROM purchases p
		JOIN vip_packages v ON v.id = p.package_id
		WHERE p.user_id = $1 AND p.status = 'ACTIVE'
			AND p.investment_bs >= $2 AND p.roulette_spun = false
	`
	args := []any{userID, minInvestment}
	if purchaseID != "" {
		query += ` AND p.id = $3`
		args = append(args, purchaseID)
	}
	query += ` ORDER BY p.investment_bs DESC LIMIT 1 FOR UPDATE OF p`

	var p models.Purchase
	err := tx.QueryRow(ctx, query, args...).Scan(&p.ID, &p.InvestmentBs, &p.RouletteSpun, &p.PackageName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotEligible
		}
		return nil, err
	}
	return &p, nil
}
