package models

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utroned1234/APPDEFER/database"
)

// Типы записей журнала кошелька
const (
	LedgerDailyProfit   = "DAILY_PROFIT"
	LedgerReferralBonus = "REFERRAL_BONUS"
	LedgerAdjustment    = "ADJUSTMENT"
	LedgerRouletteWin   = "ROULETTE_WIN"
)

// EarningTypes – типы, которые входят в "общий заработок" на дашборде
var EarningTypes = []string{LedgerDailyProfit, LedgerReferralBonus, LedgerAdjustment}

// LedgerEntry – неизменяемый денежный факт. Записи никогда не обновляются
// и не удаляются; баланс и итоги – всегда свёртка по истории.
type LedgerEntry struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"user_id" db:"user_id"`
	Type        string          `json:"type" db:"type"`
	AmountBs    decimal.Decimal `json:"amount_bs" db:"amount_bs"`
	Description string          `json:"description" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// AppendEntry добавляет запись в журнал. q – пул или открытая транзакция:
// начисления всегда пишут запись внутри той же транзакции, что и обновление покупки.
func AppendEntry(ctx context.Context, q Querier, userID, entryType string, amount decimal.Decimal, description string) (string, error) {
	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO wallet_ledger (user_id, type, amount_bs, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, entryType, amount, description).Scan(&id)
	return id, err
}

// Balance – сумма всех записей пользователя
func Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := database.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_bs), 0) FROM wallet_ledger WHERE user_id = $1
	`, userID).Scan(&sum)
	return sum, err
}

// SumByType – сумма записей одного типа, опционально начиная с момента since
func SumByType(ctx context.Context, userID, entryType string, since *time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	var err error
	if since != nil {
		err = database.Pool.QueryRow(ctx, `
			SELECT COALESCE(SUM(amount_bs), 0) FROM wallet_ledger
			WHERE user_id = $1 AND type = $2 AND created_at >= $3
		`, userID, entryType, *since).Scan(&sum)
	} else {
		err = database.Pool.QueryRow(ctx, `
			SELECT COALESCE(SUM(amount_bs), 0) FROM wallet_ledger
			WHERE user_id = $1 AND type = $2
		`, userID, entryType).Scan(&sum)
	}
	return sum, err
}

// SumEarnings – сумма по типам заработка (DAILY_PROFIT + REFERRAL_BONUS + ADJUSTMENT)
func SumEarnings(ctx context.Context, userID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := database.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_bs), 0) FROM wallet_ledger
		WHERE user_id = $1 AND type = ANY($2)
	`, userID, EarningTypes).Scan(&sum)
	return sum, err
}

// LatestEntryTime возвращает время последней записи данного типа, nil если записей нет.
// q принимается явно: гейт перечитывает это значение внутри транзакции начисления.
func LatestEntryTime(ctx context.Context, q Querier, userID, entryType string) (*time.Time, error) {
	var t time.Time
	err := q.QueryRow(ctx, `
		SELECT created_at FROM wallet_ledger
		WHERE user_id = $1 AND type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, entryType).Scan(&t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListEntries возвращает записи пользователя, свежие первыми
func ListEntries(ctx context.Context, userID string, entryType string, limit int) ([]LedgerEntry, error) {
	query := `
		SELECT id, user_id, type, amount_bs, COALESCE(description, ''), created_at
		FROM wallet_ledger
		WHERE user_id = $1
	`
	args := []any{userID}
	if entryType != "" {
		query += ` AND type = $2`
		args = append(args, entryType)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(limit)
	}

	rows, err := database.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.AmountBs, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DailyEarningsPoint – одна точка графика заработка
type DailyEarningsPoint struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// EarningsHistory – ежедневная прибыль за последние days дней, сгруппированная по дате
func EarningsHistory(ctx context.Context, userID string, days int) ([]DailyEarningsPoint, error) {
	since := time.Now().AddDate(0, 0, -(days - 1))
	since = time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, since.Location())

	rows, err := database.Pool.Query(ctx, `
		SELECT created_at::date, SUM(amount_bs)
		FROM wallet_ledger
		WHERE user_id = $1 AND type = $2 AND created_at >= $3
		GROUP BY created_at::date
	`, userID, LedgerDailyProfit, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDate := make(map[string]decimal.Decimal)
	for rows.Next() {
		var d time.Time
		var amount decimal.Decimal
		if err := rows.Scan(&d, &amount); err != nil {
			return nil, err
		}
		byDate[d.Format("2006-01-02")] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Все дни присутствуют в ответе, пустые – нулями
	points := make([]DailyEarningsPoint, 0, days)
	for i := 0; i < days; i++ {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		amount, ok := byDate[date]
		if !ok {
			amount = decimal.Zero
		}
		points = append(points, DailyEarningsPoint{Date: date, Amount: amount})
	}
	return points, nil
}
