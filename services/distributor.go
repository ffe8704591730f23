package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/database"
	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
	"github.com/utroned1234/APPDEFER/monitoring"
)

const maxTxRetries = 3

// Distributor начисляет ежедневную прибыль по ACTIVE покупкам.
// Единственная точка записи DAILY_PROFIT в журнал.
type Distributor struct {
	Gate       GatePolicy
	UnlockHour int
}

func NewDistributor(gate GatePolicy, unlockHour int) *Distributor {
	return &Distributor{Gate: gate, UnlockHour: unlockHour}
}

// CreditResult – итог начисления одному пользователю
type CreditResult struct {
	UserID        string          `json:"user_id"`
	Purchases     int             `json:"purchases"`
	TotalProfitBs decimal.Decimal `json:"total_profit_bs"`
}

// DistributeForUser начисляет прибыль пользователю по всем его ACTIVE покупкам.
// Всё в одной serializable-транзакции под advisory-блокировкой пользователя:
// гейт перепроверяется уже под блокировкой, поэтому параллельные запросы
// одного пользователя не дают двойного начисления. Ставка всегда живая,
// снимок на покупке обновляется до неё.
func (d *Distributor) DistributeForUser(ctx context.Context, userID string, now time.Time) (*CreditResult, error) {
	result, err := d.creditUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	monitoring.ProfitCreditsTotal.WithLabelValues("user").Add(float64(result.Purchases))
	logging.Logger.Info("✅ Начислена ежедневная прибыль",
		zap.String("user_id", userID),
		zap.Int("purchases", result.Purchases),
		zap.String("total_bs", result.TotalProfitBs.String()))
	return result, nil
}

// resolveCreditRate – живая ставка пакета. Join в GetActivePurchases
// гарантирует её наличие; ставка <= 0 – ошибка конфигурации, не повод
// откатываться на снимок покупки.
func resolveCreditRate(p models.Purchase) (decimal.Decimal, error) {
	if !p.PackageDailyProfitBs.IsPositive() {
		return decimal.Decimal{}, ErrInvalidRate
	}
	return p.PackageDailyProfitBs, nil
}

// creditPurchases пишет записи журнала и обновляет покупки. Всё или ничего:
// некорректная ставка любого пакета откатывает транзакцию целиком.
func creditPurchases(ctx context.Context, tx pgx.Tx, userID string, purchases []models.Purchase) (*CreditResult, error) {
	total := decimal.Zero
	for _, p := range purchases {
		rate, err := resolveCreditRate(p)
		if err != nil {
			return nil, err
		}

		_, err = models.AppendEntry(ctx, tx, userID, models.LedgerDailyProfit, rate,
			"Ganancia diaria - "+p.PackageName)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			UPDATE purchases
			SET total_earned_bs = total_earned_bs + $2,
				daily_profit_bs = $2,
				last_profit_at = NOW(),
				updated_at = NOW()
			WHERE id = $1
		`, p.ID, rate)
		if err != nil {
			return nil, err
		}
		total = total.Add(rate)
	}
	return &CreditResult{UserID: userID, Purchases: len(purchases), TotalProfitBs: total}, nil
}

// BulkResult – итог массового начисления
type BulkResult struct {
	Processed int             `json:"processed"`
	Credited  int             `json:"credited"`
	Skipped   int             `json:"skipped"`
	Failed    int             `json:"failed"`
	Synced    int64           `json:"synced_snapshots"`
	TotalBs   decimal.Decimal `json:"total_bs"`
}

// RunBulk – массовое начисление всем пользователям с ACTIVE покупками.
// Замок окна захватывается ДО обработки: второй запуск в том же окне
// получает BulkLockedError и не трогает ни одной записи. Каждый пользователь
// начисляется в собственной транзакции – сбой одного не откатывает остальных.
func (d *Distributor) RunBulk(ctx context.Context, now time.Time) (*BulkResult, error) {
	start := WindowStart(now, d.UnlockHour)
	ok, err := models.TryAcquireBulkRun(ctx, start, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		last, err := models.LastBulkRunAt(ctx)
		if err != nil {
			return nil, err
		}
		monitoring.BulkRunsTotal.WithLabelValues("locked").Inc()
		lockedErr := &BulkLockedError{UnlocksAt: NextUnlock(now, d.UnlockHour)}
		if last != nil {
			lockedErr.LastRunAt = *last
			lockedErr.UnlocksAt = NextUnlock(*last, d.UnlockHour)
		}
		return nil, lockedErr
	}

	synced, err := models.SyncProfitSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	purchases, err := models.GetAllActivePurchases(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string][]models.Purchase)
	order := make([]string, 0)
	for _, p := range purchases {
		if _, seen := byUser[p.UserID]; !seen {
			order = append(order, p.UserID)
		}
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	result := &BulkResult{Synced: synced, TotalBs: decimal.Zero}
	for _, userID := range order {
		result.Processed++
		res, err := d.creditUser(ctx, userID, now)
		if err != nil {
			var denied *GateDeniedError
			if errors.As(err, &denied) || errors.Is(err, ErrNoActivePurchases) {
				result.Skipped++
				continue
			}
			result.Failed++
			logging.Logger.Warn("⚠️ Сбой начисления пользователю",
				zap.String("user_id", userID), zap.Error(err))
			continue
		}
		result.Credited++
		result.TotalBs = result.TotalBs.Add(res.TotalProfitBs)
		monitoring.ProfitCreditsTotal.WithLabelValues("bulk").Add(float64(res.Purchases))
	}

	monitoring.BulkRunsTotal.WithLabelValues("ok").Inc()
	logging.Logger.Info("✅ Массовое начисление завершено",
		zap.Int("processed", result.Processed),
		zap.Int("credited", result.Credited),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.String("total_bs", result.TotalBs.String()))
	return result, nil
}

// creditUser – общий путь начисления (ручная активация и массовый запуск).
// Гейт один и тот же: кто активировал сам в этом окне, в массовом запуске
// будет пропущен, двойного начисления нет.
func (d *Distributor) creditUser(ctx context.Context, userID string, now time.Time) (*CreditResult, error) {
	var result *CreditResult
	err := withSerializableRetry(ctx, func(tx pgx.Tx) error {
		// Блокировка по пользователю живёт до конца транзакции
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
			return err
		}

		status, err := d.Gate.Check(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		if !status.CanActivate {
			return &GateDeniedError{Status: status}
		}

		purchases, err := models.GetActivePurchases(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(purchases) == 0 {
			return ErrNoActivePurchases
		}

		res, err := creditPurchases(ctx, tx, userID, purchases)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// withSerializableRetry выполняет fn в serializable-транзакции,
// повторяя до maxTxRetries раз при конфликте сериализации или дедлоке
func withSerializableRetry(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := runSerializable(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
		logging.Logger.Warn("⚠️ Конфликт сериализации, повтор транзакции",
			zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return lastErr
}

func runSerializable(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := database.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
