package models

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utroned1234/APPDEFER/database"
)

// Статусы покупки: PENDING -> ACTIVE (одобрение) или PENDING -> REJECTED (отказ).
// ACTIVE – терминальный статус, назад не переводится.
const (
	PurchasePending  = "PENDING"
	PurchaseActive   = "ACTIVE"
	PurchaseRejected = "REJECTED"
)

var (
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrDuplicatePackage – у пользователя уже есть PENDING/ACTIVE покупка этого пакета.
	// REJECTED не блокирует – отклонённый запрос можно повторить сразу.
	ErrDuplicatePackage   = errors.New("package already requested or active")
	ErrPurchaseNotPending = errors.New("purchase is not pending")
)

type Purchase struct {
	ID            string              `json:"id" db:"id"`
	UserID        string              `json:"user_id" db:"user_id"`
	PackageID     int                 `json:"package_id" db:"package_id"`
	InvestmentBs  decimal.Decimal     `json:"investment_bs" db:"investment_bs"`
	DailyProfitBs decimal.Decimal     `json:"daily_profit_bs" db:"daily_profit_bs"`
	TotalEarnedBs decimal.Decimal     `json:"total_earned_bs" db:"total_earned_bs"`
	Status        string              `json:"status" db:"status"`
	RouletteSpun  bool                `json:"roulette_spun" db:"roulette_spun"`
	RouletteWonBs decimal.NullDecimal `json:"roulette_won_bs" db:"roulette_won_bs"`
	LastProfitAt  *time.Time          `json:"last_profit_at" db:"last_profit_at"`
	ActivatedAt   *time.Time          `json:"activated_at" db:"activated_at"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`

	// Присоединённые данные пакета (для выдачи наружу)
	PackageName          string          `json:"package_name,omitempty" db:"package_name"`
	PackageLevel         int             `json:"package_level,omitempty" db:"package_level"`
	PackageDailyProfitBs decimal.Decimal `json:"package_daily_profit_bs,omitempty" db:"package_daily_profit_bs"`
}

const purchaseJoinColumns = `
	p.id, p.user_id, p.package_id, p.investment_bs, p.daily_profit_bs, p.total_earned_bs,
	p.status, p.roulette_spun, p.roulette_won_bs, p.last_profit_at, p.activated_at,
	p.created_at, p.updated_at, v.name, v.level, v.daily_profit_bs
`

func scanPurchaseRows(rows pgx.Rows) ([]Purchase, error) {
	var purchases []Purchase
	for rows.Next() {
		var p Purchase
		err := rows.Scan(
			&p.ID, &p.UserID, &p.PackageID, &p.InvestmentBs, &p.DailyProfitBs, &p.TotalEarnedBs,
			&p.Status, &p.RouletteSpun, &p.RouletteWonBs, &p.LastProfitAt, &p.ActivatedAt,
			&p.CreatedAt, &p.UpdatedAt, &p.PackageName, &p.PackageLevel, &p.PackageDailyProfitBs,
		)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

// CreatePurchase создаёт заявку на пакет (PENDING).
// Инвестиция снимается как снимок текущей цены пакета.
func CreatePurchase(ctx context.Context, userID string, packageID int) (*Purchase, error) {
	pkg, err := GetPackageByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrPackageNotFound
	}

	// Повторная покупка того же пакета блокируется, пока есть PENDING или ACTIVE
	var exists bool
	err = database.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM purchases
			WHERE user_id = $1 AND package_id = $2 AND status IN ('PENDING', 'ACTIVE')
		)
	`, userID, packageID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicatePackage
	}

	var p Purchase
	err = database.Pool.QueryRow(ctx, `
		INSERT INTO purchases (user_id, package_id, investment_bs, daily_profit_bs)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, package_id, investment_bs, daily_profit_bs, total_earned_bs,
			status, roulette_spun, roulette_won_bs, last_profit_at, activated_at, created_at, updated_at
	`, userID, packageID, pkg.InvestmentBs, pkg.DailyProfitBs).Scan(
		&p.ID, &p.UserID, &p.PackageID, &p.InvestmentBs, &p.DailyProfitBs, &p.TotalEarnedBs,
		&p.Status, &p.RouletteSpun, &p.RouletteWonBs, &p.LastProfitAt, &p.ActivatedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.PackageName = pkg.Name
	p.PackageLevel = pkg.Level
	p.PackageDailyProfitBs = pkg.DailyProfitBs
	return &p, nil
}

// ApprovePurchase переводит PENDING -> ACTIVE: ставит activated_at и
// снимает снимок текущей ставки пакета. Снимок – только для отображения,
// начисление всегда читает живую ставку.
func ApprovePurchase(ctx context.Context, purchaseID string) error {
	tag, err := database.Pool.Exec(ctx, `
		UPDATE purchases p
		SET status = 'ACTIVE',
			activated_at = NOW(),
			daily_profit_bs = v.daily_profit_bs,
			updated_at = NOW()
		FROM vip_packages v
		WHERE p.id = $1 AND p.status = 'PENDING' AND v.id = p.package_id
	`, purchaseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPurchaseNotPending
	}
	return nil
}

// RejectPurchase переводит PENDING -> REJECTED. Записей в журнале нет:
// деньги до одобрения не удерживались.
func RejectPurchase(ctx context.Context, purchaseID string) error {
	tag, err := database.Pool.Exec(ctx, `
		UPDATE purchases SET status = 'REJECTED', updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
	`, purchaseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPurchaseNotPending
	}
	return nil
}

// GetActivePurchases возвращает ACTIVE покупки пользователя с данными пакета.
// q – пул или транзакция: дистрибьютор перечитывает список внутри транзакции начисления.
func GetActivePurchases(ctx context.Context, q Querier, userID string) ([]Purchase, error) {
	rows, err := q.Query(ctx, `
		SELECT `+purchaseJoinColumns+`
		FROM purchases p
		JOIN vip_packages v ON v.id = p.package_id
		WHERE p.user_id = $1 AND p.status = 'ACTIVE'
		ORDER BY p.activated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPurchaseRows(rows)
}

// GetAllActivePurchases – все ACTIVE покупки системы (массовое начисление)
func GetAllActivePurchases(ctx context.Context) ([]Purchase, error) {
	rows, err := database.Pool.Query(ctx, `
		SELECT `+purchaseJoinColumns+`
		FROM purchases p
		JOIN vip_packages v ON v.id = p.package_id
		WHERE p.status = 'ACTIVE'
		ORDER BY p.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPurchaseRows(rows)
}

func ListUserPurchases(ctx context.Context, userID string) ([]Purchase, error) {
	rows, err := database.Pool.Query(ctx, `
		SELECT `+purchaseJoinColumns+`
		FROM purchases p
		JOIN vip_packages v ON v.id = p.package_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPurchaseRows(rows)
}

func ListPurchasesByStatus(ctx context.Context, status string, limit, offset int) ([]Purchase, error) {
	rows, err := database.Pool.Query(ctx, `
		SELECT `+purchaseJoinColumns+`
		FROM purchases p
		JOIN vip_packages v ON v.id = p.package_id
		WHERE p.status = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPurchaseRows(rows)
}

func CountActivePurchases(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := database.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM purchases WHERE user_id = $1 AND status = 'ACTIVE'
	`, userID).Scan(&count)
	return count, err
}

// SyncProfitSnapshots выравнивает снимок daily_profit_bs с текущей ставкой пакета
// у всех ACTIVE покупок (витринная консистентность перед массовым начислением).
// Возвращает число обновлённых строк.
func SyncProfitSnapshots(ctx context.Context) (int64, error) {
	tag, err := database.Pool.Exec(ctx, `
		UPDATE purchases p
		SET daily_profit_bs = v.daily_profit_bs, updated_at = NOW()
		FROM vip_packages v
		WHERE v.id = p.package_id AND p.status = 'ACTIVE' AND p.daily_profit_bs <> v.daily_profit_bs
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
