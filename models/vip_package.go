package models

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utroned1234/APPDEFER/database"
)

var ErrPackageNotFound = errors.New("vip package not found")

// VipPackage – конфигурация тарифа. Ядро читает её, управляет админка.
type VipPackage struct {
	ID            int             `json:"id" db:"id"`
	Level         int             `json:"level" db:"level"`
	Name          string          `json:"name" db:"name"`
	InvestmentBs  decimal.Decimal `json:"investment_bs" db:"investment_bs"`
	DailyProfitBs decimal.Decimal `json:"daily_profit_bs" db:"daily_profit_bs"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

func GetActivePackages(ctx context.Context) ([]VipPackage, error) {
	rows, err := database.Pool.Query(ctx, `
		SELECT id, level, name, investment_bs, daily_profit_bs, is_active, created_at, updated_at
		FROM vip_packages
		WHERE is_active = true
		ORDER BY level
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPackages(rows)
}

func GetAllPackages(ctx context.Context) ([]VipPackage, error) {
	rows, err := database.Pool.Query(ctx, `
		SELECT id, level, name, investment_bs, daily_profit_bs, is_active, created_at, updated_at
		FROM vip_packages
		ORDER BY level
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPackages(rows)
}

func scanPackages(rows pgx.Rows) ([]VipPackage, error) {
	var packages []VipPackage
	for rows.Next() {
		var p VipPackage
		if err := rows.Scan(&p.ID, &p.Level, &p.Name, &p.InvestmentBs, &p.DailyProfitBs, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		packages = append(packages, p)
	}
	return packages, rows.Err()
}

func GetPackageByID(ctx context.Context, id int) (*VipPackage, error) {
	var p VipPackage
	err := database.Pool.QueryRow(ctx, `
		SELECT id, level, name, investment_bs, daily_profit_bs, is_active, created_at, updated_at
		FROM vip_packages WHERE id = $1
	`, id).Scan(&p.ID, &p.Level, &p.Name, &p.InvestmentBs, &p.DailyProfitBs, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return &p, nil
}

func CreatePackage(ctx context.Context, level int, name string, investment, dailyProfit decimal.Decimal) (*VipPackage, error) {
	var p VipPackage
	err := database.Pool.QueryRow(ctx, `
		INSERT INTO vip_packages (level, name, investment_bs, daily_profit_bs)
		VALUES ($1, $2, $3, $4)
		RETURNING id, level, name, investment_bs, daily_profit_bs, is_active, created_at, updated_at
	`, level, name, investment, dailyProfit).Scan(
		&p.ID, &p.Level, &p.Name, &p.InvestmentBs, &p.DailyProfitBs, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func UpdatePackage(ctx context.Context, id int, name string, investment, dailyProfit decimal.Decimal, isActive bool) error {
	tag, err := database.Pool.Exec(ctx, `
		UPDATE vip_packages
		SET name = $1, investment_bs = $2, daily_profit_bs = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
	`, name, investment, dailyProfit, isActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPackageNotFound
	}
	return nil
}
