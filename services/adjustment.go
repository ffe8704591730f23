package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/database"
	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
)

// CreateAdjustment пишет ручную корректировку баланса (ADJUSTMENT).
// Сумма любого знака, кроме нуля. Существующие записи не трогаются –
// исправление ошибки делается компенсирующей записью.
func CreateAdjustment(ctx context.Context, userID string, amount decimal.Decimal, description string) (string, error) {
	if amount.IsZero() {
		return "", ErrInvalidAmount
	}
	if description == "" {
		description = "Ajuste manual"
	}

	id, err := models.AppendEntry(ctx, database.Pool, userID, models.LedgerAdjustment, amount, description)
	if err != nil {
		return "", err
	}

	logging.Logger.Info("✅ Ручная корректировка баланса",
		zap.String("user_id", userID),
		zap.String("amount_bs", amount.String()))
	return id, nil
}
