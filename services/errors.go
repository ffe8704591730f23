package services

import (
	"errors"
	"fmt"
	"time"
)

// Ошибки валидации: наружу без повторов, частичных записей не оставляют
var (
	ErrNoActivePurchases = errors.New("no active purchases")
	ErrInvalidRate       = errors.New("invalid daily profit rate")
	ErrNotEligible       = errors.New("no eligible purchase for roulette")
	ErrInvalidPrize      = errors.New("invalid prize index")
	ErrBlockedPrize      = errors.New("prize is blocked")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// GateDeniedError – отказ гейта активации (уже активировал / задания не выполнены)
type GateDeniedError struct {
	Status *GateStatus
}

func (e *GateDeniedError) Error() string {
	return fmt.Sprintf("activation denied: %s", e.Status.Reason)
}

// BulkLockedError – массовое начисление в этом окне уже запускали
type BulkLockedError struct {
	LastRunAt time.Time
	UnlocksAt time.Time
}

func (e *BulkLockedError) Error() string {
	return fmt.Sprintf("bulk profit run locked until %s", e.UnlocksAt.Format(time.RFC3339))
}
