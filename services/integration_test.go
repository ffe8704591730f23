package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utroned1234/APPDEFER/config"
	"github.com/utroned1234/APPDEFER/database"
	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
)

// Интеграционные тесты гоняются против живого PostgreSQL.
// Запуск: APPDEFER_TEST_DB=1 DB_NAME=appdefer_test go test ./services/
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("APPDEFER_TEST_DB") == "" {
		t.Skip("APPDEFER_TEST_DB not set, skipping integration test")
	}

	cfg := config.Load()
	if err := logging.InitLogger(false); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	if err := database.InitDB(cfg); err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(database.CloseDB)
	return cfg
}

func createTestUser(t *testing.T, ctx context.Context) *models.User {
	t.Helper()
	name := "it_" + uuid.NewString()[:12]
	user, err := models.CreateUser(ctx, name, "secret123", "Integration Test", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func activatePackage(t *testing.T, ctx context.Context, userID string, packageID int) *models.Purchase {
	t.Helper()
	p, err := models.CreatePurchase(ctx, userID, packageID)
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if err := models.ApprovePurchase(ctx, p.ID); err != nil {
		t.Fatalf("approve purchase: %v", err)
	}
	return p
}

// Баланс – всегда свёртка журнала: после серии начислений он равен
// сумме записей, а записи никогда не меняются
func TestLedgerFoldInvariant(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, ctx)

	amounts := []string{"25", "10.50", "-3.25"}
	types := []string{models.LedgerDailyProfit, models.LedgerReferralBonus, models.LedgerAdjustment}
	expected := decimal.Zero
	for i, a := range amounts {
		amount := decimal.RequireFromString(a)
		if _, err := models.AppendEntry(ctx, database.Pool, user.ID, types[i], amount, "test"); err != nil {
			t.Fatalf("append entry: %v", err)
		}
		expected = expected.Add(amount)
	}

	balance, err := models.Balance(ctx, user.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(expected) {
		t.Errorf("balance = %s, want %s", balance, expected)
	}
}

// Гонка активаций: N параллельных запросов дают ровно одну запись DAILY_PROFIT
// на покупку – остальные отлетают от гейта под advisory-блокировкой
func TestConcurrentActivationSingleCredit(t *testing.T) {
	cfg := setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, ctx)
	activatePackage(t, ctx, user.ID, 1)

	distributor := NewDistributor(&WindowPolicy{UnlockHour: cfg.UnlockHour}, cfg.UnlockHour)
	now := time.Now()

	const workers = 8
	var wg sync.WaitGroup
	results := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = distributor.DistributeForUser(ctx, user.ID, now)
		}(i)
	}
	wg.Wait()

	credited := 0
	for _, err := range results {
		if err == nil {
			credited++
			continue
		}
		var denied *GateDeniedError
		if !errors.As(err, &denied) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if credited != 1 {
		t.Errorf("credited %d times, want exactly 1", credited)
	}

	entries, err := models.ListEntries(ctx, user.ID, models.LedgerDailyProfit, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d DAILY_PROFIT entries, want 1", len(entries))
	}
}

// Повторная активация в том же окне отклоняется с временем разблокировки
func TestSecondActivationDenied(t *testing.T) {
	cfg := setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, ctx)
	activatePackage(t, ctx, user.ID, 1)

	distributor := NewDistributor(&WindowPolicy{UnlockHour: cfg.UnlockHour}, cfg.UnlockHour)
	now := time.Now()

	if _, err := distributor.DistributeForUser(ctx, user.ID, now); err != nil {
		t.Fatalf("first activation: %v", err)
	}

	_, err := distributor.DistributeForUser(ctx, user.ID, now)
	var denied *GateDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("second activation err = %v, want GateDeniedError", err)
	}
	if denied.Status.Reason != ReasonAlreadyActivated {
		t.Errorf("reason = %s, want ALREADY_ACTIVATED", denied.Status.Reason)
	}
	if denied.Status.UnlocksAt == nil || !denied.Status.UnlocksAt.After(now) {
		t.Errorf("unlocks_at = %v, want a future time", denied.Status.UnlocksAt)
	}
}

// Отклонённая заявка не блокирует повторную покупку того же пакета
func TestRejectThenRepurchase(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, ctx)

	p, err := models.CreatePurchase(ctx, user.ID, 2)
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	if _, err := models.CreatePurchase(ctx, user.ID, 2); !errors.Is(err, models.ErrDuplicatePackage) {
		t.Errorf("duplicate while pending err = %v, want ErrDuplicatePackage", err)
	}

	if err := models.RejectPurchase(ctx, p.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := models.CreatePurchase(ctx, user.ID, 2); err != nil {
		t.Errorf("repurchase after reject err = %v, want nil", err)
	}
}

// Ровно один спин на покупку: второй подряд получает ErrNotEligible
func TestDoubleSpinBlocked(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, ctx)
	// VIP 3: инвестиция 2000, проходит порог рулетки
	p := activatePackage(t, ctx, user.ID, 3)

	roulette := NewRoulette(decimal.NewFromInt(2000))

	first, err := roulette.Spin(ctx, user.ID, p.ID, 2)
	if err != nil {
		t.Fatalf("first spin: %v", err)
	}
	if !first.WonBs.Equal(decimal.NewFromInt(50)) {
		t.Errorf("won %s, want the table amount 50 for index 2", first.WonBs)
	}

	if _, err := roulette.Spin(ctx, user.ID, p.ID, 2); !errors.Is(err, ErrNotEligible) {
		t.Errorf("second spin err = %v, want ErrNotEligible", err)
	}

	// Заблокированный сектор не проходит и не сжигает спин
	other := createTestUser(t, ctx)
	op := activatePackage(t, ctx, other.ID, 3)
	if _, err := roulette.Spin(ctx, other.ID, op.ID, 7); !errors.Is(err, ErrBlockedPrize) {
		t.Errorf("blocked sector err = %v, want ErrBlockedPrize", err)
	}
	if _, err := roulette.Spin(ctx, other.ID, op.ID, 99); !errors.Is(err, ErrInvalidPrize) {
		t.Errorf("out-of-range sector err = %v, want ErrInvalidPrize", err)
	}
	if _, err := roulette.Spin(ctx, other.ID, op.ID, 2); err != nil {
		t.Errorf("spin after rejected attempts err = %v, want nil", err)
	}

	entries, err := models.ListEntries(ctx, user.ID, models.LedgerRouletteWin, 0)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d ROULETTE_WIN entries, want 1", len(entries))
	}
}

// Трёхуровневая цепочка спонсоров: U <- S1 <- S2 <- S3, у каждого реферала
// ACTIVE пакет на 1000 Bs. При правилах {10, 5, 2}% бонус U равен {100, 50, 20}
func TestBonusBreakdownSponsorChain(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	top := createTestUser(t, ctx)
	sponsorCode := top.UserCode
	for i := 0; i < 3; i++ {
		name := "it_" + uuid.NewString()[:12]
		ref, err := models.CreateUser(ctx, name, "secret123", "Chain Test", sponsorCode)
		if err != nil {
			t.Fatalf("create referral level %d: %v", i+1, err)
		}
		// VIP 2: инвестиция 1000
		activatePackage(t, ctx, ref.ID, 2)
		sponsorCode = ref.UserCode
	}

	breakdown, err := ComputeBonusBreakdown(ctx, top.ID)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if len(breakdown.Levels) != 3 {
		t.Fatalf("got %d levels, want 3", len(breakdown.Levels))
	}

	wantBonus := []string{"100", "50", "20"}
	for i, lvl := range breakdown.Levels {
		if lvl.Referrals != 1 {
			t.Errorf("level %d referrals = %d, want 1", i+1, lvl.Referrals)
		}
		if want := decimal.RequireFromString(wantBonus[i]); !lvl.BonusBs.Equal(want) {
			t.Errorf("level %d bonus = %s, want %s", i+1, lvl.BonusBs, want)
		}
	}
	if want := decimal.RequireFromString("170"); !breakdown.TotalBs.Equal(want) {
		t.Errorf("total = %s, want %s", breakdown.TotalBs, want)
	}
}

// Без рефералов разбивка – три нулевых уровня и нулевой итог
func TestBonusBreakdownEmptyDownline(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, ctx)

	breakdown, err := ComputeBonusBreakdown(ctx, user.ID)
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if len(breakdown.Levels) != 3 {
		t.Fatalf("got %d levels, want 3", len(breakdown.Levels))
	}
	for i, lvl := range breakdown.Levels {
		if lvl.Referrals != 0 || !lvl.BonusBs.IsZero() || !lvl.InvestmentBs.IsZero() {
			t.Errorf("level %d = %+v, want zeros", i+1, lvl)
		}
	}
	if !breakdown.TotalBs.IsZero() {
		t.Errorf("total = %s, want 0", breakdown.TotalBs)
	}
}

// Второй массовый запуск в том же окне упирается в замок
func TestBulkRunLockedWithinWindow(t *testing.T) {
	cfg := setupTestDB(t)
	ctx := context.Background()

	distributor := NewDistributor(&WindowPolicy{UnlockHour: cfg.UnlockHour}, cfg.UnlockHour)
	now := time.Now()

	_, firstErr := distributor.RunBulk(ctx, now)
	_, secondErr := distributor.RunBulk(ctx, now)

	var locked *BulkLockedError
	if firstErr == nil {
		if !errors.As(secondErr, &locked) {
			t.Errorf("second run err = %v, want BulkLockedError", secondErr)
		}
	} else if !errors.As(firstErr, &locked) {
		// Окно уже было занято предыдущим прогоном тестов – это тоже корректно
		t.Errorf("first run err = %v, want nil or BulkLockedError", firstErr)
	}
}
