package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utroned1234/APPDEFER/config"
	"github.com/utroned1234/APPDEFER/database"
	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
)

// Гоняется против живого PostgreSQL.
// Запуск: APPDEFER_TEST_DB=1 DB_NAME=appdefer_test go test ./handlers/
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

// Разбивка заработка содержит все четыре типа записей, включая корректировки
func TestDashboardBreakdownPerType(t *testing.T) {
	cfg := setupTestDB(t)
	ctx := context.Background()

	user, err := models.CreateUser(ctx, "it_"+uuid.NewString()[:12], "secret123", "Dashboard Test", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	entries := []struct {
		entryType string
		amount    string
	}{
		{models.LedgerDailyProfit, "25"},
		{models.LedgerReferralBonus, "10.50"},
		{models.LedgerAdjustment, "-3.25"},
		{models.LedgerRouletteWin, "50"},
	}
	for _, e := range entries {
		_, err := models.AppendEntry(ctx, database.Pool, user.ID, e.entryType,
			decimal.RequireFromString(e.amount), "test")
		if err != nil {
			t.Fatalf("append %s: %v", e.entryType, err)
		}
	}

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/dashboard", nil)
	c.Set("userID", user.ID)

	DashboardHandler(cfg)(c)

	if w.Code != 200 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		BalanceBs string `json:"balance_bs"`
		Earnings  struct {
			TotalBs         string `json:"total_bs"`
			DailyProfitBs   string `json:"daily_profit_bs"`
			ReferralBonusBs string `json:"referral_bonus_bs"`
			AdjustmentsBs   string `json:"adjustments_bs"`
			RouletteWinsBs  string `json:"roulette_wins_bs"`
		} `json:"earnings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	checks := map[string][2]string{
		"balance":        {resp.BalanceBs, "82.25"},
		"daily_profit":   {resp.Earnings.DailyProfitBs, "25"},
		"referral_bonus": {resp.Earnings.ReferralBonusBs, "10.50"},
		"adjustments":    {resp.Earnings.AdjustmentsBs, "-3.25"},
		"roulette_wins":  {resp.Earnings.RouletteWinsBs, "50"},
		// total = DAILY_PROFIT + REFERRAL_BONUS + ADJUSTMENT, без рулетки
		"total": {resp.Earnings.TotalBs, "32.25"},
	}
	for name, pair := range checks {
		got := decimal.RequireFromString(pair[0])
		want := decimal.RequireFromString(pair[1])
		if !got.Equal(want) {
			t.Errorf("%s = %s, want %s", name, got, want)
		}
	}
}
