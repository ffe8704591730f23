package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/utroned1234/APPDEFER/config"
	"github.com/utroned1234/APPDEFER/database"
	"github.com/utroned1234/APPDEFER/handlers"
	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/middleware"
	"github.com/utroned1234/APPDEFER/services"
	"github.com/utroned1234/APPDEFER/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment")
	} else {
		fmt.Println("✅ .env file loaded and applied")
	}
	cfg := config.Load()

	if err := logging.InitLogger(cfg.Env == "release"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логгера: %v", err)
	}

	if err := database.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка подключения к БД: %v", err)
	}
	defer database.CloseDB()

	database.InitRedis(cfg)
	defer database.CloseRedis()

	gate := services.NewGatePolicy(cfg)
	distributor := services.NewDistributor(gate, cfg.UnlockHour)
	roulette := services.NewRoulette(decimal.NewFromInt(cfg.RouletteMinInvestment))
	notifier := utils.NewTelegramNotifier(cfg)

	if cfg.Env == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Fatalf("❌ Ошибка настройки trusted proxies: %v", err)
	}
	r.Use(middleware.SetupCORS(cfg))

	// ========== СЛУЖЕБНЫЕ ==========
	r.GET("/health", handlers.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ========== ПУБЛИЧНЫЕ ==========
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	public := r.Group("/api")
	{
		public.POST("/auth/register", middleware.RateLimit(authLimiter), handlers.RegisterHandler(cfg))
		public.POST("/auth/login", middleware.RateLimit(authLimiter), handlers.LoginHandler(cfg))
		public.POST("/auth/refresh", handlers.RefreshHandler(cfg))
		public.GET("/packages", handlers.PackagesHandler)
		public.GET("/bonus-rules", handlers.BonusRulesHandler)
		public.GET("/roulette/prizes", handlers.RoulettePrizesHandler)
	}

	// ========== КАБИНЕТ ==========
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	{
		api.GET("/me", handlers.MeHandler)
		api.GET("/dashboard", handlers.DashboardHandler(cfg))
		api.GET("/wallet/balance", handlers.BalanceHandler)
		api.GET("/wallet/history", handlers.WalletHistoryHandler)

		api.GET("/activation/status", handlers.ActivationStatusHandler(gate))
		api.POST("/activation", handlers.ActivateHandler(distributor))

		api.GET("/purchases/my", handlers.MyPurchasesHandler)
		api.POST("/purchases", handlers.CreatePurchaseHandler(notifier))

		api.GET("/referrals/network", handlers.ReferralNetworkHandler)
		api.GET("/referrals/bonus", handlers.ReferralBonusHandler)

		api.GET("/roulette/status", handlers.RouletteStatusHandler(roulette))
		api.POST("/roulette/spin", handlers.RouletteSpinHandler(roulette))

		api.GET("/tasks", handlers.TasksHandler)
		api.POST("/tasks/:position/complete", handlers.CompleteTaskHandler)
	}

	// ========== АДМИНКА ==========
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.GET("/packages", handlers.AdminListPackagesHandler)
		admin.POST("/packages", handlers.AdminCreatePackageHandler)
		admin.PUT("/packages/:id", handlers.AdminUpdatePackageHandler)

		admin.GET("/purchases", handlers.AdminListPurchasesHandler)
		admin.POST("/purchases/:id/approve", handlers.AdminApprovePurchaseHandler(notifier))
		admin.POST("/purchases/:id/reject", handlers.AdminRejectPurchaseHandler)

		admin.POST("/profit/run", handlers.AdminRunBulkProfitHandler(distributor, notifier))
		admin.GET("/profit/status", handlers.AdminBulkProfitStatusHandler(cfg.UnlockHour))

		admin.PUT("/bonus-rules", handlers.AdminUpsertBonusRuleHandler)
		admin.POST("/referral-bonus", handlers.AdminCreditReferralBonusHandler)
		admin.POST("/adjustments", handlers.AdminCreateAdjustmentHandler)

		admin.PUT("/tasks/:position", handlers.AdminUpsertTaskHandler)
		admin.DELETE("/tasks/:position", handlers.AdminDeleteTaskHandler)

		admin.PUT("/users/:id/sponsor", handlers.AdminUpdateSponsorHandler)
	}

	fmt.Println("==========================================")
	fmt.Printf("🚀 APPDEFER запущен на порту %s\n", cfg.Port)
	fmt.Printf("📋 Политика активации: %s (окно с %02d:00)\n", cfg.GatePolicy, cfg.UnlockHour)
	fmt.Println("==========================================")

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Ошибка запуска сервера: %v", err)
	}
}
