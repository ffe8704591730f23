package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/logging"
	"github.com/utroned1234/APPDEFER/models"
	"github.com/utroned1234/APPDEFER/services"
)

// ==================== ТАРИФЫ ====================

func AdminListPackagesHandler(c *gin.Context) {
	packages, err := models.GetAllPackages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load packages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

func AdminCreatePackageHandler(c *gin.Context) {
	var req struct {
		Level         int             `json:"level" binding:"required,min=1"`
		Name          string          `json:"name" binding:"required"`
		InvestmentBs  decimal.Decimal `json:"investment_bs" binding:"required"`
		DailyProfitBs decimal.Decimal `json:"daily_profit_bs" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.InvestmentBs.IsPositive() || !req.DailyProfitBs.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "investment and daily profit must be positive"})
		return
	}

	pkg, err := models.CreatePackage(c.Request.Context(), req.Level, req.Name, req.InvestmentBs, req.DailyProfitBs)
	if err != nil {
		logging.Logger.Error("❌ Ошибка создания тарифа", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create package"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"package": pkg})
}

// AdminUpdatePackageHandler меняет тариф. Новая ставка daily_profit_bs
// применяется к следующим начислениям всех покупок пакета – начисление
// всегда читает живую ставку, не снимок.
func AdminUpdatePackageHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package id"})
		return
	}

	var req struct {
		Name          string          `json:"name" binding:"required"`
		InvestmentBs  decimal.Decimal `json:"investment_bs" binding:"required"`
		DailyProfitBs decimal.Decimal `json:"daily_profit_bs" binding:"required"`
		IsActive      bool            `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.InvestmentBs.IsPositive() || !req.DailyProfitBs.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "investment and daily profit must be positive"})
		return
	}

	err = models.UpdatePackage(c.Request.Context(), id, req.Name, req.InvestmentBs, req.DailyProfitBs, req.IsActive)
	if err != nil {
		if errors.Is(err, models.ErrPackageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update package"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "package updated"})
}

// ==================== РЕФЕРАЛЬНЫЕ ПРАВИЛА ====================

func AdminUpsertBonusRuleHandler(c *gin.Context) {
	var req struct {
		Level      int             `json:"level" binding:"required,min=1,max=3"`
		Percentage decimal.Decimal `json:"percentage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Percentage.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "percentage must not be negative"})
		return
	}

	if err := models.UpsertBonusRule(c.Request.Context(), req.Level, req.Percentage); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update bonus rule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bonus rule updated"})
}

// AdminCreditReferralBonusHandler – явное начисление реферального бонуса.
// Автоматики нет: админ смотрит расчёт и начисляет вручную.
func AdminCreditReferralBonusHandler(c *gin.Context) {
	var req struct {
		UserID      string          `json:"user_id" binding:"required"`
		AmountBs    decimal.Decimal `json:"amount_bs" binding:"required"`
		Description string          `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := services.CreditReferralBonus(c.Request.Context(), req.UserID, req.AmountBs, req.Description)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
			return
		}
		logging.Logger.Error("❌ Ошибка начисления бонуса", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to credit referral bonus"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "referral bonus credited", "entry_id": id})
}

// ==================== КОРРЕКТИРОВКИ ====================

// AdminCreateAdjustmentHandler – ручная корректировка баланса (любой знак, кроме нуля)
func AdminCreateAdjustmentHandler(c *gin.Context) {
	var req struct {
		UserID      string          `json:"user_id" binding:"required"`
		AmountBs    decimal.Decimal `json:"amount_bs" binding:"required"`
		Description string          `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := services.CreateAdjustment(c.Request.Context(), req.UserID, req.AmountBs, req.Description)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must not be zero"})
			return
		}
		logging.Logger.Error("❌ Ошибка корректировки", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create adjustment"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "adjustment created", "entry_id": id})
}

// ==================== ПОЛЬЗОВАТЕЛИ ====================

// AdminUpdateSponsorHandler переназначает спонсора пользователя.
// Назначение, создающее цикл в дереве, отклоняется.
func AdminUpdateSponsorHandler(c *gin.Context) {
	userID := c.Param("id")

	var req struct {
		SponsorID *string `json:"sponsor_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := models.UpdateSponsor(c.Request.Context(), userID, req.SponsorID)
	if err != nil {
		if errors.Is(err, models.ErrSponsorCycle) {
			c.JSON(http.StatusConflict, gin.H{"error": "sponsor assignment would create a cycle"})
			return
		}
		if errors.Is(err, models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sponsor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update sponsor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sponsor updated"})
}
