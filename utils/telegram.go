package utils

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/utroned1234/APPDEFER/config"
	"github.com/utroned1234/APPDEFER/logging"
)

// TelegramNotifier шлёт админам события, требующие внимания.
// Без токена работает в демо-режиме: сообщения уходят только в лог.
type TelegramNotifier struct {
	bot   *tgbotapi.BotAPI
	chats []int64
}

func NewTelegramNotifier(cfg *config.Config) *TelegramNotifier {
	n := &TelegramNotifier{chats: cfg.TelegramAdminChats}
	if cfg.TelegramBotToken == "" {
		logging.Logger.Info("📋 Telegram-уведомления в демо-режиме (нет токена)")
		return n
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logging.Logger.Warn("⚠️ Telegram-бот недоступен, уведомления только в лог", zap.Error(err))
		return n
	}
	n.bot = bot
	logging.Logger.Info("✅ Telegram-уведомления включены", zap.String("bot", bot.Self.UserName))
	return n
}

func (n *TelegramNotifier) send(text string) {
	if n.bot == nil || len(n.chats) == 0 {
		logging.Logger.Info("📋 [TELEGRAM DEMO] " + text)
		return
	}
	for _, chatID := range n.chats {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := n.bot.Send(msg); err != nil {
			logging.Logger.Warn("⚠️ Не удалось отправить Telegram-сообщение",
				zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

// NotifyPurchaseRequest – новая заявка на пакет ждёт одобрения
func (n *TelegramNotifier) NotifyPurchaseRequest(username, packageName string, investment decimal.Decimal) {
	n.send(fmt.Sprintf("🛒 Nueva solicitud: %s quiere el paquete %s (%s Bs)",
		username, packageName, investment.StringFixed(2)))
}

// NotifyPurchaseApproved – покупка одобрена
func (n *TelegramNotifier) NotifyPurchaseApproved(purchaseID string) {
	n.send(fmt.Sprintf("✅ Compra aprobada: %s", purchaseID))
}

// NotifyBulkRun – итог массового начисления
func (n *TelegramNotifier) NotifyBulkRun(credited, skipped, failed int, totalBs decimal.Decimal) {
	n.send(fmt.Sprintf("💰 Ganancia diaria distribuida: %d acreditados, %d omitidos, %d fallidos, total %s Bs",
		credited, skipped, failed, totalBs.StringFixed(2)))
}
