package services

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type ErrorManager struct {
	bot     *bot.Bot
	adminID int64
}

func NewErrorManager(b *bot.Bot, adminID int64) *ErrorManager {
	return &ErrorManager{
		bot:     b,
		adminID: adminID,
	}
}

func (e *ErrorManager) NotifyAdmin(ctx context.Context, panicValue interface{}, update *models.Update) {
	userInfo := "unknown"

	if update != nil && update.Message != nil && update.Message.From != nil {
		userInfo = fmt.Sprintf("[%d]", update.Message.From.ID)
		if update.Message.From.FirstName != "" {
			userInfo = update.Message.From.FirstName + " " + userInfo
		}
		if update.Message.From.Username != "" {
			userInfo = userInfo + " @" + update.Message.From.Username
		}
	}

	msg := fmt.Sprintf("🚨 Panic in handler\nUser: %s\nError: %v\n\nStack trace:\n%s",
		userInfo, panicValue, string(debug.Stack()))

	if len(msg) > 4000 {
		msg = msg[:4000] + "\n... (truncated)"
	}

	_, _ = e.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: e.adminID,
		Text:   msg,
	})
}

func (e *ErrorManager) NotifySendFailure(ctx context.Context, chatID int64, err error) {
	msg := fmt.Sprintf("❌ Failed to send message\nUser: [%d]\nError: %v", chatID, err)

	if len(msg) > 4000 {
		msg = msg[:4000] + "\n... (truncated)"
	}

	_, _ = e.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: e.adminID,
		Text:   msg,
	})
}
