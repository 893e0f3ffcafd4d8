package services

import (
	"context"

	"github.com/go-telegram/bot"
)

// Notifier delivers one outbound text to a user chat. Dialog prompts and
// scheduled reminders both go through it.
type Notifier interface {
	Send(ctx context.Context, userID int64, text string) error
}

type TelegramNotifier struct {
	bot      *bot.Bot
	errMgr   *ErrorManager
	maxRetry int
}

func NewTelegramNotifier(b *bot.Bot, errMgr *ErrorManager) *TelegramNotifier {
	return &TelegramNotifier{
		bot:      b,
		errMgr:   errMgr,
		maxRetry: 2,
	}
}

func (n *TelegramNotifier) Send(ctx context.Context, userID int64, text string) error {
	var lastErr error
	for attempt := 0; attempt < n.maxRetry; attempt++ {
		_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: userID,
			Text:   text,
		})
		if err == nil {
			return nil
		}
		lastErr = err
	}
	if n.errMgr != nil {
		n.errMgr.NotifySendFailure(ctx, userID, lastErr)
	}
	return lastErr
}
