package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ad/go-telegram-scribe/internal/db"
	"github.com/ad/go-telegram-scribe/internal/models"
	"github.com/ad/go-telegram-scribe/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

const (
	helpText = "Команды:\n" +
		"/goal — поставить цель\n" +
		"/done [число] — отметить прогресс (можно отрицательное для поправки)\n" +
		"/stats — статистика\n" +
		"/schedule [дни] [время] — расписание напоминаний, например /schedule 1,3,5 09:00\n" +
		"/remind on|off — включить или выключить напоминания"

	genericFailureText = "Что-то пошло не так, попробуй ещё раз позже."
	noGoalText         = "Цель ещё не поставлена. Начни с команды /goal."
)

type BotHandler struct {
	adminID      int64
	notifier     services.Notifier
	errorManager *services.ErrorManager
	statsService *services.StatisticsService
	userRepo     *db.UserRepository
	dialogRepo   *db.DialogStateRepository
	settingsRepo *db.SettingsRepository
}

func NewBotHandler(
	adminID int64,
	notifier services.Notifier,
	errorManager *services.ErrorManager,
	statsService *services.StatisticsService,
	userRepo *db.UserRepository,
	dialogRepo *db.DialogStateRepository,
	settingsRepo *db.SettingsRepository,
) *BotHandler {
	return &BotHandler{
		adminID:      adminID,
		notifier:     notifier,
		errorManager: errorManager,
		statsService: statsService,
		userRepo:     userRepo,
		dialogRepo:   dialogRepo,
		settingsRepo: settingsRepo,
	}
}

func (h *BotHandler) HandleUpdate(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	defer h.recoverPanic(ctx, update)

	if update.Message == nil || update.Message.From == nil {
		return
	}
	msg := update.Message
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		command, args := splitCommand(text)
		if command == "/start" {
			h.handleStart(ctx, msg.From)
			return
		}
		h.HandleCommand(ctx, msg.From.ID, command, args)
		return
	}

	h.HandleMessage(ctx, msg.From.ID, text)
}

func (h *BotHandler) recoverPanic(ctx context.Context, update *tgmodels.Update) {
	if r := recover(); r != nil {
		log.Printf("panic in handler: %v", r)
		if h.errorManager != nil {
			h.errorManager.NotifyAdmin(ctx, r, update)
		}
	}
}

func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	command := fields[0]
	if at := strings.Index(command, "@"); at != -1 {
		command = command[:at]
	}
	return command, fields[1:]
}

// HandleCommand executes a standing command. Standing commands always win:
// an in-flight dialog is abandoned first, then the command runs in the same
// turn, so no stale prompt is left pending.
func (h *BotHandler) HandleCommand(ctx context.Context, userID int64, command string, args []string) {
	h.interruptDialog(userID)

	switch command {
	case "/goal":
		h.startGoalDialog(ctx, userID)
	case "/done":
		h.handleDone(ctx, userID, args)
	case "/stats":
		h.handleStats(ctx, userID)
	case "/schedule":
		h.handleSchedule(ctx, userID, args)
	case "/remind":
		h.handleRemind(ctx, userID, args)
	case "/help":
		h.send(ctx, userID, helpText)
	default:
		h.send(ctx, userID, "Не знаю такую команду.\n\n"+helpText)
	}
}

func (h *BotHandler) handleStart(ctx context.Context, from *tgmodels.User) {
	user := &models.User{
		ID:        from.ID,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		Username:  from.Username,
	}
	if err := h.userRepo.CreateOrUpdate(user); err != nil {
		log.Printf("create user %d: %v", from.ID, err)
		h.send(ctx, from.ID, genericFailureText)
		return
	}
	h.interruptDialog(from.ID)

	welcome := h.prompts().WelcomeMessage
	if welcome == "" {
		welcome = "Привет! Я помогу тебе дописать твою историю."
	}
	h.send(ctx, from.ID, welcome+"\n\n"+helpText)
}

func (h *BotHandler) handleDone(ctx context.Context, userID int64, args []string) {
	if len(args) != 1 {
		h.send(ctx, userID, "Укажи число символов: /done 500")
		return
	}
	delta, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.send(ctx, userID, "Укажи число символов: /done 500")
		return
	}

	stats, err := h.userRepo.RecordProgress(userID, delta)
	switch {
	case errors.Is(err, db.ErrGoalNotSet), errors.Is(err, db.ErrUserNotFound):
		h.send(ctx, userID, noGoalText)
	case err != nil:
		log.Printf("record progress for %d: %v", userID, err)
		h.send(ctx, userID, genericFailureText)
	default:
		h.send(ctx, userID, fmt.Sprintf("Записал! Прогресс: %d из %d (%.1f%%).",
			stats.ProgressChars, stats.GoalChars, stats.Percent()))
	}
}

func (h *BotHandler) handleStats(ctx context.Context, userID int64) {
	stats, err := h.userRepo.GetStats(userID)
	switch {
	case errors.Is(err, db.ErrUserNotFound):
		h.send(ctx, userID, noGoalText)
	case err != nil:
		log.Printf("get stats for %d: %v", userID, err)
		h.send(ctx, userID, genericFailureText)
	case !stats.HasGoal:
		h.send(ctx, userID, noGoalText)
	default:
		h.send(ctx, userID, fmt.Sprintf("Прогресс: %d из %d (%.1f%%).",
			stats.ProgressChars, stats.GoalChars, stats.Percent()))
	}

	if userID == h.adminID {
		total, err := h.statsService.CalculateStats()
		if err != nil {
			log.Printf("calculate total stats: %v", err)
			return
		}
		h.send(ctx, userID, h.statsService.FormatStats(total))
	}
}

func (h *BotHandler) handleSchedule(ctx context.Context, userID int64, args []string) {
	if len(args) != 2 {
		h.send(ctx, userID, "Формат: /schedule 1,3,5 09:00 (дни 1=Пн..7=Вс, время ЧЧ:ММ)")
		return
	}
	days, err := services.ParseScheduleDays(args[0])
	if err != nil {
		h.send(ctx, userID, "Дни — числа от 1 до 7 через запятую, например 1,3,5.")
		return
	}
	timeOfDay, err := services.ParseScheduleTime(args[1])
	if err != nil {
		h.send(ctx, userID, "Время в формате ЧЧ:ММ, например 09:00.")
		return
	}

	if err := h.userRepo.SetSchedule(userID, days, timeOfDay); err != nil {
		log.Printf("set schedule for %d: %v", userID, err)
		h.send(ctx, userID, genericFailureText)
		return
	}
	h.send(ctx, userID, fmt.Sprintf("Расписание сохранено: дни %s, время %s.\nВключить напоминания: /remind on", days, timeOfDay))
}

func (h *BotHandler) handleRemind(ctx context.Context, userID int64, args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		h.send(ctx, userID, "Формат: /remind on или /remind off")
		return
	}
	on := args[0] == "on"

	if err := h.userRepo.SetRemindersEnabled(userID, on); err != nil {
		log.Printf("set reminders for %d: %v", userID, err)
		h.send(ctx, userID, genericFailureText)
		return
	}

	if !on {
		h.send(ctx, userID, "Напоминания выключены.")
		return
	}
	user, err := h.userRepo.GetByID(userID)
	if err == nil && user.ScheduleTime == "" {
		h.send(ctx, userID, "Напоминания включены, но расписание не задано. Задай его: /schedule 1,3,5 09:00")
		return
	}
	h.send(ctx, userID, "Напоминания включены.")
}

// interruptDialog discards any scratch data and returns the user to idle.
func (h *BotHandler) interruptDialog(userID int64) {
	if err := h.dialogRepo.Clear(userID); err != nil {
		log.Printf("clear dialog for %d: %v", userID, err)
	}
}

func (h *BotHandler) send(ctx context.Context, userID int64, text string) {
	if err := h.notifier.Send(ctx, userID, text); err != nil {
		log.Printf("send to %d failed: %v", userID, err)
	}
}

func (h *BotHandler) prompts() *models.Settings {
	settings, err := h.settingsRepo.GetAll()
	if err != nil || settings == nil {
		return &models.Settings{}
	}
	return settings
}
