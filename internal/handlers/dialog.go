package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/ad/go-telegram-scribe/internal/fsm"
	"github.com/ad/go-telegram-scribe/internal/models"
	"github.com/ad/go-telegram-scribe/internal/services"
)

const (
	defaultGoalPrompt    = "Сколько символов ты хочешь написать? Отправь число."
	defaultDaysPrompt    = "Сколько дней в неделю ты планируешь писать? Отправь число."
	defaultSessionPrompt = "Сколько символов за один подход? Отправь число."

	notNumberText = "Нужно положительное число."
)

func (h *BotHandler) startGoalDialog(ctx context.Context, userID int64) {
	state := &models.DialogState{
		UserID:       userID,
		CurrentState: fsm.StateAwaitingGoal,
	}
	if err := h.dialogRepo.Save(state); err != nil {
		log.Printf("start dialog for %d: %v", userID, err)
		h.send(ctx, userID, genericFailureText)
		return
	}
	h.send(ctx, userID, h.goalPrompt())
}

// HandleMessage feeds free-form text into the active dialog. Each dialog
// step expects one positive integer; anything else re-prompts and leaves
// the state untouched. Outside a dialog the text only earns a help hint.
func (h *BotHandler) HandleMessage(ctx context.Context, userID int64, text string) {
	state, err := h.dialogRepo.Get(userID)
	if err != nil {
		log.Printf("get dialog for %d: %v", userID, err)
		h.send(ctx, userID, genericFailureText)
		return
	}

	switch state.CurrentState {
	case fsm.StateIdle:
		h.send(ctx, userID, "Я понимаю только команды.\n\n"+helpText)

	case fsm.StateAwaitingGoal:
		value, ok := parsePositiveInt(text)
		if !ok {
			h.send(ctx, userID, notNumberText+" "+h.goalPrompt())
			return
		}
		state.GoalChars = value
		state.CurrentState = fsm.StateAwaitingDaysPerWeek
		h.advanceDialog(ctx, state, h.daysPrompt())

	case fsm.StateAwaitingDaysPerWeek:
		value, ok := parsePositiveInt(text)
		if !ok {
			h.send(ctx, userID, notNumberText+" "+h.daysPrompt())
			return
		}
		state.DaysPerWeek = value
		state.CurrentState = fsm.StateAwaitingCharsPerSession
		h.advanceDialog(ctx, state, h.sessionPrompt())

	case fsm.StateAwaitingCharsPerSession:
		value, ok := parsePositiveInt(text)
		if !ok {
			h.send(ctx, userID, notNumberText+" "+h.sessionPrompt())
			return
		}
		state.CharsPerSession = value
		h.completeDialog(ctx, state)

	default:
		// A state this build does not know, left by an older version.
		log.Printf("unknown dialog state %q for %d, resetting", state.CurrentState, userID)
		h.interruptDialog(userID)
		h.send(ctx, userID, helpText)
	}
}

func (h *BotHandler) advanceDialog(ctx context.Context, state *models.DialogState, prompt string) {
	if err := h.dialogRepo.Save(state); err != nil {
		log.Printf("advance dialog for %d: %v", state.UserID, err)
		h.send(ctx, state.UserID, genericFailureText)
		return
	}
	h.send(ctx, state.UserID, prompt)
}

func (h *BotHandler) completeDialog(ctx context.Context, state *models.DialogState) {
	estimate := services.EstimateCompletion(state.GoalChars, state.DaysPerWeek, state.CharsPerSession)

	if err := h.userRepo.SetGoal(state.UserID, state.GoalChars); err != nil {
		log.Printf("set goal for %d: %v", state.UserID, err)
		h.interruptDialog(state.UserID)
		h.send(ctx, state.UserID, genericFailureText)
		return
	}
	h.interruptDialog(state.UserID)

	h.send(ctx, state.UserID, fmt.Sprintf(
		"Цель %d символов сохранена, прогресс обнулён.\nПри таком темпе понадобится: %s.\nОтмечай прогресс командой /done [число].",
		state.GoalChars, estimate))
}

func parsePositiveInt(text string) (int64, bool) {
	value, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

func (h *BotHandler) goalPrompt() string {
	if p := h.prompts().GoalPrompt; p != "" {
		return p
	}
	return defaultGoalPrompt
}

func (h *BotHandler) daysPrompt() string {
	if p := h.prompts().DaysPrompt; p != "" {
		return p
	}
	return defaultDaysPrompt
}

func (h *BotHandler) sessionPrompt() string {
	if p := h.prompts().SessionPrompt; p != "" {
		return p
	}
	return defaultSessionPrompt
}
