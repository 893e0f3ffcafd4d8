package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ad/go-telegram-scribe/internal/db"
)

const fallbackReminderText = "⏰ Время писать. Не забудь отметить прогресс командой /done [число]."

// ReminderService performs one sweep per invocation: match the current
// minute against every user's schedule and dispatch reminders. It has no
// loop of its own; an external clock (cron in cmd/bot) calls Sweep.
type ReminderService struct {
	userRepo     *db.UserRepository
	settingsRepo *db.SettingsRepository
	notifier     Notifier
	location     *time.Location

	mu         sync.Mutex
	lastMinute string
}

func NewReminderService(userRepo *db.UserRepository, settingsRepo *db.SettingsRepository, notifier Notifier, location *time.Location) *ReminderService {
	return &ReminderService{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		notifier:     notifier,
		location:     location,
	}
}

// Sweep sends a reminder to every user whose schedule matches now, evaluated
// in the configured location. Delivery is at most once per matching minute:
// a second invocation for the same minute is a no-op. A failed delivery is
// logged and never aborts the rest of the sweep. Returns the number of
// reminders delivered.
func (s *ReminderService) Sweep(ctx context.Context, now time.Time) int {
	local := now.In(s.location)
	minute := local.Format("2006-01-02 15:04")

	s.mu.Lock()
	if minute == s.lastMinute {
		s.mu.Unlock()
		return 0
	}
	s.lastMinute = minute
	s.mu.Unlock()

	// 1=Mon..7=Sun
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	timeOfDay := local.Format("15:04")

	users, err := s.userRepo.GetDueForReminder(timeOfDay)
	if err != nil {
		log.Printf("reminder sweep: query failed: %v", err)
		return 0
	}
	if len(users) == 0 {
		return 0
	}

	text := fallbackReminderText
	if settings, err := s.settingsRepo.GetAll(); err == nil && settings.ReminderMessage != "" {
		text = settings.ReminderMessage
	}

	sent := 0
	for _, user := range users {
		if !user.RemindsOnDay(weekday) {
			continue
		}
		if err := s.notifier.Send(ctx, user.ID, text); err != nil {
			log.Printf("reminder sweep: could not deliver to %d: %v", user.ID, err)
			continue
		}
		sent++
	}
	return sent
}
