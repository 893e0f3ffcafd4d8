package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ad/go-telegram-scribe/internal/db"
	_ "modernc.org/sqlite"
)

type fakeNotifier struct {
	mu      sync.Mutex
	sent    map[int64][]string
	failFor map[int64]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		sent:    make(map[int64][]string),
		failFor: make(map[int64]error),
	}
}

func (f *fakeNotifier) Send(_ context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[userID]; ok {
		return err
	}
	f.sent[userID] = append(f.sent[userID], text)
	return nil
}

func (f *fakeNotifier) sentTo(userID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[userID]
}

func setupReminderTest(t *testing.T) (*db.UserRepository, *db.SettingsRepository, func()) {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.InitSchema(sqlDB); err != nil {
		t.Fatal(err)
	}

	queue := db.NewDBQueueForTest(sqlDB)
	return db.NewUserRepository(queue), db.NewSettingsRepository(queue), func() {
		queue.Close()
		sqlDB.Close()
	}
}

func scheduleUser(t *testing.T, repo *db.UserRepository, id int64, days, timeOfDay string, enabled bool) {
	t.Helper()
	if err := repo.SetSchedule(id, days, timeOfDay); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetRemindersEnabled(id, enabled); err != nil {
		t.Fatal(err)
	}
}

// 2024-01-03 is a Wednesday, weekday 3 in the 1=Mon..7=Sun numbering.
var wednesdayNine = time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC)

func TestSweep_MatchesDayAndTime(t *testing.T) {
	userRepo, settingsRepo, cleanup := setupReminderTest(t)
	defer cleanup()

	scheduleUser(t, userRepo, 1, "1,3,5", "09:00", true) // matches
	scheduleUser(t, userRepo, 2, "1,5", "09:00", true)   // wrong day
	scheduleUser(t, userRepo, 3, "3", "09:00", false)    // disabled
	scheduleUser(t, userRepo, 4, "3", "10:00", true)     // wrong time

	notifier := newFakeNotifier()
	svc := NewReminderService(userRepo, settingsRepo, notifier, time.UTC)

	sent := svc.Sweep(context.Background(), wednesdayNine)
	if sent != 1 {
		t.Fatalf("expected 1 reminder, got %d", sent)
	}
	if got := notifier.sentTo(1); len(got) != 1 {
		t.Errorf("user 1 should have received exactly one reminder, got %d", len(got))
	}
	for _, id := range []int64{2, 3, 4} {
		if got := notifier.sentTo(id); len(got) != 0 {
			t.Errorf("user %d should have received nothing, got %v", id, got)
		}
	}
}

func TestSweep_UsesConfiguredReminderText(t *testing.T) {
	userRepo, settingsRepo, cleanup := setupReminderTest(t)
	defer cleanup()

	scheduleUser(t, userRepo, 11, "3", "09:00", true)
	if err := settingsRepo.SetReminderMessage("за работу!"); err != nil {
		t.Fatal(err)
	}

	notifier := newFakeNotifier()
	svc := NewReminderService(userRepo, settingsRepo, notifier, time.UTC)

	if sent := svc.Sweep(context.Background(), wednesdayNine); sent != 1 {
		t.Fatalf("expected 1 reminder, got %d", sent)
	}
	got := notifier.sentTo(11)
	if len(got) != 1 || got[0] != "за работу!" {
		t.Errorf("expected configured text, got %v", got)
	}
}

func TestSweep_SameMinuteIsIdempotent(t *testing.T) {
	userRepo, settingsRepo, cleanup := setupReminderTest(t)
	defer cleanup()

	scheduleUser(t, userRepo, 21, "3", "09:00", true)

	notifier := newFakeNotifier()
	svc := NewReminderService(userRepo, settingsRepo, notifier, time.UTC)

	if sent := svc.Sweep(context.Background(), wednesdayNine); sent != 1 {
		t.Fatalf("first sweep: expected 1, got %d", sent)
	}
	// Same minute, a few seconds later: nothing is resent.
	if sent := svc.Sweep(context.Background(), wednesdayNine.Add(20*time.Second)); sent != 0 {
		t.Fatalf("second sweep in same minute: expected 0, got %d", sent)
	}
	if got := notifier.sentTo(21); len(got) != 1 {
		t.Errorf("expected exactly one delivery, got %d", len(got))
	}

	// Next matching minute delivers again.
	scheduleUser(t, userRepo, 21, "3", "09:01", true)
	if sent := svc.Sweep(context.Background(), wednesdayNine.Add(time.Minute)); sent != 1 {
		t.Fatalf("next minute sweep: expected 1, got %d", sent)
	}
}

func TestSweep_DeliveryFailureIsIsolated(t *testing.T) {
	userRepo, settingsRepo, cleanup := setupReminderTest(t)
	defer cleanup()

	scheduleUser(t, userRepo, 31, "3", "09:00", true)
	scheduleUser(t, userRepo, 32, "3", "09:00", true)

	notifier := newFakeNotifier()
	notifier.failFor[31] = fmt.Errorf("user unreachable")
	svc := NewReminderService(userRepo, settingsRepo, notifier, time.UTC)

	sent := svc.Sweep(context.Background(), wednesdayNine)
	if sent != 1 {
		t.Fatalf("expected 1 delivered despite failure, got %d", sent)
	}
	if got := notifier.sentTo(32); len(got) != 1 {
		t.Errorf("failure for user 31 must not abort delivery to user 32, got %d", len(got))
	}
}

func TestSweep_WeekdayInConfiguredLocation(t *testing.T) {
	userRepo, settingsRepo, cleanup := setupReminderTest(t)
	defer cleanup()

	// 23:30 UTC on Tuesday is already Wednesday 02:30 in UTC+3.
	loc := time.FixedZone("UTC+3", 3*60*60)
	scheduleUser(t, userRepo, 41, "3", "02:30", true)

	notifier := newFakeNotifier()
	svc := NewReminderService(userRepo, settingsRepo, notifier, loc)

	tuesdayLate := time.Date(2024, time.January, 2, 23, 30, 0, 0, time.UTC)
	if sent := svc.Sweep(context.Background(), tuesdayLate); sent != 1 {
		t.Fatalf("expected local-time match, got %d deliveries", sent)
	}
}
