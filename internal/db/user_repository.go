package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ad/go-telegram-scribe/internal/models"
)

type UserRepository struct {
	queue *DBQueue
}

func NewUserRepository(queue *DBQueue) *UserRepository {
	return &UserRepository{queue: queue}
}

// CreateOrUpdate upserts identity fields only; goal, progress and schedule
// are never touched here.
func (r *UserRepository) CreateOrUpdate(user *models.User) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO users (id, first_name, last_name, username)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				first_name = excluded.first_name,
				last_name = excluded.last_name,
				username = excluded.username
		`, user.ID, user.FirstName, user.LastName, user.Username)
		return nil, err
	})
	return err
}

func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT id, first_name, last_name, username, goal_chars, progress_chars,
			       schedule_days, schedule_time, reminders_on, created_at
			FROM users WHERE id = ?
		`, id)
		return scanUser(row)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

// SetGoal stores a new goal and unconditionally zeroes accumulated progress.
// Repeating the dialog is a restart, not a merge.
func (r *UserRepository) SetGoal(userID, goal int64) error {
	if goal <= 0 {
		return fmt.Errorf("goal must be positive, got %d", goal)
	}
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO users (id, goal_chars, progress_chars)
			VALUES (?, ?, 0)
			ON CONFLICT(id) DO UPDATE SET
				goal_chars = excluded.goal_chars,
				progress_chars = 0
		`, userID, goal)
		return nil, err
	})
	return err
}

// RecordProgress applies delta (negative corrections allowed) and returns
// the resulting stats. The increment and the readback share one transaction:
// a failure anywhere rolls the increment back, so a retried task always
// starts from unmodified state and concurrent reports cannot lose updates.
func (r *UserRepository) RecordProgress(userID, delta int64) (*models.Stats, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		tx, err := db.Begin()
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		res, err := tx.Exec(`
			UPDATE users SET progress_chars = progress_chars + ?
			WHERE id = ? AND goal_chars IS NOT NULL
		`, delta, userID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			var exists bool
			if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, userID).Scan(&exists); err != nil {
				return nil, err
			}
			if !exists {
				return nil, ErrUserNotFound
			}
			return nil, ErrGoalNotSet
		}

		var stats models.Stats
		var goal sql.NullInt64
		err = tx.QueryRow(`
			SELECT progress_chars, goal_chars FROM users WHERE id = ?
		`, userID).Scan(&stats.ProgressChars, &goal)
		if err != nil {
			return nil, err
		}
		stats.GoalChars = goal.Int64
		stats.HasGoal = goal.Valid

		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return &stats, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Stats), nil
}

// GetStats returns the current (progress, goal) pair; HasGoal is false when
// the setup dialog never completed for this user.
func (r *UserRepository) GetStats(userID int64) (*models.Stats, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		var stats models.Stats
		var goal sql.NullInt64
		err := db.QueryRow(`
			SELECT progress_chars, goal_chars FROM users WHERE id = ?
		`, userID).Scan(&stats.ProgressChars, &goal)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if err != nil {
			return nil, err
		}
		stats.GoalChars = goal.Int64
		stats.HasGoal = goal.Valid
		return &stats, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Stats), nil
}

// SetSchedule stores the reminder weekdays (canonical comma string) and the
// HH:MM time-of-day, independently of goal and progress.
func (r *UserRepository) SetSchedule(userID int64, days, timeOfDay string) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO users (id, schedule_days, schedule_time)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				schedule_days = excluded.schedule_days,
				schedule_time = excluded.schedule_time
		`, userID, days, timeOfDay)
		return nil, err
	})
	return err
}

func (r *UserRepository) SetRemindersEnabled(userID int64, on bool) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO users (id, reminders_on)
			VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET reminders_on = excluded.reminders_on
		`, userID, on)
		return nil, err
	})
	return err
}

// GetDueForReminder returns every user with reminders enabled whose schedule
// time equals timeOfDay. Weekday filtering is the caller's job.
func (r *UserRepository) GetDueForReminder(timeOfDay string) ([]*models.User, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT id, first_name, last_name, username, goal_chars, progress_chars,
			       schedule_days, schedule_time, reminders_on, created_at
			FROM users
			WHERE reminders_on = 1 AND schedule_time = ?
			ORDER BY id
		`, timeOfDay)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanUsers(rows)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.User), nil
}

func (r *UserRepository) GetAll() ([]*models.User, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		rows, err := db.Query(`
			SELECT id, first_name, last_name, username, goal_chars, progress_chars,
			       schedule_days, schedule_time, reminders_on, created_at
			FROM users ORDER BY created_at
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		return scanUsers(rows)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*models.User), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var firstName, lastName, username, scheduleDays, scheduleTime sql.NullString
	var goal sql.NullInt64
	var remindersOn sql.NullBool
	err := row.Scan(&user.ID, &firstName, &lastName, &username, &goal, &user.ProgressChars,
		&scheduleDays, &scheduleTime, &remindersOn, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.Username = username.String
	if goal.Valid {
		g := goal.Int64
		user.GoalChars = &g
	}
	user.ScheduleDays = scheduleDays.String
	user.ScheduleTime = scheduleTime.String
	user.RemindersOn = remindersOn.Bool
	return &user, nil
}

func scanUsers(rows *sql.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
