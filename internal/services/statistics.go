package services

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ad/go-telegram-scribe/internal/db"
	"github.com/ad/go-telegram-scribe/internal/models"
)

type TopWriter struct {
	User          *models.User
	ProgressChars int64
}

type Statistics struct {
	TotalUsers    int
	UsersWithGoal int
	TotalProgress int64
	RemindersOn   int
	TopWriters    []TopWriter
}

type StatisticsService struct {
	queue *db.DBQueue
}

func NewStatisticsService(queue *db.DBQueue) *StatisticsService {
	return &StatisticsService{queue: queue}
}

func (s *StatisticsService) CalculateStats() (*Statistics, error) {
	result, err := s.queue.Execute(func(sqlDB *sql.DB) (interface{}, error) {
		stats := &Statistics{}

		err := sqlDB.QueryRow(`
			SELECT COUNT(*),
			       COUNT(goal_chars),
			       COALESCE(SUM(progress_chars), 0),
			       COALESCE(SUM(reminders_on), 0)
			FROM users
		`).Scan(&stats.TotalUsers, &stats.UsersWithGoal, &stats.TotalProgress, &stats.RemindersOn)
		if err != nil {
			return nil, err
		}

		rows, err := sqlDB.Query(`
			SELECT id, first_name, last_name, username, progress_chars
			FROM users
			WHERE progress_chars > 0
			ORDER BY progress_chars DESC
			LIMIT 5
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		for rows.Next() {
			var user models.User
			var firstName, lastName, username sql.NullString
			var progress int64
			if err := rows.Scan(&user.ID, &firstName, &lastName, &username, &progress); err != nil {
				return nil, err
			}
			user.FirstName = firstName.String
			user.LastName = lastName.String
			user.Username = username.String
			stats.TopWriters = append(stats.TopWriters, TopWriter{User: &user, ProgressChars: progress})
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Statistics), nil
}

func (s *StatisticsService) FormatStats(stats *Statistics) string {
	var b strings.Builder
	b.WriteString("📊 Общая статистика\n")
	fmt.Fprintf(&b, "Пользователей: %d\n", stats.TotalUsers)
	fmt.Fprintf(&b, "С целью: %d\n", stats.UsersWithGoal)
	fmt.Fprintf(&b, "Всего написано: %d символов\n", stats.TotalProgress)
	fmt.Fprintf(&b, "Напоминания включены: %d\n", stats.RemindersOn)

	if len(stats.TopWriters) > 0 {
		b.WriteString("\nЛидеры:\n")
		for i, w := range stats.TopWriters {
			fmt.Fprintf(&b, "%d. %s — %d\n", i+1, w.User.DisplayName(), w.ProgressChars)
		}
	}
	return b.String()
}
