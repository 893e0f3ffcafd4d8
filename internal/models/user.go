package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string

	// GoalChars is nil until the setup dialog completes; "unset" and "zero"
	// are distinct.
	GoalChars     *int64
	ProgressChars int64

	ScheduleDays string // comma-separated weekdays, 1=Mon..7=Sun
	ScheduleTime string // "HH:MM", empty when unset
	RemindersOn  bool

	CreatedAt time.Time
}

func (u *User) DisplayName() string {
	var parts []string
	if u.FirstName != "" {
		parts = append(parts, u.FirstName)
	}
	if u.LastName != "" {
		parts = append(parts, u.LastName)
	}
	if u.Username != "" {
		parts = append(parts, fmt.Sprintf("@%s", u.Username))
	}
	parts = append(parts, fmt.Sprintf("[%d]", u.ID))
	return strings.Join(parts, " ")
}

func (u *User) HasGoal() bool {
	return u.GoalChars != nil
}

// RemindsOnDay reports whether day (1=Mon..7=Sun) is in the user's schedule.
func (u *User) RemindsOnDay(day int) bool {
	if u.ScheduleDays == "" {
		return false
	}
	want := strconv.Itoa(day)
	for _, part := range strings.Split(u.ScheduleDays, ",") {
		if strings.TrimSpace(part) == want {
			return true
		}
	}
	return false
}
