package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidSchedule marks a malformed day list or time of day. Callers
// recover with a corrective prompt, they never unwind.
var ErrInvalidSchedule = errors.New("invalid schedule")

// ParseScheduleDays validates a comma-separated weekday list (1=Mon..7=Sun)
// and returns it in canonical form: sorted, deduplicated, no spaces.
func ParseScheduleDays(input string) (string, error) {
	parts := strings.Split(input, ",")
	seen := make(map[int]bool)
	var days []int
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return "", fmt.Errorf("%w: empty day in %q", ErrInvalidSchedule, input)
		}
		day, err := strconv.Atoi(part)
		if err != nil {
			return "", fmt.Errorf("%w: day %q is not a number", ErrInvalidSchedule, part)
		}
		if day < 1 || day > 7 {
			return "", fmt.Errorf("%w: day %d out of range 1-7", ErrInvalidSchedule, day)
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Ints(days)
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = strconv.Itoa(d)
	}
	return strings.Join(out, ","), nil
}

// ParseScheduleTime validates a 24-hour time of day and normalizes it to
// zero-padded HH:MM, the exact form the reminder sweep matches against.
func ParseScheduleTime(input string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("%w: time %q is not HH:MM", ErrInvalidSchedule, input)
	}
	return t.Format("15:04"), nil
}
