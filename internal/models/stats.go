package models

type Stats struct {
	ProgressChars int64
	GoalChars     int64
	HasGoal       bool
}

// Percent is progress relative to the goal; 0 when no goal is set.
func (s Stats) Percent() float64 {
	if !s.HasGoal || s.GoalChars == 0 {
		return 0
	}
	return float64(s.ProgressChars) / float64(s.GoalChars) * 100
}
