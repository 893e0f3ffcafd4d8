package services

import (
	"fmt"
	"math"
)

const (
	weeksPerMonth = 4.34
	weeksPerYear  = 52.0
)

type TimeScale string

const (
	// ScaleUndefined means the weekly output is zero and no estimate exists.
	ScaleUndefined TimeScale = "undefined"
	ScaleInstant   TimeScale = "instant"
	ScaleWeeks     TimeScale = "weeks"
	ScaleMonths    TimeScale = "months"
	ScaleYears     TimeScale = "years"
)

type Estimate struct {
	Weeks float64
	Scale TimeScale
}

// EstimateCompletion derives how long reaching goal will take at a cadence
// of daysPerWeek sessions of charsPerSession characters. A zero weekly rate
// yields an undefined estimate instead of dividing by zero.
func EstimateCompletion(goal, daysPerWeek, charsPerSession int64) Estimate {
	weeklyChars := daysPerWeek * charsPerSession
	if weeklyChars == 0 {
		return Estimate{Scale: ScaleUndefined}
	}
	weeks := float64(goal) / float64(weeklyChars)
	return Estimate{Weeks: weeks, Scale: classify(weeks)}
}

// Fixed thresholds: up to 4 weeks reads as weeks, up to 52 as months,
// beyond that as years.
func classify(weeks float64) TimeScale {
	switch {
	case weeks <= 0:
		return ScaleInstant
	case weeks <= 4:
		return ScaleWeeks
	case weeks <= weeksPerYear:
		return ScaleMonths
	default:
		return ScaleYears
	}
}

// Months converts the estimate to months, rounded to one decimal.
func (e Estimate) Months() float64 {
	return math.Round(e.Weeks/weeksPerMonth*10) / 10
}

// Years converts the estimate to years, rounded to one decimal.
func (e Estimate) Years() float64 {
	return math.Round(e.Weeks/weeksPerYear*10) / 10
}

func (e Estimate) String() string {
	switch e.Scale {
	case ScaleUndefined:
		return "оценка невозможна: недельная норма равна нулю"
	case ScaleInstant:
		return "цель уже достигнута"
	case ScaleWeeks:
		return fmt.Sprintf("примерно %.1f нед.", e.Weeks)
	case ScaleMonths:
		return fmt.Sprintf("примерно %.1f мес.", e.Months())
	case ScaleYears:
		return fmt.Sprintf("примерно %.1f г.", e.Years())
	}
	return ""
}
