package services

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestClassify_Boundaries(t *testing.T) {
	cases := []struct {
		weeks float64
		want  TimeScale
	}{
		{-1, ScaleInstant},
		{0, ScaleInstant},
		{0.5, ScaleWeeks},
		{4.0, ScaleWeeks},
		{4.01, ScaleMonths},
		{52.0, ScaleMonths},
		{52.01, ScaleYears},
		{300, ScaleYears},
	}
	for _, c := range cases {
		if got := classify(c.weeks); got != c.want {
			t.Errorf("classify(%v) = %s, want %s", c.weeks, got, c.want)
		}
	}
}

func TestEstimateCompletion_Scenario(t *testing.T) {
	// 100000 chars at 5 days/week, 1000 chars/session: 20 weeks, read as months.
	est := EstimateCompletion(100000, 5, 1000)

	if est.Weeks != 20 {
		t.Errorf("expected 20 weeks, got %v", est.Weeks)
	}
	if est.Scale != ScaleMonths {
		t.Errorf("expected months scale, got %s", est.Scale)
	}
	if est.Months() != 4.6 {
		t.Errorf("expected 4.6 months, got %v", est.Months())
	}
}

func TestEstimateCompletion_ZeroWeeklyRate(t *testing.T) {
	est := EstimateCompletion(100000, 0, 1000)
	if est.Scale != ScaleUndefined {
		t.Errorf("expected undefined estimate, got %s", est.Scale)
	}
	if est.String() == "" {
		t.Error("undefined estimate still needs a user-facing description")
	}
}

func TestEstimateCompletion_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		goal := rapid.Int64Range(1, 10_000_000).Draw(rt, "goal")
		days := rapid.Int64Range(1, 7).Draw(rt, "days")
		chars := rapid.Int64Range(1, 100_000).Draw(rt, "chars")

		est := EstimateCompletion(goal, days, chars)

		if est.Weeks <= 0 {
			rt.Fatalf("positive inputs must yield positive weeks, got %v", est.Weeks)
		}
		wantWeeks := float64(goal) / float64(days*chars)
		if math.Abs(est.Weeks-wantWeeks) > 1e-9 {
			rt.Fatalf("weeks = %v, want %v", est.Weeks, wantWeeks)
		}

		switch {
		case est.Weeks <= 4:
			if est.Scale != ScaleWeeks {
				rt.Fatalf("%v weeks classified as %s", est.Weeks, est.Scale)
			}
		case est.Weeks <= 52:
			if est.Scale != ScaleMonths {
				rt.Fatalf("%v weeks classified as %s", est.Weeks, est.Scale)
			}
		default:
			if est.Scale != ScaleYears {
				rt.Fatalf("%v weeks classified as %s", est.Weeks, est.Scale)
			}
		}

		if est.String() == "" {
			rt.Fatal("estimate description must not be empty")
		}
	})
}
