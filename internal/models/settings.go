package models

type Settings struct {
	WelcomeMessage  string
	GoalPrompt      string
	DaysPrompt      string
	SessionPrompt   string
	ReminderMessage string
}
