package fsm

// Goal setup dialog states. StateIdle is both the initial and the terminal
// state; a row with an empty current_state means no dialog is running.
const (
	StateIdle                    = ""
	StateAwaitingGoal            = "awaiting_goal"
	StateAwaitingDaysPerWeek     = "awaiting_days_per_week"
	StateAwaitingCharsPerSession = "awaiting_chars_per_session"
)
