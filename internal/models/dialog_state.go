package models

// DialogState holds the goal setup FSM position for one user plus the
// scratch values collected so far. The row is deleted when the dialog
// completes or is interrupted.
type DialogState struct {
	UserID          int64
	CurrentState    string
	GoalChars       int64
	DaysPerWeek     int64
	CharsPerSession int64
}
