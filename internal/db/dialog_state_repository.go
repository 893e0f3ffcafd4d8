package db

import (
	"database/sql"
	"errors"

	"github.com/ad/go-telegram-scribe/internal/fsm"
	"github.com/ad/go-telegram-scribe/internal/models"
)

type DialogStateRepository struct {
	queue *DBQueue
}

func NewDialogStateRepository(queue *DBQueue) *DialogStateRepository {
	return &DialogStateRepository{queue: queue}
}

func (r *DialogStateRepository) Save(state *models.DialogState) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO dialog_state (user_id, current_state, goal_chars, days_per_week, chars_per_session)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				current_state = excluded.current_state,
				goal_chars = excluded.goal_chars,
				days_per_week = excluded.days_per_week,
				chars_per_session = excluded.chars_per_session
		`, state.UserID, state.CurrentState, state.GoalChars, state.DaysPerWeek, state.CharsPerSession)
		return nil, err
	})
	return err
}

// Get returns the stored dialog state; a user without a row is simply idle.
func (r *DialogStateRepository) Get(userID int64) (*models.DialogState, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT user_id, current_state, goal_chars, days_per_week, chars_per_session
			FROM dialog_state WHERE user_id = ?
		`, userID)

		var state models.DialogState
		err := row.Scan(&state.UserID, &state.CurrentState, &state.GoalChars, &state.DaysPerWeek, &state.CharsPerSession)
		if errors.Is(err, sql.ErrNoRows) {
			return &models.DialogState{UserID: userID, CurrentState: fsm.StateIdle}, nil
		}
		if err != nil {
			return nil, err
		}
		return &state, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.DialogState), nil
}

// Clear drops the dialog row, discarding scratch data and returning the
// user to the idle state.
func (r *DialogStateRepository) Clear(userID int64) error {
	_, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`DELETE FROM dialog_state WHERE user_id = ?`, userID)
		return nil, err
	})
	return err
}
