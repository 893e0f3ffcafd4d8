package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY,
    first_name TEXT,
    last_name TEXT,
    username TEXT,
    goal_chars INTEGER,
    progress_chars INTEGER NOT NULL DEFAULT 0,
    schedule_days TEXT NOT NULL DEFAULT '',
    schedule_time TEXT NOT NULL DEFAULT '',
    reminders_on BOOLEAN DEFAULT FALSE,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS dialog_state (
    user_id INTEGER PRIMARY KEY REFERENCES users(id),
    current_state TEXT NOT NULL DEFAULT '',
    goal_chars INTEGER DEFAULT 0,
    days_per_week INTEGER DEFAULT 0,
    chars_per_session INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

const defaultSettings = `
INSERT OR IGNORE INTO settings (key, value) VALUES
    ('welcome_message', 'Привет! Я помогу тебе дописать твою историю. Поставь цель командой /goal и отмечай прогресс командой /done.'),
    ('goal_prompt', 'Сколько символов ты хочешь написать? Отправь число.'),
    ('days_prompt', 'Сколько дней в неделю ты планируешь писать? Отправь число.'),
    ('session_prompt', 'Сколько символов за один подход? Отправь число.'),
    ('reminder_message', '⏰ Привет! Время писать. Твоя история ждёт. Не забудь отметить прогресс командой /done [число].');
`

const migrations = `
ALTER TABLE users ADD COLUMN reminders_on BOOLEAN DEFAULT FALSE;
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return err
	}

	_, err = db.Exec(defaultSettings)
	if err != nil {
		return err
	}

	db.Exec(migrations)

	return nil
}
