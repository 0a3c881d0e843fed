package storage

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS triggers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    key TEXT NOT NULL,
    kind TEXT NOT NULL,
    content_type TEXT NOT NULL,
    content_ref TEXT NOT NULL,
    category TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_triggers_key ON triggers(key);
`

// InitSchema initializes the database schema
func InitSchema(queue *DBQueue) error {
	return queue.Execute(func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// Open initializes the base schema and applies pending migrations
func Open(queue *DBQueue) error {
	if err := InitSchema(queue); err != nil {
		return err
	}
	return RunMigrations(queue)
}
