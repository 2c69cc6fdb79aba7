package db

import "database/sql"

// MigrateUp creates the projects and materials tables if they do not exist.
// Materials cascade-delete with their owning project; the status column is
// constrained to the four lifecycle states so a bad writer cannot invent a
// fifth one.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS projects (
    id         UUID PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS materials (
    id         UUID PRIMARY KEY,
    project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    title      TEXT NOT NULL,
    content    TEXT NOT NULL DEFAULT '',
    focus_area TEXT NOT NULL DEFAULT '',
    metadata   JSONB,
    file_path  TEXT,
    file_type  TEXT,
    file_size  BIGINT,
    status     VARCHAR(20) NOT NULL DEFAULT 'pending'
               CHECK (status IN ('pending', 'processing', 'completed', 'error')),
    created_at TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// project listing, newest first
		`CREATE INDEX IF NOT EXISTS idx_materials_project_id ON materials(project_id, created_at DESC)`,
		// worker queries for stuck/pending rows
		`CREATE INDEX IF NOT EXISTS idx_materials_status ON materials(status)`,
	}
	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return err
		}
	}

	return nil
}
